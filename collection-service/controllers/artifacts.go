package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	collection "github.com/museum/collection-server/collection-service/models/collection"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/museum/collection-server/collection-service/notify"
	"github.com/museum/collection-server/collection-service/repos"
	utils "github.com/museum/collection-server/utils-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type ArtifactController struct {
	fx.In

	Repo     *repos.ArtifactRepo
	UserRepo *repos.UserRepo
	Notifier *notify.Notifier
}

type createArtifactRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Condition   string  `json:"condition" validate:"omitempty,oneof=good poor"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Relation    *int64  `json:"relation"`
	CategoryId  int64   `json:"category_id" validate:"required"`
}

type updateConditionRequest struct {
	Condition string `json:"condition" validate:"required,oneof=good poor"`
}

func RegisterArtifactController(r *utils.Router, c ArtifactController) {
	artifacts := r.Group("/artifacts")

	artifacts.Get("/category/:categoryId", c.byCategory)
	artifacts.Get("/:id/related", c.relatedGroup)
	artifacts.Get("/:id", c.show)
	artifacts.Get("/", c.index)

	artifacts.Post("/", utils.Protected(standardRoute), c.store)
	artifacts.Patch("/:id/condition", utils.Protected(standardRoute), c.updateCondition)
	artifacts.Delete("/:id", utils.Protected(standardRoute), c.destroy)

	r.Get("/categories", c.categories)

	archives := r.Group("/archives")
	archives.Get("/", c.archives)
	archives.Post("/", utils.Protected(standardRoute), c.storeArchive)
}

func (r *ArtifactController) index(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "0"))

	artifacts, err := r.Repo.ListArtifacts(c.Context(), repos.ArtifactFilter{
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"artifacts": artifacts,
		"page":      page,
	})
}

func (r *ArtifactController) byCategory(c *fiber.Ctx) error {
	categoryId, err := strconv.ParseInt(c.Params("categoryId"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))

	artifacts, err := r.Repo.ListArtifacts(c.Context(), repos.ArtifactFilter{
		CategoryId: categoryId,
		Page:       page,
	})
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"artifacts": artifacts,
		"page":      page,
	})
}

func (r *ArtifactController) show(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	artifact, err := r.Repo.GetArtifact(c.Context(), id)
	if err != nil {
		if errors.Is(err, repos.ErrArtifactNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(artifact)
}

func (r *ArtifactController) relatedGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	group, err := r.Repo.RelatedGroup(c.Context(), id)
	if err != nil {
		if errors.Is(err, repos.ErrArtifactNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"artifacts": group,
	})
}

func (r *ArtifactController) store(c *fiber.Ctx) error {
	req := new(createArtifactRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	artifact := &collection.Artifact{
		Title:       req.Title,
		Condition:   req.Condition,
		Location:    req.Location,
		Description: req.Description,
		Relation:    req.Relation,
		CategoryId:  req.CategoryId,
	}

	if err := r.Repo.AddArtifact(c.Context(), artifact); err != nil {
		return utils.StandardInternalError(c, err)
	}

	r.notifyCurators(c, artifact)

	return c.Status(fiber.StatusCreated).JSON(artifact)
}

func (r *ArtifactController) notifyCurators(c *fiber.Ctx, artifact *collection.Artifact) {
	curators, err := r.UserRepo.Curators(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Could not resolve curators for artifact notification")
		return
	}

	actor := utils.CurrentUser(c)
	url := fmt.Sprintf("/artifacts/%d", artifact.Id)

	for _, curator := range curators {
		if curator == actor {
			continue
		}

		_, err := r.Notifier.Send(c.Context(), curator, models.TypeSuccess,
			"New artifact added", fmt.Sprintf("%q was added to the collection", artifact.Title), &url)
		if err != nil {
			log.Error().Err(err).Int64("user_id", curator).Msg("Could not notify curator")
		}
	}
}

func (r *ArtifactController) updateCondition(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	req := new(updateConditionRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	if err := r.Repo.UpdateCondition(c.Context(), id, req.Condition); err != nil {
		if errors.Is(err, repos.ErrArtifactNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (r *ArtifactController) destroy(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if err := r.Repo.DeleteArtifact(c.Context(), id); err != nil {
		if errors.Is(err, repos.ErrArtifactNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type createArchiveRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	FilePath    string  `json:"file_path" validate:"required"`
}

func (r *ArtifactController) archives(c *fiber.Ctx) error {
	archives, err := r.Repo.ListArchives(c.Context())
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"archives": archives,
	})
}

func (r *ArtifactController) storeArchive(c *fiber.Ctx) error {
	req := new(createArchiveRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	archive := &collection.Archive{
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
	}

	if err := r.Repo.AddArchive(c.Context(), archive); err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(archive)
}

func (r *ArtifactController) categories(c *fiber.Ctx) error {
	categories, err := r.Repo.ListCategories(c.Context())
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"categories": categories,
	})
}
