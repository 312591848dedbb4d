package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/museum/collection-server/collection-service/repos"
	utils "github.com/museum/collection-server/utils-go"
	"go.uber.org/fx"
)

type NotificationController struct {
	fx.In

	Repo *repos.NotificationRepo
}

type bulkIdsRequest struct {
	Ids []uuid.UUID `json:"ids" validate:"required,min=1"`
}

func RegisterNotificationController(r *utils.Router, c NotificationController) {
	notifications := r.Group("/notifications", utils.Protected(standardRoute))

	notifications.Get("/unread-count", c.unreadCount)
	notifications.Get("/", c.index)

	notifications.Post("/mark-all-as-read", c.markAllAsRead)
	notifications.Post("/mark-bulk-as-read", c.markBulkAsRead)
	notifications.Post("/bulk-destroy", c.destroyBulk)
	notifications.Post("/:id/mark-as-read", c.markAsRead)

	notifications.Delete("/:id", c.destroy)
	notifications.Delete("/", c.destroyAll)
}

func (r *NotificationController) index(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	status := c.Query("status")
	if status != "" && status != "read" && status != "unread" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be read or unread",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "0"))

	filter := repos.NotificationFilter{
		Type:    c.Query("type"),
		Status:  status,
		Page:    page,
		PerPage: perPage,
	}

	notifications, err := r.Repo.List(c.Context(), user, filter)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	unread, err := r.Repo.UnreadCount(c.Context(), user)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
		"page":          filter.Page,
	})
}

func (r *NotificationController) unreadCount(c *fiber.Ctx) error {
	unread, err := r.Repo.UnreadCount(c.Context(), utils.CurrentUser(c))
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"unread_count": unread,
	})
}

func (r *NotificationController) markAsRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	notification, err := r.Repo.MarkAsRead(c.Context(), utils.CurrentUser(c), id)
	if err != nil {
		if errors.Is(err, repos.ErrNotificationNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(notification)
}

func (r *NotificationController) markAllAsRead(c *fiber.Ctx) error {
	updated, err := r.Repo.MarkAllAsRead(c.Context(), utils.CurrentUser(c))
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"updated": updated,
	})
}

func (r *NotificationController) markBulkAsRead(c *fiber.Ctx) error {
	req := new(bulkIdsRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	updated, err := r.Repo.MarkBulkAsRead(c.Context(), utils.CurrentUser(c), req.Ids)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"updated": updated,
	})
}

func (r *NotificationController) destroy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	err = r.Repo.Delete(c.Context(), utils.CurrentUser(c), id)
	if err != nil {
		if errors.Is(err, repos.ErrNotificationNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (r *NotificationController) destroyBulk(c *fiber.Ctx) error {
	req := new(bulkIdsRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	deleted, err := r.Repo.DeleteBulk(c.Context(), utils.CurrentUser(c), req.Ids)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"deleted": deleted,
	})
}

func (r *NotificationController) destroyAll(c *fiber.Ctx) error {
	deleted, err := r.Repo.DeleteAll(c.Context(), utils.CurrentUser(c))
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"deleted": deleted,
	})
}
