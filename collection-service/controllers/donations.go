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

type DonationController struct {
	fx.In

	Repo     *repos.DonationRepo
	UserRepo *repos.UserRepo
	Notifier *notify.Notifier
}

type createProposalRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=2000"`
	Source      string `json:"source" validate:"required,max=500"`

	DonorFullName string `json:"donor_full_name" validate:"required,max=255"`
	DonorEmail    string `json:"donor_email" validate:"required,email,max=255"`
	DonorPhone    string `json:"donor_phone" validate:"required,max=20"`

	NextOfKinName  *string `json:"next_of_kin_name" validate:"omitempty,max=255"`
	NextOfKinEmail *string `json:"next_of_kin_email" validate:"omitempty,email,max=255"`
	NextOfKinPhone *string `json:"next_of_kin_phone" validate:"omitempty,max=20"`
}

func RegisterDonationController(r *utils.Router, c DonationController) {
	donations := r.Group("/donations", utils.Protected(standardRoute))

	donations.Get("/", c.index)
	donations.Post("/", c.store)
	donations.Post("/:id/approve", c.approve)
	donations.Post("/:id/reject", c.reject)
}

func (r *DonationController) index(c *fiber.Ctx) error {
	proposals, err := r.Repo.ListProposals(c.Context(), c.Query("status"))
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"proposals": proposals,
	})
}

func (r *DonationController) store(c *fiber.Ctx) error {
	req := new(createProposalRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	donor := &collection.Donor{
		FullName:       req.DonorFullName,
		Email:          req.DonorEmail,
		Phone:          req.DonorPhone,
		NextOfKinName:  req.NextOfKinName,
		NextOfKinEmail: req.NextOfKinEmail,
		NextOfKinPhone: req.NextOfKinPhone,
	}

	proposal := &collection.ArtifactProposal{
		Title:       req.Title,
		Description: req.Description,
		Source:      req.Source,
	}

	if err := r.Repo.CreateProposal(c.Context(), donor, proposal); err != nil {
		return utils.StandardInternalError(c, err)
	}

	r.notifyCurators(c, models.TypeInfo, "New donation proposal",
		fmt.Sprintf("%q was proposed by %s", proposal.Title, donor.FullName), proposal.Id)

	return c.Status(fiber.StatusCreated).JSON(proposal)
}

func (r *DonationController) approve(c *fiber.Ctx) error {
	return r.decide(c, collection.ProposalApproved, models.TypeSuccess, "Donation proposal approved")
}

func (r *DonationController) reject(c *fiber.Ctx) error {
	return r.decide(c, collection.ProposalRejected, models.TypeWarning, "Donation proposal rejected")
}

func (r *DonationController) decide(c *fiber.Ctx, status, notifType, title string) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	proposal, err := r.Repo.SetProposalStatus(c.Context(), id, status)
	if err != nil {
		if errors.Is(err, repos.ErrProposalNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	r.notifyCurators(c, notifType, title, fmt.Sprintf("%q was %s", proposal.Title, status), proposal.Id)

	return c.JSON(proposal)
}

func (r *DonationController) notifyCurators(c *fiber.Ctx, notifType, title, message string, proposalId int64) {
	curators, err := r.UserRepo.Curators(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Could not resolve curators for donation notification")
		return
	}

	actor := utils.CurrentUser(c)
	url := fmt.Sprintf("/donations/%d", proposalId)

	for _, curator := range curators {
		if curator == actor {
			continue
		}

		if _, err := r.Notifier.Send(c.Context(), curator, notifType, title, message, &url); err != nil {
			log.Error().Err(err).Int64("user_id", curator).Msg("Could not notify curator")
		}
	}
}
