package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/museum/collection-server/collection-service/config"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/museum/collection-server/collection-service/notify"
	"github.com/museum/collection-server/collection-service/repos"
	utils "github.com/museum/collection-server/utils-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type UserController struct {
	fx.In

	Repo     *repos.UserRepo
	Notifier *notify.Notifier
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin curator viewer"`
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Role     string `json:"role" validate:"required,oneof=admin curator viewer"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type updateUserRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

var adminRoute = utils.JwtMiddlewareConfig{
	ReadFrom: "header",
	Subject:  "access",
	Scopes:   []string{"admin"},
}

func RegisterUserController(r *utils.Router, cfg *config.Config, c UserController) {
	users := r.Group("/users")

	users.Post("/login", c.login(cfg))
	users.Get("/profile", utils.Protected(standardRoute), c.userProfile)

	users.Get("/", utils.Protected(adminRoute), c.index)
	users.Post("/", utils.Protected(adminRoute), c.store)
	users.Patch("/:id/role", utils.Protected(adminRoute), c.updateRole)
	users.Patch("/:id", utils.Protected(adminRoute), c.update)
	users.Delete("/:id", utils.Protected(adminRoute), c.destroy)
}

func (r *UserController) index(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "0"))

	users, err := r.Repo.ListUsers(c.Context(), repos.UserFilter{
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(fiber.Map{
		"users": users,
		"page":  page,
	})
}

func (r *UserController) store(c *fiber.Ctx) error {
	req := new(createUserRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	// New accounts without an explicit password get the well-known default
	// and are expected to change it on first login.
	password := req.Password
	if password == "" {
		password = "password"
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}

	if err := r.Repo.CreateUser(c.Context(), user, password); err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (r *UserController) update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	req := new(updateUserRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	if err := r.Repo.UpdateUser(c.Context(), id, req.Name, req.Email); err != nil {
		if errors.Is(err, repos.ErrUserNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (r *UserController) destroy(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if err := r.Repo.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, repos.ErrUserNotFound) {
			return utils.StandardNotFound(c)
		}
		return utils.StandardInternalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (r *UserController) login(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(loginRequest)
		if err := c.BodyParser(req); err != nil {
			return utils.StandardCouldNotParse(c)
		}

		if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(errs)
		}

		user, err := r.Repo.GetUserByEmail(c.Context(), req.Email)
		if err != nil || !utils.VerifyHash(req.Password, user.Password) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}

		scope := "user"
		if user.Role == models.RoleAdmin {
			scope = "user admin"
		}

		tokens, err := utils.OAuthJwt(strconv.FormatInt(user.Id, 10), scope, cfg.JwtParsedPrivateKey)
		if err != nil {
			return utils.StandardInternalError(c, err)
		}

		return c.JSON(tokens)
	}
}

func (r *UserController) userProfile(c *fiber.Ctx) error {
	user, err := r.Repo.UserProfile(c.Context(), utils.CurrentUser(c))
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(user)
}

func (r *UserController) updateRole(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.StandardCouldNotParse(c)
	}

	req := new(updateRoleRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	if err := r.Repo.UpdateRole(c.Context(), id, req.Role); err != nil {
		return utils.StandardInternalError(c, err)
	}

	url := "/users/profile"
	if _, err := r.Notifier.Send(c.Context(), id, models.TypeInfo,
		"Your role was updated", "Your role is now "+req.Role, &url); err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("Could not notify user of role change")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
