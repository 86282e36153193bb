package controller

import (
	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/serverutils"
	"cognimed-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register/:type", c.Register)
	h.Post("/login/:type", c.Login)
}

func actorKind(ctx *fiber.Ctx) (entity.ActorKind, error) {
	switch ctx.Params("type") {
	case string(entity.ActorUser):
		return entity.ActorUser, nil
	case string(entity.ActorDoctor):
		return entity.ActorDoctor, nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "type must be 'user' or 'doctor'")
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	kind, err := actorKind(ctx)
	if err != nil {
		return err
	}

	var res *dto.AuthResponse
	if kind == entity.ActorDoctor {
		var req dto.RegisterDoctorRequest
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
		res, err = c.service.RegisterDoctor(ctx.UserContext(), &req)
	} else {
		var req dto.RegisterUserRequest
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.ErrBadRequest
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
		res, err = c.service.RegisterUser(ctx.UserContext(), &req)
	}
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	kind, err := actorKind(ctx)
	if err != nil {
		return err
	}

	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), kind, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
