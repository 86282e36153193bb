package controller

import (
	"cognimed-be/internal/pkg/serverutils"
	"cognimed-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
	GetUser(ctx *fiber.Ctx) error
	DeleteUser(ctx *fiber.Ctx) error
	GetDoctor(ctx *fiber.Ctx) error
	ListDoctors(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	u := r.Group("/user")
	u.Get("/me", serverutils.JwtMiddleware, c.Me)
	u.Get("/u/:username", c.GetUser)
	u.Delete("/u/:username", serverutils.JwtMiddleware, c.DeleteUser)

	d := r.Group("/doctor")
	d.Get("/list", c.ListDoctors)
	d.Get("/d/:username", c.GetDoctor)
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	actor, ok := serverutils.CurrentActor(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.Me(ctx.UserContext(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *userController) GetUser(ctx *fiber.Ctx) error {
	res, err := c.service.GetUser(ctx.UserContext(), ctx.Params("username"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get user", res))
}

func (c *userController) DeleteUser(ctx *fiber.Ctx) error {
	if err := c.service.DeleteUser(ctx.UserContext(), ctx.Params("username")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.DetailResponse("User deleted successfully"))
}

func (c *userController) GetDoctor(ctx *fiber.Ctx) error {
	res, err := c.service.GetDoctor(ctx.UserContext(), ctx.Params("username"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get doctor", res))
}

func (c *userController) ListDoctors(ctx *fiber.Ctx) error {
	res, err := c.service.ListDoctors(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list doctors", res))
}
