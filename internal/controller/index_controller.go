package controller

import (
	"cognimed-be/internal/dto"
	"cognimed-be/internal/pkg/serverutils"
	"cognimed-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIndexController interface {
	RegisterRoutes(r fiber.Router)
	Rebuild(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type indexController struct {
	indexService service.IIndexService
}

func NewIndexController(indexService service.IIndexService) IIndexController {
	return &indexController{indexService: indexService}
}

func (c *indexController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/index/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/rebuild", serverutils.DoctorOnly, c.Rebuild)
	h.Get("/stats", c.Stats)
}

// Rebuild only queues the job; the consumer runs it.
func (c *indexController) Rebuild(ctx *fiber.Ctx) error {
	actor, _ := serverutils.CurrentActor(ctx)
	if err := c.indexService.RequestRebuild(ctx.UserContext(), actor.Username); err != nil {
		return err
	}

	body := serverutils.SuccessResponse("Rebuild queued", dto.RebuildResponse{Detail: "rebuild queued"})
	body.Code = fiber.StatusAccepted
	return ctx.Status(fiber.StatusAccepted).JSON(body)
}

func (c *indexController) Stats(ctx *fiber.Ctx) error {
	res, err := c.indexService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get index stats", res))
}
