package controller

import (
	"strconv"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/pkg/serverutils"
	"cognimed-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPrescriptionController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	ListByUsername(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type prescriptionController struct {
	service service.IPrescriptionService
}

func NewPrescriptionController(service service.IPrescriptionService) IPrescriptionController {
	return &prescriptionController{service: service}
}

func (c *prescriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/priscription")
	h.Post("/upload", c.Upload)
	h.Get("/user/:username", c.ListByUsername)
	h.Delete("/:id", c.Delete)
}

func (c *prescriptionController) Upload(ctx *fiber.Ctx) error {
	var req dto.UploadPrescriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	req.Content, err = readFormFile(file)
	if err != nil {
		return err
	}
	req.FileName = file.Filename
	req.MimeType = file.Header.Get("Content-Type")

	res, err := c.service.Upload(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *prescriptionController) ListByUsername(ctx *fiber.Ctx) error {
	res, err := c.service.ListByUsername(ctx.UserContext(), ctx.Params("username"))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *prescriptionController) Delete(ctx *fiber.Ctx) error {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid prescription id")
	}
	if err := c.service.Delete(ctx.UserContext(), uint(id)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.DetailResponse("Prescription deleted successfully"))
}
