package controller

import (
	"io"
	"mime/multipart"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/pkg/serverutils"
	"cognimed-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	AskMedicine(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{chatbotService: chatbotService}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("", c.Chat)
	h.Post("/ask-medicine", c.AskMedicine)
}

// Chat failures of any kind surface as one 500 carrying the message.
func (c *chatbotController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Chat(ctx.UserContext(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.DetailResponse(err.Error()))
	}
	return ctx.JSON(res)
}

func (c *chatbotController) AskMedicine(ctx *fiber.Ctx) error {
	username := ctx.FormValue("patient_username")
	if username == "" {
		return fiber.NewError(fiber.StatusBadRequest, "patient_username is required")
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	image, err := readFormFile(file)
	if err != nil {
		return err
	}

	res, err := c.chatbotService.AskMedicine(ctx.UserContext(), &dto.AskMedicineRequest{
		PatientUsername: username,
		Image:           image,
		MimeType:        file.Header.Get("Content-Type"),
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.DetailResponse(err.Error()))
	}
	return ctx.JSON(res)
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
