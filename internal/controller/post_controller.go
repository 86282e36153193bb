package controller

import (
	"cognimed-be/internal/dto"
	"cognimed-be/internal/pkg/serverutils"
	"cognimed-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPostController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type postController struct {
	postService service.IPostService
}

func NewPostController(postService service.IPostService) IPostController {
	return &postController{postService: postService}
}

func (c *postController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/posts")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func postID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}
	return id, nil
}

func (c *postController) Create(ctx *fiber.Ctx) error {
	actor, ok := serverutils.CurrentActor(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req dto.CreatePostRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.postService.Create(ctx.UserContext(), actor, &req)
	if err != nil {
		return err
	}

	body := serverutils.SuccessResponse("Success create post", res)
	body.Code = fiber.StatusCreated
	return ctx.Status(fiber.StatusCreated).JSON(body)
}

func (c *postController) List(ctx *fiber.Ctx) error {
	var req dto.ListPostsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.postService.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list posts", res))
}

func (c *postController) Show(ctx *fiber.Ctx) error {
	id, err := postID(ctx)
	if err != nil {
		return err
	}

	res, err := c.postService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show post", res))
}

func (c *postController) Delete(ctx *fiber.Ctx) error {
	actor, ok := serverutils.CurrentActor(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, err := postID(ctx)
	if err != nil {
		return err
	}

	res, err := c.postService.Delete(ctx.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete post", res))
}
