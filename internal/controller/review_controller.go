package controller

import (
	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/pkg/serverutils"
	"school-concierge-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReviewController interface {
	RegisterRoutes(r fiber.Router)
	Pending(ctx *fiber.Ctx) error
	Reply(ctx *fiber.Ctx) error
	Release(ctx *fiber.Ctx) error
}

type reviewController struct {
	service service.IReviewService
}

func NewReviewController(service service.IReviewService) IReviewController {
	return &reviewController{service: service}
}

func (c *reviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/review/v1")
	h.Use(serverutils.JwtMiddleware) // moderators only
	h.Get("/pending", c.Pending)
	h.Post("/reply", c.Reply)
	h.Post("/release", c.Release)
}

func (c *reviewController) Pending(ctx *fiber.Ctx) error {
	res, err := c.service.Pending(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get pending sessions", res))
}

func (c *reviewController) Reply(ctx *fiber.Ctx) error {
	var req dto.ReviewReplyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Reply(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reply to session", res))
}

func (c *reviewController) Release(ctx *fiber.Ctx) error {
	var req dto.ReviewReleaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Release(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success release session", res))
}
