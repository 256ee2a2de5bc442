package controller

import (
	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/pkg/serverutils"
	"school-concierge-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKbController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	ReloadAnswers(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type kbController struct {
	service service.IKbService
}

func NewKbController(service service.IKbService) IKbController {
	return &kbController{service: service}
}

func (c *kbController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/kb/v1")
	h.Use(serverutils.JwtMiddleware) // moderators only
	h.Post("/documents", c.Ingest)
	h.Post("/answers/reload", c.ReloadAnswers)
	h.Get("/stats", c.Stats)
}

func (c *kbController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestKbDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue document", res))
}

func (c *kbController) ReloadAnswers(ctx *fiber.Ctx) error {
	res, err := c.service.ReloadAnswers(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reload answers", res))
}

func (c *kbController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get knowledge base stats", res))
}
