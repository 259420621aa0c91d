package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/dto"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/pkg/serverutils"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/service"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{queryService: queryService}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Query)
}

func (c *queryController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The workflow folds every failure into a structured answer, so this
	// endpoint always returns 200 with a result payload.
	result := c.queryService.Query(ctx.Context(), req.Query)
	return ctx.JSON(serverutils.SuccessResponse(dto.NewQueryResponse(result)))
}
