package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/dto"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/pkg/serverutils"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/service"
)

type IBookController interface {
	RegisterRoutes(r fiber.Router)
	ListBooks(ctx *fiber.Ctx) error
	Ingest(ctx *fiber.Ctx) error
}

type bookController struct {
	bookService      service.IBookService
	publisherService service.IPublisherService
}

func NewBookController(bookService service.IBookService, publisherService service.IPublisherService) IBookController {
	return &bookController{
		bookService:      bookService,
		publisherService: publisherService,
	}
}

func (c *bookController) RegisterRoutes(r fiber.Router) {
	r.Get("/books", c.ListBooks)
	r.Post("/ingest", c.Ingest)
}

func (c *bookController) ListBooks(ctx *fiber.Ctx) error {
	res := c.bookService.ListBooks(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse(res))
}

// Ingest queues a background (re)index of one edition and returns 202. The
// actual work happens in the consumer; progress shows up in /books as the
// collection fills.
func (c *bookController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	msg := dto.IngestBookMessage{
		BookName: req.BookName,
		Version:  req.Version,
		Force:    req.Force,
	}
	if err := c.publisherService.PublishIngest(ctx.Context(), msg); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse(fiber.Map{
		"book_name": req.BookName,
		"version":   req.Version,
		"queued":    true,
	}))
}
