package controller

import (
	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/mapper"
	"paper-grading-be/internal/pkg/serverutils"
	"paper-grading-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISubmissionController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type submissionController struct {
	submissionService service.ISubmissionService
	mapper            *mapper.SubmissionMapper
	guard             fiber.Handler
}

func NewSubmissionController(submissionService service.ISubmissionService, m *mapper.SubmissionMapper, guard fiber.Handler) ISubmissionController {
	return &submissionController{
		submissionService: submissionService,
		mapper:            m,
		guard:             guard,
	}
}

func (c *submissionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/submissions")
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post("", c.guard, c.Submit)
}

func (c *submissionController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitPaperRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	id, err := c.submissionService.Submit(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit paper", dto.SubmitPaperResponse{Id: id}))
}

func (c *submissionController) Show(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.submissionService.GetByID(ctx.Context(), id)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Submission not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show submission", c.mapper.ToResponse(res)))
}

func (c *submissionController) List(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 20)

	res, err := c.submissionService.ListPage(ctx.Context(), page, pageSize)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list submissions", res))
}
