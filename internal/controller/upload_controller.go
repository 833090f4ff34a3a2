package controller

import (
	"errors"

	"paper-grading-be/internal/mapper"
	"paper-grading-be/internal/pkg/serverutils"
	"paper-grading-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	ShowAttempt(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
	mapper        *mapper.UploadMapper
	guard         fiber.Handler
}

func NewUploadController(uploadService service.IUploadService, m *mapper.UploadMapper, guard fiber.Handler) IUploadController {
	return &uploadController{
		uploadService: uploadService,
		mapper:        m,
		guard:         guard,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload")
	h.Post("", c.guard, c.Upload)
	h.Get("attempts/:id", c.ShowAttempt)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing file field"))
	}

	contentType := fileHeader.Header.Get("Content-Type")

	// Reject before opening the file so oversized or unsupported uploads
	// never reach the remote service.
	if err := c.uploadService.ValidateFile(contentType, fileHeader.Size); err != nil {
		return c.validationError(ctx, err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	clientKey := ctx.Get("X-Client-Key")
	if clientKey == "" {
		clientKey = ctx.IP()
	}

	attempt, err := c.uploadService.StartUpload(ctx.Context(), &service.UploadInput{
		ClientKey:   clientKey,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Content:     file,
		Title:       ctx.FormValue("title"),
	})
	if err != nil {
		return c.validationError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Upload accepted", c.mapper.ToResponse(attempt)))
}

func (c *uploadController) ShowAttempt(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	refresh := ctx.QueryBool("refresh", false)

	attempt, err := c.uploadService.GetAttempt(ctx.Context(), id, refresh)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Attempt not found"))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show attempt", c.mapper.ToResponse(attempt)))
}

func (c *uploadController) validationError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFileTooLarge):
		return ctx.Status(fiber.StatusRequestEntityTooLarge).JSON(serverutils.ErrorResponse(413, err.Error()))
	case errors.Is(err, service.ErrUnsupportedFileType):
		return ctx.Status(fiber.StatusUnsupportedMediaType).JSON(serverutils.ErrorResponse(415, err.Error()))
	default:
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
}
