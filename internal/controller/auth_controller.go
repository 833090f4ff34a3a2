// FILE: internal/controller/auth_controller.go
package controller

import (
	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/pkg/serverutils"
	"paper-grading-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/login", c.Login)
	h.Post("/logout", c.Logout)
	h.Get("/me", c.Me)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, setCookie, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	// Relay the auth backend's session cookie to the caller.
	if setCookie != "" {
		ctx.Set("Set-Cookie", setCookie)
	}

	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

// Logout always reports success. Local state is cleared even when the
// remote call fails.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	_ = c.service.Logout(ctx.Context(), ctx.Get("Cookie"))

	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out successfully", nil))
}

// Me revalidates against the auth backend and returns the resulting
// session state. On a network failure the prior believed state is kept.
func (c *authController) Me(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	bearer := ""
	if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
		bearer = authHeader[7:]
	}

	// A failed check keeps the believed state; the service logs the cause.
	_, _ = c.service.CheckAuth(ctx.Context(), ctx.Get("Cookie"), bearer)

	return ctx.JSON(serverutils.SuccessResponse("Session state", c.service.Snapshot()))
}
