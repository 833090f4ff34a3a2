// FILE: internal/pkg/serverutils/session_middleware.go
package serverutils

import (
	"os"

	"paper-grading-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionMiddleware guards write routes. A locally verifiable bearer token
// passes immediately; otherwise the cookie session is confirmed against the
// auth backend. Believed-but-unconfirmed state is not enough for writes.
func SessionMiddleware(auth service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		bearer := ""
		if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
			bearer = authHeader[7:]

			token, err := jwt.Parse(bearer, func(t *jwt.Token) (interface{}, error) {
				return []byte(os.Getenv("JWT_SECRET")), nil
			})
			if err == nil && token.Valid {
				if claims, ok := token.Claims.(jwt.MapClaims); ok {
					ctx.Locals("user_id", claims["user_id"])
					return ctx.Next()
				}
			}
		}

		ok, err := auth.CheckAuth(ctx.Context(), ctx.Get("Cookie"), bearer)
		if err != nil || !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Not authenticated"))
		}
		return ctx.Next()
	}
}
