package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
)

// RequireRole devuelve un middleware Fiber que deja pasar solo a los roles indicados.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalRole).
//
// Comportamiento:
//   - 401 Unauthorized → el token no trae rol.
//   - 403 Forbidden    → el rol no está entre los permitidos.
func RequireRole(allowed ...string) fiber.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[strings.ToLower(r)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}
		if _, ok := set[strings.ToLower(role)]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + role + "' no tiene acceso a este recurso",
			})
		}
		return c.Next()
	}
}
