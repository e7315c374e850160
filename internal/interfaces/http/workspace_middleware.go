package http

import (
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/roundspecs/hsbs/internal/application/dto"
)

// LocalWorkspaceID key del workspace validado.
const LocalWorkspaceID = "workspace_id"

var workspacePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// RequireWorkspace valida el parámetro :workspace de la ruta y lo deja en c.Locals.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si no hay user_id en el contexto.
//   - 400 si el identificador de workspace no es un slug válido.
func RequireWorkspace() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}
		ws := c.Params("workspace")
		if !workspacePattern.MatchString(ws) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "INVALID_WORKSPACE",
				Message: "identificador de workspace inválido",
			})
		}
		c.Locals(LocalWorkspaceID, ws)
		return c.Next()
	}
}

// GetWorkspaceID devuelve el workspace validado por RequireWorkspace.
func GetWorkspaceID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalWorkspaceID).(string)
	return s
}
