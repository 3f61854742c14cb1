package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
)

// HeaderRefreshPermissions fuerza a recalcular los permisos aunque el token traiga snapshot.
const HeaderRefreshPermissions = "X-Refresh-Permissions"

// subjectLoader es el contrato mínimo que necesita LoadSubject.
// Lo implementa *authz.Evaluator.
type subjectLoader interface {
	Subject(ctx context.Context, id authz.Identity, refresh bool) (access.Subject, error)
}

// LoadSubject hidrata al llamador (fichas y permisos efectivos) y lo deja en
// c.Locals. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si no hay identidad o el usuario ya no existe.
//   - 403 si el usuario está inactivo.
//   - 503 si falla la consulta de permisos.
func LoadSubject(loader subjectLoader, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := GetIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "identidad no encontrada en el token"})
		}
		refresh := strings.EqualFold(c.Get(HeaderRefreshPermissions), "true")
		s, err := loader.Subject(c.UserContext(), id, refresh)
		if err != nil {
			if status, code := statusOf(err); status != fiber.StatusInternalServerError {
				return c.Status(status).JSON(errorBody(code, err))
			}
			log.Error().Err(err).Str("user_id", id.UserID).Msg("resolver permisos")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudieron verificar los permisos, intente más tarde",
			})
		}
		c.Locals(LocalSubject, s)
		return c.Next()
	}
}

// GetSubject devuelve el sujeto cargado por LoadSubject.
func GetSubject(c *fiber.Ctx) (access.Subject, bool) {
	s, ok := c.Locals(LocalSubject).(access.Subject)
	return s, ok
}

// RequirePermission exige todos los códigos. Debe usarse DESPUÉS de LoadSubject.
// Responde 403 con el nombre visible del primer permiso faltante.
func RequirePermission(codes ...access.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := GetSubject(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
		}
		for _, code := range codes {
			if !s.Can(code) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Code:       "FORBIDDEN",
					Message:    "falta el permiso '" + code.DisplayName() + "'",
					Permission: code.DisplayName(),
				})
			}
		}
		return c.Next()
	}
}

// RequireAnyPermission exige al menos uno de los códigos (visibilidad de módulo).
func RequireAnyPermission(codes ...access.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := GetSubject(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sujeto no cargado"})
		}
		if s.Permissions.HasAny(codes...) {
			return c.Next()
		}
		names := make([]string, 0, len(codes))
		for _, code := range codes {
			names = append(names, code.DisplayName())
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "requiere alguno de: " + strings.Join(names, ", "),
		})
	}
}
