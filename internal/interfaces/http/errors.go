package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/domain"
)

// statusOf traduce la clasificación de dominio a código HTTP y código de error.
func statusOf(err error) (int, string) {
	switch domain.StatusOf(err) {
	case domain.StatusUnauthorized:
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case domain.StatusForbidden:
		return fiber.StatusForbidden, "FORBIDDEN"
	case domain.StatusNotFound:
		return fiber.StatusNotFound, "NOT_FOUND"
	case domain.StatusConflict:
		switch {
		case errors.Is(err, domain.ErrDuplicateName):
			return fiber.StatusConflict, "DUPLICATE_NAME"
		case errors.Is(err, domain.ErrHasDependents):
			return fiber.StatusConflict, "HAS_DEPENDENTS"
		}
		return fiber.StatusConflict, "CONFLICT"
	case domain.StatusBadRequest:
		if errors.Is(err, domain.ErrInvalidReference) {
			return fiber.StatusBadRequest, "INVALID_REFERENCE"
		}
		return fiber.StatusBadRequest, "VALIDATION"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func errorBody(code string, err error) dto.ErrorResponse {
	out := dto.ErrorResponse{Code: code, Message: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		out.Fields = ve.Fields
	}
	var fe *domain.ForbiddenError
	if errors.As(err, &fe) {
		out.Permission = fe.Permission
	}
	return out
}

// writeError responde con el estado y cuerpo correspondientes a err. Los
// errores internos no exponen detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusOf(err)
	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: "error interno"})
	}
	return c.Status(status).JSON(errorBody(code, err))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
