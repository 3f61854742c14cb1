package dto

import "github.com/jhoicas/Consultorio-api/internal/domain"

// ErrorResponse cuerpo de error HTTP. Fields solo viene en errores de validación
// y Permission solo cuando la negación se debe a un permiso faltante.
type ErrorResponse struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Permission string              `json:"permission,omitempty"`
	Fields     []domain.FieldError `json:"fields,omitempty"`
}
