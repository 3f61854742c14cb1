package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrUserNotFound     = errors.New("usuario no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicateName    = errors.New("ya existe un registro con ese nombre")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrInvalidReference = errors.New("referencia inválida")
	ErrHasDependents    = errors.New("el registro tiene dependientes")
)

// FieldError describe un error de validación sobre un campo del formulario.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError acumula errores por campo en lugar de fallar en el primero.
type ValidationError struct {
	Fields []FieldError
}

// Add registra un error para el campo indicado.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// HasErrors informa si se registró al menos un error.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil devuelve el error solo si tiene campos; así se puede retornar directamente.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Has informa si el campo tiene al menos un error registrado.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validación: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError crea un error de validación de un solo campo.
func NewValidationError(field, reason string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, reason)
	return v
}

// ForbiddenError indica qué permiso faltó o por qué regla se negó el acceso.
type ForbiddenError struct {
	Permission string // nombre del permiso requerido, vacío si la negación es por regla
	Reason     string
}

func (e *ForbiddenError) Error() string {
	if e.Permission != "" && e.Reason != "" {
		return fmt.Sprintf("acceso denegado: falta el permiso %q (%s)", e.Permission, e.Reason)
	}
	if e.Permission != "" {
		return fmt.Sprintf("acceso denegado: falta el permiso %q", e.Permission)
	}
	return "acceso denegado: " + e.Reason
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// InvalidReferenceError señala ids colgantes (perfil, permiso, paciente, psicólogo).
type InvalidReferenceError struct {
	Kind string
	IDs  []string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("referencia inválida a %s: %s", e.Kind, strings.Join(e.IDs, ", "))
}

func (e *InvalidReferenceError) Is(target error) bool { return target == ErrInvalidReference }

// HasDependentsError bloquea un borrado por restricción referencial.
type HasDependentsError struct {
	Kind  string
	Count int
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("no se puede eliminar: tiene %d %s asignados", e.Count, e.Kind)
}

func (e *HasDependentsError) Is(target error) bool { return target == ErrHasDependents }

// Status clasifica un error sin depender del transporte; la capa HTTP lo traduce.
type Status string

const (
	StatusOK           Status = "ok"
	StatusUnauthorized Status = "unauthorized"
	StatusForbidden    Status = "forbidden"
	StatusNotFound     Status = "not_found"
	StatusConflict     Status = "conflict"
	StatusBadRequest   Status = "bad_request"
	StatusInternal     Status = "internal"
)

// StatusOf devuelve la clasificación de err. Un error desconocido es interno.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrUnauthorized):
		return StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return StatusNotFound
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrHasDependents), errors.Is(err, ErrConflict):
		return StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidReference):
		return StatusBadRequest
	default:
		return StatusInternal
	}
}
