package dto

import (
	"time"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Person         string    `json:"person"`
	Active         bool      `json:"active"`
	PsychologistID *string   `json:"psychologist_id,omitempty"`
	PatientID      *string   `json:"patient_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT y los permisos efectivos al momento del login.
type LoginResponse struct {
	Token       string       `json:"token"`
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
	Modules     []string     `json:"modules"`
}

// AssignProfilesRequest reemplaza los perfiles de un usuario.
type AssignProfilesRequest struct {
	ProfileIDs []string `json:"perfilesIds"`
}

// UserProfilesResponse perfiles asignados a un usuario.
type UserProfilesResponse struct {
	UserID   string            `json:"user_id"`
	Profiles []ProfileResponse `json:"profiles"`
}

// MyPermissionsResponse permisos efectivos del usuario autenticado.
type MyPermissionsResponse struct {
	UserID      string   `json:"user_id"`
	Codes       []string `json:"codes"`
	Permissions []string `json:"permissions"` // nombres visibles
}

// MyModulesResponse módulos visibles en la navegación.
type MyModulesResponse struct {
	Modules []string `json:"modules"`
}

// UserFromEntity convierte la entidad en respuesta.
func UserFromEntity(u *entity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Person:         u.Person,
		Active:         u.Active,
		PsychologistID: u.PsychologistID,
		PatientID:      u.PatientID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
