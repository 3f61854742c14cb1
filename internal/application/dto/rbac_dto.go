package dto

import (
	"time"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// PermissionResponse salida de un permiso del catálogo.
type PermissionResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Module      string `json:"module"`
	Action      string `json:"action"`
}

// CreateProfileRequest entrada para crear un perfil.
type CreateProfileRequest struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// UpdateProfileRequest entrada para actualizar un perfil (reemplazo completo).
type UpdateProfileRequest struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// SetPermissionsRequest reemplaza los permisos de un perfil.
type SetPermissionsRequest struct {
	PermissionIDs []string `json:"permisosIds"`
}

// SetPermissionsResponse cuántos permisos quedaron asignados.
type SetPermissionsResponse struct {
	ProfileID     string `json:"profile_id"`
	AssignedCount int    `json:"assigned_count"`
}

// ProfileResponse salida de un perfil.
type ProfileResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	UsersCount  int                  `json:"users_count"`
	Permissions []PermissionResponse `json:"permissions,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProfileListResponse listado de perfiles.
type ProfileListResponse struct {
	Items []ProfileResponse `json:"items"`
}

// PermissionFromEntity construye la salida de un permiso.
func PermissionFromEntity(p *entity.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Module:      p.ModuleName,
		Action:      p.ActionName,
	}
}

// ProfileFromEntity construye la salida de un perfil con los permisos cargados.
func ProfileFromEntity(p *entity.Profile) ProfileResponse {
	out := ProfileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UsersCount:  p.UsersCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Permissions {
		out.Permissions = append(out.Permissions, PermissionFromEntity(&p.Permissions[i]))
	}
	return out
}
