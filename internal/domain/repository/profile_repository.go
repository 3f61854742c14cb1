package repository

import (
	"context"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// ProfileRepository define el puerto de persistencia para perfiles.
// Create y Update devuelven domain.ErrDuplicateName ante nombre repetido.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	// GetByID carga el perfil con sus permisos y el conteo de usuarios.
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByName(ctx context.Context, name string) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
	// Delete elimina el perfil y en cascada sus filas de permisos.
	Delete(ctx context.Context, id string) error
	CountUsers(ctx context.Context, id string) (int, error)

	// ReplacePermissions reemplaza por completo los permisos del perfil.
	ReplacePermissions(ctx context.Context, profileID string, permissionIDs []string) error

	// ExistingIDs devuelve el subconjunto de ids de perfil que existen.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}
