package repository

import (
	"context"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// PermissionRepository es el catálogo de permisos sembrado. Solo lectura.
type PermissionRepository interface {
	List(ctx context.Context) ([]*entity.Permission, error)
	GetByName(ctx context.Context, name string) (*entity.Permission, error)
	GetByCode(ctx context.Context, code string) (*entity.Permission, error)
	ListByModule(ctx context.Context, moduleName string) ([]*entity.Permission, error)

	// ExistingIDs devuelve el subconjunto de ids que existen en el catálogo.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}
