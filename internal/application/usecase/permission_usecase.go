package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

// PermissionUseCase expone el catálogo de permisos (solo lectura).
type PermissionUseCase struct {
	repo repository.PermissionRepository
}

// NewPermissionUseCase construye el caso de uso.
func NewPermissionUseCase(repo repository.PermissionRepository) *PermissionUseCase {
	return &PermissionUseCase{repo: repo}
}

// List devuelve el catálogo completo.
func (uc *PermissionUseCase) List(ctx context.Context) ([]dto.PermissionResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toPermissionResponses(list), nil
}

// FindByName busca por nombre visible ("Editar Informe"). ErrNotFound si no existe.
func (uc *PermissionUseCase) FindByName(ctx context.Context, name string) (*dto.PermissionResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("nombre", "es obligatorio")
	}
	p, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.PermissionFromEntity(p)
	return &out, nil
}

// FindByCode busca por código estable ("informes.editar"). ErrNotFound si no existe.
func (uc *PermissionUseCase) FindByCode(ctx context.Context, code string) (*dto.PermissionResponse, error) {
	p, err := uc.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.PermissionFromEntity(p)
	return &out, nil
}

// ListByModule devuelve los permisos de un módulo; vacío si el módulo no tiene permisos.
func (uc *PermissionUseCase) ListByModule(ctx context.Context, module string) ([]dto.PermissionResponse, error) {
	list, err := uc.repo.ListByModule(ctx, strings.TrimSpace(module))
	if err != nil {
		return nil, err
	}
	return toPermissionResponses(list), nil
}

func toPermissionResponses(list []*entity.Permission) []dto.PermissionResponse {
	out := make([]dto.PermissionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.PermissionFromEntity(p))
	}
	return out
}
