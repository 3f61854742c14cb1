package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultorio-api/internal/application/usecase"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/infrastructure/memory"
)

func TestPermission_FindByName(t *testing.T) {
	uc := usecase.NewPermissionUseCase(memory.NewStore().SeedCatalog().Permissions())

	p, err := uc.FindByName(context.Background(), "Editar Informe")
	require.NoError(t, err)
	assert.Equal(t, string(access.InformesEditar), p.Code)
	assert.Equal(t, access.ModuloInformes, p.Module)
	assert.Equal(t, access.AccionEditar, p.Action)

	_, err = uc.FindByName(context.Background(), "Volar")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.FindByName(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPermission_FindByCode(t *testing.T) {
	uc := usecase.NewPermissionUseCase(memory.NewStore().SeedCatalog().Permissions())

	p, err := uc.FindByCode(context.Background(), "informes.cambiar_propietario")
	require.NoError(t, err)
	assert.Equal(t, "Cambiar Propietario", p.Name)
}

func TestPermission_ListByModule(t *testing.T) {
	uc := usecase.NewPermissionUseCase(memory.NewStore().SeedCatalog().Permissions())

	list, err := uc.ListByModule(context.Background(), access.ModuloInformes)
	require.NoError(t, err)
	assert.Len(t, list, len(access.CodesOfModule(access.ModuloInformes)))
	for _, p := range list {
		assert.Equal(t, access.ModuloInformes, p.Module)
	}

	empty, err := uc.ListByModule(context.Background(), "Facturación")
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := uc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(access.Catalog))
}
