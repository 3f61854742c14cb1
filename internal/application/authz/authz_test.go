package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	userID   = "u-1"
	psiID    = "psi-1"
	pacID    = "pac-1"
	pPsico   = "perfil-psicologo"
	pSesion  = "perfil-sesiones"
	pPac     = "perfil-paciente"
	pVacio   = "perfil-vacio"
	inactivo = "u-inactivo"
)

type fixture struct {
	store  *memory.Store
	assign *authz.AssignmentUseCase
	eval   *authz.Evaluator
}

func strptr(s string) *string { return &s }

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore().SeedCatalog()
	store.AddProfile(pPsico, "Psicólogo", access.InformesVer, access.InformesEditar, access.InformesRegistrar)
	store.AddProfile(pSesion, "Agenda", access.SesionesVer, access.InformesVer)
	store.AddProfile(pPac, "Paciente", access.InformesVer)
	store.AddProfile(pVacio, "Sin permisos")
	store.AddUser(entity.User{ID: userID, Email: "dra@consultorio.co", Active: true, PsychologistID: strptr(psiID)})
	store.AddUser(entity.User{ID: inactivo, Email: "baja@consultorio.co", Active: false}, pPsico)

	assign := authz.NewAssignmentUseCase(store.Users(), store, zerolog.Nop(), nil)
	eval := authz.NewEvaluator(store.Users(), assign, zerolog.Nop(), nil)
	return fixture{store: store, assign: assign, eval: eval}
}

// ──────────────────────────────────────────────────────────────────────────────
// Assign / Revoke
// ──────────────────────────────────────────────────────────────────────────────

func TestAssign_RoundTripConRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.assign.Assign(ctx, userID, []string{pPsico}))
	ok, err := f.eval.HasPermission(ctx, userID, access.InformesEditar)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.assign.Revoke(ctx, userID, pPsico))
	ok, err = f.eval.HasPermission(ctx, userID, access.InformesEditar)
	require.NoError(t, err)
	assert.False(t, ok, "sin otro perfil que lo otorgue, el permiso desaparece")

	assert.ErrorIs(t, f.assign.Revoke(ctx, userID, pPsico), domain.ErrNotFound)
}

// Escenario E: un perfil inexistente aborta todo y la asignación previa queda igual.
func TestAssign_PerfilInexistente_NoModificaAsignacionPrevia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pSesion}))

	err := f.assign.Assign(ctx, userID, []string{pPsico, "perfil-fantasma", "otro-fantasma"})

	var ref *domain.InvalidReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, "perfil", ref.Kind)
	assert.Equal(t, []string{"perfil-fantasma"}, ref.IDs, "se informa el primer id faltante")
	assert.Equal(t, domain.StatusBadRequest, domain.StatusOf(err))
	assert.Equal(t, []string{pSesion}, f.store.ProfileIDsOf(userID))
}

func TestAssign_FalloAlEscribir_Revierte(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pSesion}))

	f.store.FailOn("ReplaceProfiles", errors.New("timeout"))
	assert.Error(t, f.assign.Assign(ctx, userID, []string{pPsico}))
	assert.Equal(t, []string{pSesion}, f.store.ProfileIDsOf(userID))
}

func TestAssign_UsuarioInexistente(t *testing.T) {
	f := newFixture(t)
	err := f.assign.Assign(context.Background(), "nadie", []string{pPsico})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, domain.StatusNotFound, domain.StatusOf(err))
}

func TestAssign_ListaVaciaQuitaTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pPsico, pSesion}))

	require.NoError(t, f.assign.Assign(ctx, userID, nil))

	out, err := f.assign.ProfilesOf(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, out.Profiles)
}

// ──────────────────────────────────────────────────────────────────────────────
// EffectivePermissions / Evaluator
// ──────────────────────────────────────────────────────────────────────────────

func TestEffectivePermissions_UnionExacta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pPsico, pSesion, pVacio}))

	got, err := f.assign.EffectivePermissions(ctx, userID)
	require.NoError(t, err)

	want := access.NewPermissionSet(
		access.InformesVer, access.InformesEditar, access.InformesRegistrar, access.SesionesVer,
	)
	assert.True(t, want.Equal(got), "esperado %v, obtenido %v", want.Strings(), got.Strings())
}

func TestEffectivePermissions_SinPerfiles_Vacio(t *testing.T) {
	f := newFixture(t)
	got, err := f.assign.EffectivePermissions(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluator_HasAnyYNombre(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pSesion}))

	ok, err := f.eval.HasAnyPermission(ctx, userID, access.InformesEliminar, access.SesionesVer)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.eval.HasAnyPermission(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.eval.HasPermissionNamed(ctx, userID, "Ver Sesiones")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.eval.HasPermissionNamed(ctx, userID, "Permiso Inventado")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluator_VisibleModules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pSesion}))

	mods, err := f.eval.VisibleModules(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{access.ModuloInformes, access.ModuloSesiones}, mods)
}

// ──────────────────────────────────────────────────────────────────────────────
// Subject
// ──────────────────────────────────────────────────────────────────────────────

func TestSubject_HidrataReferenciasYPermisos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pPsico}))

	s, err := f.eval.Subject(ctx, authz.Identity{UserID: userID}, false)
	require.NoError(t, err)
	assert.Equal(t, psiID, s.PsychologistID)
	assert.Empty(t, s.PatientID)
	assert.True(t, s.Can(access.InformesEditar))
}

func TestSubject_UsaSnapshotSalvoRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.assign.Assign(ctx, userID, []string{pPsico}))
	snapshot := access.NewPermissionSet(access.SesionesVer)

	s, err := f.eval.Subject(ctx, authz.Identity{UserID: userID, Permissions: snapshot}, false)
	require.NoError(t, err)
	assert.True(t, s.Can(access.SesionesVer))
	assert.False(t, s.Can(access.InformesEditar), "con snapshot no se consulta la base")

	s, err = f.eval.Subject(ctx, authz.Identity{UserID: userID, Permissions: snapshot}, true)
	require.NoError(t, err)
	assert.True(t, s.Can(access.InformesEditar))
	assert.False(t, s.Can(access.SesionesVer))
}

func TestSubject_UsuarioInactivoOInexistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.eval.Subject(ctx, authz.Identity{UserID: inactivo}, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.eval.Subject(ctx, authz.Identity{UserID: "borrado"}, false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.eval.Subject(ctx, authz.Identity{}, false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEvaluator_RequireDevuelvePermisoFaltante(t *testing.T) {
	f := newFixture(t)
	s := access.Subject{UserID: userID, Permissions: access.NewPermissionSet(access.InformesVer)}

	assert.NoError(t, f.eval.Require(s, access.InformesVer))

	err := f.eval.Require(s, access.InformesVer, access.PerfilesAsignarPermisos)
	var fe *domain.ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Asignar Permisos", fe.Permission)

	assert.NoError(t, f.eval.RequireAny(s, access.PerfilesVer, access.InformesVer))
	assert.ErrorIs(t, f.eval.RequireAny(s, access.PerfilesVer), domain.ErrForbidden)
}
