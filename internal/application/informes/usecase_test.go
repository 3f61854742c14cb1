package informes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/application/informes"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	drX  = "psi-x"
	drY  = "psi-y"
	pac1 = "pac-1"
	pac2 = "pac-2"
	r1   = "inf-r1"
	r2   = "inf-r2"
)

var psicologoCodes = []access.Code{
	access.InformesVer, access.InformesRegistrar, access.InformesEditar, access.InformesEliminar,
}

func psicologo(id string, codes ...access.Code) access.Subject {
	return access.Subject{UserID: "u-" + id, PsychologistID: id, Permissions: access.NewPermissionSet(codes...)}
}

func paciente(id string, codes ...access.Code) access.Subject {
	return access.Subject{UserID: "u-" + id, PatientID: id, Permissions: access.NewPermissionSet(codes...)}
}

func newUC(t *testing.T, policy access.ReportPolicy) (*informes.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddPsychologist(entity.Psychologist{ID: drX, Name: "Dr. X"})
	store.AddPsychologist(entity.Psychologist{ID: drY, Name: "Dra. Y"})
	store.AddPatient(entity.Patient{ID: pac1, Name: "Ana"})
	store.AddPatient(entity.Patient{ID: pac2, Name: "Luis"})
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store.AddInforme(entity.Informe{ID: r1, Title: "R1", Content: "c", PsychologistID: drX, PatientIDs: []string{pac1}, CreatedAt: base})
	store.AddInforme(entity.Informe{ID: r2, Title: "R2", Content: "c", PsychologistID: drY, PatientIDs: []string{pac1}, Private: true, CreatedAt: base.Add(time.Hour)})

	uc := informes.NewUseCase(store.Informes(), store, policy, zerolog.Nop(), nil)
	return uc, store
}

func validCreate() dto.CreateInformeRequest {
	return dto.CreateInformeRequest{Title: "Evaluación", Content: "Contenido del informe", PatientIDs: []string{pac1}}
}

func validUpdate(owner string) dto.UpdateInformeRequest {
	return dto.UpdateInformeRequest{Title: "Evaluación revisada", Content: "Nuevo contenido", PatientIDs: []string{pac1}, PsychologistID: owner}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PropietarioPorDefectoEsElLlamador(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})

	out, err := uc.Create(context.Background(), psicologo(drX, psicologoCodes...), validCreate())

	require.NoError(t, err)
	assert.Equal(t, drX, out.PsychologistID)
	assert.Equal(t, []string{pac1}, out.PatientIDs)
	assert.True(t, out.CanEdit)
	assert.True(t, out.CanDelete)
}

// Escenario C.
func TestCreate_SinPacientes_ErrorDeValidacion(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	in := validCreate()
	in.PatientIDs = []string{}
	in.Title = " "

	_, err := uc.Create(context.Background(), psicologo(drX, psicologoCodes...), in)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has(informes.FieldPatients))
	assert.True(t, ve.Has(informes.FieldTitle), "los errores se acumulan por campo")
	assert.False(t, ve.Has(informes.FieldContent))
}

func TestCreate_PacienteInexistente_FallaSinPersistir(t *testing.T) {
	uc, store := newUC(t, access.ReportPolicy{})
	in := validCreate()
	in.PatientIDs = []string{pac1, "pac-fantasma"}
	s := psicologo(drX, psicologoCodes...)

	_, err := uc.Create(context.Background(), s, in)

	var ref *domain.InvalidReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, "paciente", ref.Kind)
	assert.Equal(t, []string{"pac-fantasma"}, ref.IDs)

	all, err := store.Informes().ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2, "no debe quedar un informe sin pacientes")
}

func TestCreate_SinPermisoOSinFicha_Prohibido(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})

	_, err := uc.Create(context.Background(), psicologo(drX, access.InformesVer), validCreate())
	var fe *domain.ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Registrar Informe", fe.Permission)

	_, err = uc.Create(context.Background(), paciente(pac1, access.InformesRegistrar), validCreate())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate_OtroPropietario_RequiereCambiarPropietario(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	in := validCreate()
	in.PsychologistID = drY

	_, err := uc.Create(context.Background(), psicologo(drX, psicologoCodes...), in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	elevado := psicologo(drX, append(psicologoCodes, access.InformesCambiarPropietario)...)
	out, err := uc.Create(context.Background(), elevado, in)
	require.NoError(t, err)
	assert.Equal(t, drY, out.PsychologistID)

	in.PsychologistID = "psi-fantasma"
	_, err = uc.Create(context.Background(), elevado, in)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Delete
// ──────────────────────────────────────────────────────────────────────────────

// Escenario A sobre el caso de uso completo.
func TestUpdate_SoloPropietario(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	u := psicologo(drX, access.InformesVer, access.InformesEditar)

	out, err := uc.Update(context.Background(), u, r1, validUpdate(""))
	require.NoError(t, err)
	assert.Equal(t, "Evaluación revisada", out.Title)
	assert.Equal(t, drX, out.PsychologistID, "sin psicologoId se conserva el propietario")

	_, err = uc.Update(context.Background(), u, r2, validUpdate(""))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_NoExiste(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	_, err := uc.Update(context.Background(), psicologo(drX, psicologoCodes...), "nada", validUpdate(""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_ProhibidoAntesQueValidacion(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	in := validUpdate("")
	in.Title = ""

	_, err := uc.Update(context.Background(), psicologo(drY, access.InformesEditar), r1, in)
	assert.ErrorIs(t, err, domain.ErrForbidden, "un no propietario no recibe errores de formulario")

	_, err = uc.Update(context.Background(), psicologo(drX, access.InformesEditar), r1, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_ReasignarPropietarioSinPermiso_RechazaYNoAplica(t *testing.T) {
	uc, store := newUC(t, access.ReportPolicy{})

	_, err := uc.Update(context.Background(), psicologo(drX, psicologoCodes...), r1, validUpdate(drY))

	var fe *domain.ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Cambiar Propietario", fe.Permission)
	got, err := store.Informes().GetByID(context.Background(), r1)
	require.NoError(t, err)
	assert.Equal(t, drX, got.PsychologistID)
	assert.Equal(t, "R1", got.Title, "nada del cambio se aplica")
}

func TestUpdate_ReasignarPropietarioConPermiso(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	elevado := psicologo(drX, append(psicologoCodes, access.InformesCambiarPropietario)...)

	out, err := uc.Update(context.Background(), elevado, r1, validUpdate(drY))
	require.NoError(t, err)
	assert.Equal(t, drY, out.PsychologistID)
	assert.False(t, out.CanDelete, "tras reasignar deja de ser el propietario")
}

func TestUpdate_ReasignarAPsicologoInexistente_ReferenciaInvalidaSinCambios(t *testing.T) {
	uc, store := newUC(t, access.ReportPolicy{})
	elevado := psicologo(drX, append(psicologoCodes, access.InformesCambiarPropietario)...)

	_, err := uc.Update(context.Background(), elevado, r1, validUpdate("psi-fantasma"))

	var ref *domain.InvalidReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, "psicólogo", ref.Kind)
	assert.Equal(t, []string{"psi-fantasma"}, ref.IDs)

	got, err := store.Informes().GetByID(context.Background(), r1)
	require.NoError(t, err)
	assert.Equal(t, drX, got.PsychologistID)
	assert.Equal(t, "R1", got.Title)
	assert.Equal(t, "c", got.Content)
}

// "Cambiar Propietario" no convierte a un usuario en editor de informes ajenos.
func TestUpdate_NoDuenoConCambiarPropietario_ProhibidoYSinCambios(t *testing.T) {
	uc, store := newUC(t, access.ReportPolicy{})
	admin := access.Subject{
		UserID:      "u-admin",
		Permissions: access.NewPermissionSet(access.InformesVer, access.InformesEditar, access.InformesCambiarPropietario),
	}
	in := validUpdate("")
	in.Content = "reescrito por admin"
	in.Private = false

	_, err := uc.Update(context.Background(), admin, r2, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Caso 2: un psicólogo no propietario con el mismo permiso tampoco.
	_, err = uc.Update(context.Background(), psicologo(drX, append(psicologoCodes, access.InformesCambiarPropietario)...), r2, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := store.Informes().GetByID(context.Background(), r2)
	require.NoError(t, err)
	assert.Equal(t, "c", got.Content)
	assert.True(t, got.Private)
	assert.Equal(t, drY, got.PsychologistID)
}

func TestUpdate_ReemplazoDePacientesAtomico(t *testing.T) {
	uc, store := newUC(t, access.ReportPolicy{})
	u := psicologo(drX, psicologoCodes...)
	in := validUpdate("")
	in.PatientIDs = []string{pac2}

	store.FailOn("ReplacePatients", errors.New("conexión perdida"))
	_, err := uc.Update(context.Background(), u, r1, in)
	require.Error(t, err)

	got, err := store.Informes().GetByID(context.Background(), r1)
	require.NoError(t, err)
	assert.Equal(t, []string{pac1}, got.PatientIDs)
	assert.Equal(t, "R1", got.Title, "el título tampoco cambia si falla el reemplazo de pacientes")

	out, err := uc.Update(context.Background(), u, r1, in)
	require.NoError(t, err)
	assert.Equal(t, []string{pac2}, out.PatientIDs)
}

func TestDelete_SoloPropietarioConPermiso(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	ctx := context.Background()

	assert.ErrorIs(t, uc.Delete(ctx, psicologo(drY, psicologoCodes...), r1), domain.ErrForbidden)
	assert.ErrorIs(t, uc.Delete(ctx, psicologo(drX, access.InformesEditar), r1), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, psicologo(drX, psicologoCodes...), r1))
	assert.ErrorIs(t, uc.Delete(ctx, psicologo(drX, psicologoCodes...), r1), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Get / List
// ──────────────────────────────────────────────────────────────────────────────

// Escenario B sobre el caso de uso completo.
func TestGet_PacienteYPrivacidad(t *testing.T) {
	uc, store := newUC(t, access.ReportPolicy{})
	p := paciente(pac1, access.InformesVer)

	_, err := uc.Get(context.Background(), p, r2)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	inf, err := store.Informes().GetByID(context.Background(), r2)
	require.NoError(t, err)
	inf.Private = false
	require.NoError(t, store.Informes().Save(context.Background(), inf))

	out, err := uc.Get(context.Background(), p, r2)
	require.NoError(t, err)
	assert.False(t, out.CanEdit)
}

func TestList_FiltraPorVisibilidad(t *testing.T) {
	uc, _ := newUC(t, access.ReportPolicy{})
	ctx := context.Background()

	out, err := uc.List(ctx, paciente(pac1, access.InformesVer))
	require.NoError(t, err)
	require.Len(t, out.Items, 1, "R2 es privado")
	assert.Equal(t, r1, out.Items[0].ID)

	out, err = uc.List(ctx, psicologo(drY, access.InformesVer))
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, r2, out.Items[0].ID)

	_, err = uc.List(ctx, psicologo(drY))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestList_AnulacionAdministrador(t *testing.T) {
	admin := psicologo("psi-admin", access.InformesVer, access.InformesVerTodos)

	uc, _ := newUC(t, access.ReportPolicy{})
	out, err := uc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	uc, _ = newUC(t, access.ReportPolicy{AllowAdminOverride: true})
	out, err = uc.List(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, r2, out.Items[0].ID, "más recientes primero")
}
