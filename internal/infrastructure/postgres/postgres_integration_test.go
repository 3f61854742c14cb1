//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/application/informes"
	"github.com/jhoicas/Consultorio-api/internal/application/usecase"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/infrastructure/postgres"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("consultorio_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor de PostgreSQL")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminar contenedor: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := postgres.Open(ctx, dsn, 5)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	require.NoError(t, postgres.Migrate(ctx, pool), "las migraciones son idempotentes")
	return pool
}

func exec(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	_, err := pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func permID(c access.Code) string { return "perm-" + string(c) }

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo y perfiles
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_CatalogoSembrado(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repo := postgres.NewPermissionRepository(pool)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(access.Catalog))

	p, err := repo.GetByName(ctx, "Editar Informe")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, string(access.InformesEditar), p.Code)
	assert.Equal(t, access.ModuloInformes, p.ModuleName)

	missing, err := repo.GetByName(ctx, "No Existe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ids, err := repo.ExistingIDs(ctx, []string{"fantasma", permID(access.InformesVer), permID(access.SesionesVer)})
	require.NoError(t, err)
	assert.Equal(t, []string{permID(access.InformesVer), permID(access.SesionesVer)}, ids)

	admin, err := postgres.NewProfileRepository(pool).GetByID(ctx, "perfil-administrador")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Len(t, admin.Permissions, len(access.Catalog)-1)
}

func TestPostgres_PerfilNombreUnicoYBorradoConUsuarios(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	tx := postgres.NewTxRunner(pool)
	profiles := usecase.NewProfileUseCase(postgres.NewProfileRepository(pool), tx, usecase.DefaultProfileConfig(), zerolog.Nop(), nil)

	created, err := profiles.Create(ctx, dto.CreateProfileRequest{Name: "Recepción", Description: "Agenda de sesiones del consultorio"})
	require.NoError(t, err)

	_, err = profiles.Create(ctx, dto.CreateProfileRequest{Name: "Recepción", Description: "Otra descripción larga"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	n, err := profiles.SetPermissions(ctx, created.ID, []string{permID(access.SesionesVer), "fantasma", permID(access.SesionesVer)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exec(t, pool, `INSERT INTO users (id, email, password_hash) VALUES ('u-1', 'recepcion@consultorio.co', 'x')`)
	assign := authz.NewAssignmentUseCase(postgres.NewUserRepository(pool), tx, zerolog.Nop(), nil)
	require.NoError(t, assign.Assign(ctx, "u-1", []string{created.ID}))

	err = profiles.Delete(ctx, created.ID)
	var dep *domain.HasDependentsError
	require.True(t, errors.As(err, &dep))
	assert.Equal(t, 1, dep.Count)

	require.NoError(t, assign.Revoke(ctx, "u-1", created.ID))
	require.NoError(t, profiles.Delete(ctx, created.ID))
	_, err = profiles.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Asignación y permisos efectivos
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_AsignacionAtomicaYUnion(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(pool)
	assign := authz.NewAssignmentUseCase(users, postgres.NewTxRunner(pool), zerolog.Nop(), nil)

	exec(t, pool, `INSERT INTO users (id, email, password_hash) VALUES ('u-1', 'Dra@Consultorio.co', 'x')`)
	require.NoError(t, assign.Assign(ctx, "u-1", []string{"perfil-psicologo", "perfil-paciente"}))

	err := assign.Assign(ctx, "u-1", []string{"perfil-paciente", "perfil-fantasma"})
	var ref *domain.InvalidReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, []string{"perfil-fantasma"}, ref.IDs)

	set, err := assign.EffectivePermissions(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, set.HasAll(access.InformesEditar, access.SesionesVer), "la asignación previa sigue intacta")
	assert.False(t, set.Has(access.PerfilesVer))

	u, err := users.GetByEmail(ctx, "dra@consultorio.co")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.Active)
	assert.Nil(t, u.PsychologistID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Informes
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_InformesPacientesYVisibilidad(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	exec(t, pool, `INSERT INTO psychologists (id, name) VALUES ('psi-x', 'Dr. X'), ('psi-y', 'Dra. Y')`)
	exec(t, pool, `INSERT INTO patients (id, name) VALUES ('pac-1', 'Ana'), ('pac-2', 'Luis')`)

	repo := postgres.NewInformeRepository(pool)
	uc := informes.NewUseCase(repo, postgres.NewTxRunner(pool), access.ReportPolicy{}, zerolog.Nop(), nil)
	dr := access.Subject{UserID: "u-x", PsychologistID: "psi-x", Permissions: access.NewPermissionSet(
		access.InformesVer, access.InformesRegistrar, access.InformesEditar, access.InformesEliminar)}

	created, err := uc.Create(ctx, dr, dto.CreateInformeRequest{Title: "Evaluación", Content: "Texto", Private: true, PatientIDs: []string{"pac-2", "pac-1"}})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pac-2", "pac-1"}, got.PatientIDs, "se conserva el orden")

	_, err = uc.Update(ctx, dr, created.ID, dto.UpdateInformeRequest{Title: "Nuevo", Content: "Texto", PatientIDs: []string{"pac-1", "pac-9"}})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evaluación", got.Title, "la transacción se revierte completa")

	paciente := access.Subject{UserID: "u-p", PatientID: "pac-1", Permissions: access.NewPermissionSet(access.InformesVer)}
	list, err := uc.List(ctx, paciente)
	require.NoError(t, err)
	assert.Empty(t, list.Items, "privado: el paciente no lo ve")

	otro := access.Subject{UserID: "u-y", PsychologistID: "psi-y", Permissions: dr.Permissions}
	assert.ErrorIs(t, uc.Delete(ctx, otro, created.ID), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, dr, created.ID))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM informe_patients WHERE informe_id = $1`, created.ID).Scan(&n))
	assert.Zero(t, n, "los pacientes se borran en cascada")
}

func TestPostgres_PsicologoInexistente(t *testing.T) {
	pool := setupDB(t)
	repo := postgres.NewInformeRepository(pool)

	err := repo.Save(context.Background(), &entity.Informe{ID: "inf-1", Title: "t", Content: "c", PsychologistID: "psi-fantasma", CreatedAt: time.Now(), UpdatedAt: time.Now()})

	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}
