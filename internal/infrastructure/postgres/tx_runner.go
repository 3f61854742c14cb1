package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/informes"
	"github.com/jhoicas/Consultorio-api/internal/application/usecase"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

var (
	_ usecase.ProfileTxRunner = (*TxRunner)(nil)
	_ authz.TxRunner          = (*TxRunner)(nil)
	_ informes.TxRunner       = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia una transacción, ejecuta fn con la tx y hace Commit o Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunProfiles ejecuta fn con repos de perfiles y permisos atados a la tx.
func (r *TxRunner) RunProfiles(ctx context.Context, fn func(
	profiles repository.ProfileRepository,
	perms repository.PermissionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProfileRepository(tx), NewPermissionRepository(tx))
	})
}

// RunAssignment ejecuta fn con repos de usuarios y perfiles atados a la tx.
func (r *TxRunner) RunAssignment(ctx context.Context, fn func(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewUserRepository(tx), NewProfileRepository(tx))
	})
}

// RunInformes ejecuta fn con repos de informes, pacientes y psicólogos atados a la tx.
func (r *TxRunner) RunInformes(ctx context.Context, fn func(
	informes repository.InformeRepository,
	patients repository.PatientRepository,
	psychologists repository.PsychologistRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewInformeRepository(tx), NewPatientRepository(tx), NewPsychologistRepository(tx))
	})
}
