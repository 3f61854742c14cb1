package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) findOne(ctx context.Context, where, arg string) (*entity.User, error) {
	query := `
		SELECT id, email, password_hash, person, active, psychologist_id, patient_id, created_at, updated_at
		FROM users ` + where
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Person, &u.Active, &u.PsychologistID, &u.PatientID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email, sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

// ListProfiles devuelve los perfiles asignados con sus permisos cargados.
func (r *UserRepo) ListProfiles(ctx context.Context, userID string) ([]*entity.Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM profiles pr
		JOIN user_profiles upr ON upr.profile_id = pr.id
		WHERE upr.user_id = $1
		ORDER BY pr.name`
	return listProfiles(ctx, r.q, query, userID)
}

// ReplaceProfiles borra e inserta la asignación completa. Debe ir en transacción.
func (r *UserRepo) ReplaceProfiles(ctx context.Context, userID string, profileIDs []string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear user profiles: %w", err)
	}
	if len(profileIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO user_profiles (user_id, profile_id)
		SELECT $1, u.id FROM unnest($2::text[]) AS u(id)
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, userID, profileIDs); err != nil {
		if isForeignKeyViolation(err) {
			return &domain.InvalidReferenceError{Kind: "perfil", IDs: profileIDs}
		}
		return fmt.Errorf("insert user profiles: %w", err)
	}
	return nil
}

// RemoveProfile quita una asignación e informa si existía.
func (r *UserRepo) RemoveProfile(ctx context.Context, userID, profileID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1 AND profile_id = $2`, userID, profileID)
	if err != nil {
		return false, fmt.Errorf("remove user profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
