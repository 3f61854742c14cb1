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

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

const profileColumns = `pr.id, pr.name, pr.description, pr.created_at, pr.updated_at,
	(SELECT count(*) FROM user_profiles up WHERE up.profile_id = pr.id)`

// ProfileRepo implementación de ProfileRepository sobre PostgreSQL (usable con pool o tx).
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador de perfiles. Pasar pool o tx (Querier).
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

func scanProfile(s scanner, p *entity.Profile) error {
	return s.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt, &p.UsersCount)
}

// Create persiste un perfil nuevo (sin permisos).
func (r *ProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	query := `
		INSERT INTO profiles (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) getOne(ctx context.Context, where, arg string) (*entity.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles pr ` + where
	var p entity.Profile
	if err := scanProfile(r.q.QueryRow(ctx, query, arg), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	list := []*entity.Profile{&p}
	if err := loadProfilePermissions(ctx, r.q, list); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID carga el perfil con sus permisos y el conteo de usuarios.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return r.getOne(ctx, `WHERE pr.id = $1`, id)
}

// GetByName busca por nombre exacto (ya normalizado por el caso de uso).
func (r *ProfileRepo) GetByName(ctx context.Context, name string) (*entity.Profile, error) {
	return r.getOne(ctx, `WHERE pr.name = $1`, name)
}

// List devuelve todos los perfiles ordenados por nombre.
func (r *ProfileRepo) List(ctx context.Context) ([]*entity.Profile, error) {
	return listProfiles(ctx, r.q, `SELECT `+profileColumns+` FROM profiles pr ORDER BY pr.name`)
}

// Update cambia nombre y descripción.
func (r *ProfileRepo) Update(ctx context.Context, p *entity.Profile) error {
	query := `UPDATE profiles SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Description, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el perfil; sus filas de permisos caen en cascada. Con usuarios
// asignados la FK lo impide.
func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.HasDependentsError{Kind: "usuarios"}
		}
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountUsers cuenta los usuarios con el perfil asignado.
func (r *ProfileRepo) CountUsers(ctx context.Context, id string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM user_profiles WHERE profile_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count profile users: %w", err)
	}
	return n, nil
}

// ReplacePermissions borra e inserta el conjunto completo. Debe ir en transacción.
func (r *ProfileRepo) ReplacePermissions(ctx context.Context, profileID string, permissionIDs []string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, profileID).Scan(&exists); err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM profile_permissions WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("clear profile permissions: %w", err)
	}
	if len(permissionIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO profile_permissions (profile_id, permission_id)
		SELECT $1, u.id FROM unnest($2::text[]) AS u(id)
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, profileID, permissionIDs); err != nil {
		if isForeignKeyViolation(err) {
			return &domain.InvalidReferenceError{Kind: "permiso", IDs: permissionIDs}
		}
		return fmt.Errorf("insert profile permissions: %w", err)
	}
	return nil
}

// ExistingIDs devuelve los ids de perfil que existen, en el orden recibido.
func (r *ProfileRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	return existingIDs(ctx, r.q, "profiles", ids)
}

func listProfiles(ctx context.Context, q Querier, query string, args ...any) ([]*entity.Profile, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Profile
	for rows.Next() {
		var p entity.Profile
		if err := scanProfile(rows, &p); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadProfilePermissions(ctx, q, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadProfilePermissions llena Permissions de cada perfil con una sola consulta.
func loadProfilePermissions(ctx context.Context, q Querier, profiles []*entity.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Profile, len(profiles))
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	query := `SELECT pp.profile_id, ` + permissionColumns + permissionFrom + `
		JOIN profile_permissions pp ON pp.permission_id = p.id
		WHERE pp.profile_id = ANY($1)
		ORDER BY p.name`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load profile permissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			profileID string
			perm      entity.Permission
		)
		err := rows.Scan(&profileID, &perm.ID, &perm.Code, &perm.Name, &perm.Description,
			&perm.ModuleID, &perm.ModuleName, &perm.ActionID, &perm.ActionName)
		if err != nil {
			return fmt.Errorf("scan profile permission: %w", err)
		}
		if p := byID[profileID]; p != nil {
			p.Permissions = append(p.Permissions, perm)
		}
	}
	return rows.Err()
}
