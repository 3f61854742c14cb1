package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

const permissionColumns = `p.id, p.code, p.name, p.description, m.id, m.name, a.id, a.name`

const permissionFrom = `
	FROM permissions p
	JOIN modules m ON m.id = p.module_id
	JOIN actions a ON a.id = p.action_id`

// PermissionRepo lee el catálogo de permisos (usable con pool o tx).
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador del catálogo. Pasar pool o tx (Querier).
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

func scanPermission(s scanner, p *entity.Permission) error {
	return s.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.ModuleID, &p.ModuleName, &p.ActionID, &p.ActionName)
}

func (r *PermissionRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Permission, error) {
	query := `SELECT ` + permissionColumns + permissionFrom + where + ` ORDER BY m.name, p.name`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := scanPermission(rows, &p); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *PermissionRepo) get(ctx context.Context, where string, arg string) (*entity.Permission, error) {
	query := `SELECT ` + permissionColumns + permissionFrom + where
	var p entity.Permission
	if err := scanPermission(r.q.QueryRow(ctx, query, arg), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return &p, nil
}

// List devuelve el catálogo completo, por módulo y nombre.
func (r *PermissionRepo) List(ctx context.Context) ([]*entity.Permission, error) {
	return r.list(ctx, "")
}

// GetByName busca por nombre visible exacto.
func (r *PermissionRepo) GetByName(ctx context.Context, name string) (*entity.Permission, error) {
	return r.get(ctx, ` WHERE p.name = $1`, name)
}

// GetByCode busca por código estable.
func (r *PermissionRepo) GetByCode(ctx context.Context, code string) (*entity.Permission, error) {
	return r.get(ctx, ` WHERE p.code = $1`, code)
}

// ListByModule filtra por nombre de módulo.
func (r *PermissionRepo) ListByModule(ctx context.Context, moduleName string) ([]*entity.Permission, error) {
	return r.list(ctx, ` WHERE m.name = $1`, moduleName)
}

// ExistingIDs devuelve los ids que existen, en el orden recibido.
func (r *PermissionRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	return existingIDs(ctx, r.q, "permissions", ids)
}

// existingIDs filtra ids contra la tabla conservando el orden de entrada.
// table es siempre una constante del paquete.
func existingIDs(ctx context.Context, q Querier, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT u.id
		FROM unnest($1::text[]) WITH ORDINALITY AS u(id, ord)
		WHERE EXISTS (SELECT 1 FROM ` + table + ` t WHERE t.id = u.id)
		ORDER BY u.ord`
	return collectIDs(ctx, q, query, ids)
}

// missingIDs es el complemento de existingIDs.
func missingIDs(ctx context.Context, q Querier, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT u.id
		FROM unnest($1::text[]) WITH ORDINALITY AS u(id, ord)
		WHERE NOT EXISTS (SELECT 1 FROM ` + table + ` t WHERE t.id = u.id)
		ORDER BY u.ord`
	return collectIDs(ctx, q, query, ids)
}

func collectIDs(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan ids: %w", err)
	}
	return out, nil
}
