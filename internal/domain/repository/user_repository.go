package repository

import (
	"context"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User y sus perfiles (DIP).
// Las lecturas devuelven (nil, nil) si el usuario no existe.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// ListProfiles devuelve los perfiles asignados con sus permisos cargados.
	ListProfiles(ctx context.Context, userID string) ([]*entity.Profile, error)

	// ReplaceProfiles reemplaza por completo el conjunto de perfiles del usuario.
	// Debe ejecutarse dentro de una transacción (ver authz.TxRunner).
	ReplaceProfiles(ctx context.Context, userID string, profileIDs []string) error

	// RemoveProfile quita una asignación; informa si existía.
	RemoveProfile(ctx context.Context, userID, profileID string) (bool, error)
}
