package authz

import (
	"context"

	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repos de usuarios y perfiles.
// Garantiza que una asignación se vea completa o no se vea.
type TxRunner interface {
	RunAssignment(ctx context.Context, fn func(
		users repository.UserRepository,
		profiles repository.ProfileRepository,
	) error) error
}

// PermissionSource resuelve los permisos efectivos de un usuario.
// Lo implementa *AssignmentUseCase.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID string) (access.PermissionSet, error)
}

// Identity es lo que el transporte sabe del llamador: su id y, opcionalmente,
// un snapshot de permisos emitido junto al token. Permissions nil indica que
// no hay snapshot.
type Identity struct {
	UserID      string
	Permissions access.PermissionSet
}
