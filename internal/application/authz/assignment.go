package authz

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/application/ports"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
	"github.com/jhoicas/Consultorio-api/pkg/ids"
)

var _ PermissionSource = (*AssignmentUseCase)(nil)

// AssignmentUseCase administra qué perfiles tiene cada usuario.
type AssignmentUseCase struct {
	users   repository.UserRepository
	tx      TxRunner
	log     zerolog.Logger
	metrics ports.Recorder
}

// NewAssignmentUseCase construye el caso de uso. metrics puede ser nil.
func NewAssignmentUseCase(users repository.UserRepository, tx TxRunner, log zerolog.Logger, metrics ports.Recorder) *AssignmentUseCase {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &AssignmentUseCase{users: users, tx: tx, log: log, metrics: metrics}
}

// Assign reemplaza por completo los perfiles del usuario. Si algún perfil no
// existe falla con InvalidReference sobre el primero faltante y la asignación
// previa queda intacta.
func (uc *AssignmentUseCase) Assign(ctx context.Context, userID string, profileIDs []string) (err error) {
	defer func() { uc.metrics.Mutation("usuario.perfiles", string(domain.StatusOf(err))) }()

	want := ids.Dedupe(profileIDs)
	err = uc.tx.RunAssignment(ctx, func(users repository.UserRepository, profiles repository.ProfileRepository) error {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		existing, err := profiles.ExistingIDs(ctx, want)
		if err != nil {
			return err
		}
		if miss := ids.Missing(want, existing); len(miss) > 0 {
			return &domain.InvalidReferenceError{Kind: "perfil", IDs: miss[:1]}
		}
		return users.ReplaceProfiles(ctx, userID, want)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("user_id", userID).Strs("profiles", want).Msg("perfiles asignados")
	return nil
}

// Revoke quita un único perfil al usuario. ErrNotFound si no lo tenía asignado.
func (uc *AssignmentUseCase) Revoke(ctx context.Context, userID, profileID string) (err error) {
	defer func() { uc.metrics.Mutation("usuario.revocar", string(domain.StatusOf(err))) }()

	err = uc.tx.RunAssignment(ctx, func(users repository.UserRepository, _ repository.ProfileRepository) error {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		removed, err := users.RemoveProfile(ctx, userID, profileID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("user_id", userID).Str("profile_id", profileID).Msg("perfil revocado")
	return nil
}

// ProfilesOf lista los perfiles asignados al usuario con sus permisos.
func (uc *AssignmentUseCase) ProfilesOf(ctx context.Context, userID string) (*dto.UserProfilesResponse, error) {
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	list, err := uc.users.ListProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &dto.UserProfilesResponse{UserID: userID, Profiles: make([]dto.ProfileResponse, 0, len(list))}
	for _, p := range list {
		out.Profiles = append(out.Profiles, dto.ProfileFromEntity(p))
	}
	return out, nil
}

// EffectivePermissions es la unión, por código, de los permisos de todos los
// perfiles del usuario. Se recalcula en cada llamada.
func (uc *AssignmentUseCase) EffectivePermissions(ctx context.Context, userID string) (access.PermissionSet, error) {
	list, err := uc.users.ListProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := access.NewPermissionSet()
	for _, p := range list {
		for _, perm := range p.Permissions {
			if perm.Code != "" {
				set.Add(access.Code(perm.Code))
			}
		}
	}
	return set, nil
}
