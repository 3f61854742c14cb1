package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/application/ports"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
	"github.com/jhoicas/Consultorio-api/pkg/ids"
)

// ProfileTxRunner ejecuta fn dentro de una transacción con repos de perfiles y catálogo.
type ProfileTxRunner interface {
	RunProfiles(ctx context.Context, fn func(
		profiles repository.ProfileRepository,
		perms repository.PermissionRepository,
	) error) error
}

// ProfileConfig umbrales de validación y política de referencias.
type ProfileConfig struct {
	MinNameLength        int
	MinDescriptionLength int
	StrictPermissionRefs bool
}

// DefaultProfileConfig valores por defecto.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{MinNameLength: 3, MinDescriptionLength: 10}
}

// ProfileUseCase administra perfiles y su conjunto de permisos.
type ProfileUseCase struct {
	repo    repository.ProfileRepository
	tx      ProfileTxRunner
	cfg     ProfileConfig
	log     zerolog.Logger
	metrics ports.Recorder
}

// NewProfileUseCase construye el caso de uso. metrics puede ser nil.
func NewProfileUseCase(repo repository.ProfileRepository, tx ProfileTxRunner, cfg ProfileConfig, log zerolog.Logger, metrics ports.Recorder) *ProfileUseCase {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &ProfileUseCase{repo: repo, tx: tx, cfg: cfg, log: log, metrics: metrics}
}

// NormalizeProfileName aplica NFC y recorta espacios; la unicidad se compara sobre este valor.
func NormalizeProfileName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func (uc *ProfileUseCase) validate(name, description string) error {
	v := &domain.ValidationError{}
	if utf8.RuneCountInString(name) < uc.cfg.MinNameLength {
		v.Add("nombre", "debe tener al menos "+strconv.Itoa(uc.cfg.MinNameLength)+" caracteres")
	}
	if utf8.RuneCountInString(description) < uc.cfg.MinDescriptionLength {
		v.Add("descripcion", "debe tener al menos "+strconv.Itoa(uc.cfg.MinDescriptionLength)+" caracteres")
	}
	return v.OrNil()
}

// Create valida y crea un perfil sin permisos.
func (uc *ProfileUseCase) Create(ctx context.Context, in dto.CreateProfileRequest) (out *dto.ProfileResponse, err error) {
	defer func() { uc.metrics.Mutation("perfil.crear", string(domain.StatusOf(err))) }()

	name := NormalizeProfileName(in.Name)
	description := strings.TrimSpace(in.Description)
	if err := uc.validate(name, description); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateName
	}
	now := time.Now()
	p := &entity.Profile{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("profile_id", p.ID).Str("name", p.Name).Msg("perfil creado")
	return toProfileResponse(p), nil
}

// Get devuelve el perfil con sus permisos y el número de usuarios asignados.
func (uc *ProfileUseCase) Get(ctx context.Context, id string) (*dto.ProfileResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProfileResponse(p), nil
}

// List devuelve todos los perfiles ordenados por nombre.
func (uc *ProfileUseCase) List(ctx context.Context) (*dto.ProfileListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProfileResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProfileResponse(p))
	}
	return &dto.ProfileListResponse{Items: items}, nil
}

// Update reemplaza nombre y descripción.
func (uc *ProfileUseCase) Update(ctx context.Context, id string, in dto.UpdateProfileRequest) (out *dto.ProfileResponse, err error) {
	defer func() { uc.metrics.Mutation("perfil.editar", string(domain.StatusOf(err))) }()

	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	name := NormalizeProfileName(in.Name)
	description := strings.TrimSpace(in.Description)
	if err := uc.validate(name, description); err != nil {
		return nil, err
	}
	other, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != p.ID {
		return nil, domain.ErrDuplicateName
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("profile_id", p.ID).Str("name", p.Name).Msg("perfil actualizado")
	return toProfileResponse(p), nil
}

// Delete elimina el perfil si no tiene usuarios asignados.
func (uc *ProfileUseCase) Delete(ctx context.Context, id string) (err error) {
	defer func() { uc.metrics.Mutation("perfil.eliminar", string(domain.StatusOf(err))) }()

	err = uc.tx.RunProfiles(ctx, func(profiles repository.ProfileRepository, _ repository.PermissionRepository) error {
		p, err := profiles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		count, err := profiles.CountUsers(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &domain.HasDependentsError{Kind: "usuarios", Count: count}
		}
		return profiles.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("profile_id", id).Msg("perfil eliminado")
	return nil
}

// SetPermissions reemplaza atómicamente los permisos del perfil y devuelve cuántos
// quedaron asignados. Los ids desconocidos se omiten, salvo con StrictPermissionRefs,
// donde la operación falla con InvalidReference sin modificar nada.
func (uc *ProfileUseCase) SetPermissions(ctx context.Context, id string, permissionIDs []string) (assigned int, err error) {
	defer func() { uc.metrics.Mutation("perfil.permisos", string(domain.StatusOf(err))) }()

	want := ids.Dedupe(permissionIDs)
	var skipped []string
	err = uc.tx.RunProfiles(ctx, func(profiles repository.ProfileRepository, perms repository.PermissionRepository) error {
		p, err := profiles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		existing, err := perms.ExistingIDs(ctx, want)
		if err != nil {
			return err
		}
		skipped = ids.Missing(want, existing)
		if len(skipped) > 0 && uc.cfg.StrictPermissionRefs {
			return &domain.InvalidReferenceError{Kind: "permiso", IDs: skipped}
		}
		if err := profiles.ReplacePermissions(ctx, id, existing); err != nil {
			return err
		}
		assigned = len(existing)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(skipped) > 0 {
		uc.log.Warn().Str("profile_id", id).Strs("skipped", skipped).Msg("permisos desconocidos omitidos")
	}
	uc.log.Info().Str("profile_id", id).Int("assigned", assigned).Msg("permisos del perfil reemplazados")
	return assigned, nil
}

func toProfileResponse(p *entity.Profile) *dto.ProfileResponse {
	out := dto.ProfileFromEntity(p)
	return &out
}
