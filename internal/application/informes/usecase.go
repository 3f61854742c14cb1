// Package informes aplica la política de acceso a informes clínicos sobre las
// operaciones de alta, edición, baja, consulta y exportación.
package informes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/application/ports"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
	"github.com/jhoicas/Consultorio-api/pkg/ids"
)

// Nombres de campo tal como los usa el formulario.
const (
	FieldTitle    = "titulo"
	FieldContent  = "contenido"
	FieldPatients = "pacientesIds"
)

// UseCase orquesta informes. Recibe el sujeto ya resuelto por authz.Evaluator.
type UseCase struct {
	informes repository.InformeRepository
	tx       TxRunner
	policy   access.ReportPolicy
	log      zerolog.Logger
	metrics  ports.Recorder
	now      func() time.Time
}

// NewUseCase construye el caso de uso. metrics puede ser nil.
func NewUseCase(
	informes repository.InformeRepository,
	tx TxRunner,
	policy access.ReportPolicy,
	log zerolog.Logger,
	metrics ports.Recorder,
) *UseCase {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &UseCase{
		informes: informes,
		tx:       tx,
		policy:   policy,
		log:      log,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Policy devuelve la política configurada.
func (uc *UseCase) Policy() access.ReportPolicy { return uc.policy }

func validate(title, content string, patientIDs []string) error {
	v := &domain.ValidationError{}
	if strings.TrimSpace(title) == "" {
		v.Add(FieldTitle, "es obligatorio")
	}
	if strings.TrimSpace(content) == "" {
		v.Add(FieldContent, "es obligatorio")
	}
	if len(patientIDs) == 0 {
		v.Add(FieldPatients, "debe asociar al menos un paciente")
	}
	return v.OrNil()
}

// check registra la decisión y, si es negativa, la devuelve como error.
func (uc *UseCase) check(rule string, s access.Subject, d access.Decision) error {
	uc.metrics.Decision(rule, d.Allowed)
	if d.Allowed {
		return nil
	}
	uc.log.Info().
		Str("rule", rule).
		Str("user_id", s.UserID).
		Str("permission", string(d.Permission)).
		Str("reason", d.Reason).
		Msg("acceso a informe denegado")
	return d.Err()
}

func ensurePsychologist(ctx context.Context, repo repository.PsychologistRepository, id string) error {
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return &domain.InvalidReferenceError{Kind: "psicólogo", IDs: []string{id}}
	}
	return nil
}

// Create registra un informe. El propietario por defecto es el psicólogo que
// llama; otro propietario requiere "Cambiar Propietario".
func (uc *UseCase) Create(ctx context.Context, s access.Subject, in dto.CreateInformeRequest) (out *dto.InformeResponse, err error) {
	defer func() { uc.metrics.Mutation("informe.crear", string(domain.StatusOf(err))) }()

	if err := uc.check("informe.crear", s, uc.policy.CanCreate(s)); err != nil {
		return nil, err
	}
	patients := ids.Dedupe(in.PatientIDs)
	if err := validate(in.Title, in.Content, patients); err != nil {
		return nil, err
	}
	owner := in.PsychologistID
	if err := uc.check("informe.propietario", s, uc.policy.CanAssignOwner(s, "", owner)); err != nil {
		return nil, err
	}
	if owner == "" {
		owner = s.PsychologistID
	}

	now := uc.now()
	inf := &entity.Informe{
		ID:             uuid.New().String(),
		Title:          strings.TrimSpace(in.Title),
		Content:        in.Content,
		Private:        in.Private,
		PsychologistID: owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.tx.RunInformes(ctx, func(informes repository.InformeRepository, pats repository.PatientRepository, psys repository.PsychologistRepository) error {
		if owner != s.PsychologistID {
			if err := ensurePsychologist(ctx, psys, owner); err != nil {
				return err
			}
		}
		if err := ensurePatients(ctx, pats, patients); err != nil {
			return err
		}
		if err := informes.Save(ctx, inf); err != nil {
			return err
		}
		return informes.ReplacePatients(ctx, inf.ID, patients)
	})
	if err != nil {
		return nil, err
	}
	inf.PatientIDs = patients
	uc.log.Info().Str("informe_id", inf.ID).Str("owner", owner).Str("user_id", s.UserID).Msg("informe registrado")
	return uc.toResponse(s, inf), nil
}

// Update edita un informe. Solo el propietario con "Editar Informe" puede
// hacerlo. Reasignar el propietario exige además "Cambiar Propietario". Los
// pacientes se reemplazan atómicamente.
func (uc *UseCase) Update(ctx context.Context, s access.Subject, id string, in dto.UpdateInformeRequest) (out *dto.InformeResponse, err error) {
	defer func() { uc.metrics.Mutation("informe.editar", string(domain.StatusOf(err))) }()

	patients := ids.Dedupe(in.PatientIDs)
	invalid := validate(in.Title, in.Content, patients)
	var updated *entity.Informe

	err = uc.tx.RunInformes(ctx, func(informes repository.InformeRepository, pats repository.PatientRepository, psys repository.PsychologistRepository) error {
		inf, err := informes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inf == nil {
			return domain.ErrNotFound
		}
		if err := uc.check("informe.editar", s, uc.policy.CanEdit(s, inf)); err != nil {
			return err
		}
		if invalid != nil {
			return invalid
		}
		if err := uc.check("informe.propietario", s, uc.policy.CanAssignOwner(s, inf.PsychologistID, in.PsychologistID)); err != nil {
			return err
		}
		if in.PsychologistID != "" && in.PsychologistID != inf.PsychologistID {
			if err := ensurePsychologist(ctx, psys, in.PsychologistID); err != nil {
				return err
			}
			uc.log.Info().Str("informe_id", id).Str("from", inf.PsychologistID).Str("to", in.PsychologistID).Msg("propietario reasignado")
			inf.PsychologistID = in.PsychologistID
		}
		if err := ensurePatients(ctx, pats, patients); err != nil {
			return err
		}
		inf.Title = strings.TrimSpace(in.Title)
		inf.Content = in.Content
		inf.Private = in.Private
		inf.UpdatedAt = uc.now()
		if err := informes.Save(ctx, inf); err != nil {
			return err
		}
		if err := informes.ReplacePatients(ctx, id, patients); err != nil {
			return err
		}
		inf.PatientIDs = patients
		updated = inf
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("informe_id", id).Str("user_id", s.UserID).Msg("informe actualizado")
	return uc.toResponse(s, updated), nil
}

// Delete elimina un informe propio con "Eliminar Informe".
func (uc *UseCase) Delete(ctx context.Context, s access.Subject, id string) (err error) {
	defer func() { uc.metrics.Mutation("informe.eliminar", string(domain.StatusOf(err))) }()

	err = uc.tx.RunInformes(ctx, func(informes repository.InformeRepository, _ repository.PatientRepository, _ repository.PsychologistRepository) error {
		inf, err := informes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inf == nil {
			return domain.ErrNotFound
		}
		if err := uc.check("informe.eliminar", s, uc.policy.CanDelete(s, inf)); err != nil {
			return err
		}
		return informes.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("informe_id", id).Str("user_id", s.UserID).Msg("informe eliminado")
	return nil
}

// Get devuelve el informe si el sujeto puede verlo.
func (uc *UseCase) Get(ctx context.Context, s access.Subject, id string) (*dto.InformeResponse, error) {
	inf, err := uc.load(ctx, s, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(s, inf), nil
}

func (uc *UseCase) load(ctx context.Context, s access.Subject, id string) (*entity.Informe, error) {
	inf, err := uc.informes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inf == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.check("informe.ver", s, uc.policy.CanView(s, inf)); err != nil {
		return nil, err
	}
	return inf, nil
}

// List devuelve los informes que el sujeto puede ver, más recientes primero.
func (uc *UseCase) List(ctx context.Context, s access.Subject) (*dto.InformeListResponse, error) {
	if !s.Can(access.InformesVer) {
		return nil, uc.check("informe.listar", s, uc.policy.CanView(s, nil))
	}
	var (
		candidates []*entity.Informe
		err        error
	)
	if uc.policy.AllowAdminOverride && s.Can(access.InformesVerTodos) {
		candidates, err = uc.informes.ListAll(ctx)
	} else {
		candidates, err = uc.informes.ListCandidates(ctx, s.PsychologistID, s.PatientID)
	}
	if err != nil {
		return nil, err
	}
	items := make([]dto.InformeResponse, 0, len(candidates))
	for _, inf := range candidates {
		if uc.policy.CanView(s, inf).Allowed {
			items = append(items, *uc.toResponse(s, inf))
		}
	}
	return &dto.InformeListResponse{Items: items}, nil
}

func ensurePatients(ctx context.Context, pats repository.PatientRepository, patientIDs []string) error {
	miss, err := pats.MissingIDs(ctx, patientIDs)
	if err != nil {
		return err
	}
	if len(miss) > 0 {
		return &domain.InvalidReferenceError{Kind: "paciente", IDs: miss}
	}
	return nil
}

func (uc *UseCase) toResponse(s access.Subject, inf *entity.Informe) *dto.InformeResponse {
	return &dto.InformeResponse{
		ID:             inf.ID,
		Title:          inf.Title,
		Content:        inf.Content,
		Private:        inf.Private,
		PsychologistID: inf.PsychologistID,
		PatientIDs:     append([]string{}, inf.PatientIDs...),
		CanEdit:        uc.policy.CanEdit(s, inf).Allowed,
		CanDelete:      uc.policy.CanDelete(s, inf).Allowed,
		CreatedAt:      inf.CreatedAt,
		UpdatedAt:      inf.UpdatedAt,
	}
}
