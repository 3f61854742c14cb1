// Package authz resuelve quién es el llamador y qué puede hacer: asignación de
// perfiles, permisos efectivos y comprobaciones de permiso.
package authz

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Consultorio-api/internal/application/ports"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

// Evaluator responde preguntas de permiso sobre un usuario. No guarda estado
// entre llamadas: cada consulta relee los permisos efectivos.
type Evaluator struct {
	users   repository.UserRepository
	source  PermissionSource
	log     zerolog.Logger
	metrics ports.Recorder
}

// NewEvaluator construye el evaluador. metrics puede ser nil.
func NewEvaluator(users repository.UserRepository, source PermissionSource, log zerolog.Logger, metrics ports.Recorder) *Evaluator {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &Evaluator{users: users, source: source, log: log, metrics: metrics}
}

// HasPermission informa si code está entre los permisos efectivos del usuario.
func (e *Evaluator) HasPermission(ctx context.Context, userID string, code access.Code) (bool, error) {
	set, err := e.source.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	ok := set.Has(code)
	e.metrics.Decision(string(code), ok)
	return ok, nil
}

// HasAnyPermission es el OR lógico; con lista vacía devuelve false.
func (e *Evaluator) HasAnyPermission(ctx context.Context, userID string, codes ...access.Code) (bool, error) {
	if len(codes) == 0 {
		return false, nil
	}
	set, err := e.source.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.HasAny(codes...), nil
}

// HasPermissionNamed acepta el nombre visible ("Editar Informe"). Un nombre que
// no está en el catálogo nunca concede.
func (e *Evaluator) HasPermissionNamed(ctx context.Context, userID, name string) (bool, error) {
	code, ok := access.CodeForName(name)
	if !ok {
		e.log.Debug().Str("name", name).Msg("nombre de permiso desconocido")
		return false, nil
	}
	return e.HasPermission(ctx, userID, code)
}

// VisibleModules devuelve los módulos de navegación que el usuario puede ver.
func (e *Evaluator) VisibleModules(ctx context.Context, userID string) ([]string, error) {
	set, err := e.source.EffectivePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return set.VisibleModules(), nil
}

// Subject hidrata al llamador: referencias de rol y permisos efectivos. Usa el
// snapshot de la identidad salvo que no exista o refresh sea true.
// ErrUnauthorized si el usuario ya no existe; ErrForbidden si está inactivo.
func (e *Evaluator) Subject(ctx context.Context, id Identity, refresh bool) (access.Subject, error) {
	if id.UserID == "" {
		return access.Subject{}, domain.ErrUnauthorized
	}
	u, err := e.users.GetByID(ctx, id.UserID)
	if err != nil {
		return access.Subject{}, err
	}
	if u == nil {
		return access.Subject{}, domain.ErrUnauthorized
	}
	if !u.Active {
		e.log.Warn().Str("user_id", u.ID).Msg("acceso de usuario inactivo")
		return access.Subject{}, &domain.ForbiddenError{Reason: "usuario inactivo"}
	}
	perms := id.Permissions
	if perms == nil || refresh {
		perms, err = e.source.EffectivePermissions(ctx, u.ID)
		if err != nil {
			return access.Subject{}, err
		}
	}
	s := access.Subject{UserID: u.ID, Permissions: perms}
	if u.IsPsychologist() {
		s.PsychologistID = *u.PsychologistID
	}
	if u.IsPatient() {
		s.PatientID = *u.PatientID
	}
	return s, nil
}

// Require devuelve nil si el sujeto tiene todos los códigos; si no, un
// *domain.ForbiddenError con el primer permiso faltante.
func (e *Evaluator) Require(s access.Subject, codes ...access.Code) error {
	for _, c := range codes {
		if !s.Can(c) {
			e.metrics.Decision(string(c), false)
			return &domain.ForbiddenError{Permission: c.DisplayName()}
		}
	}
	for _, c := range codes {
		e.metrics.Decision(string(c), true)
	}
	return nil
}

// RequireAny devuelve nil si el sujeto tiene al menos uno de los códigos.
func (e *Evaluator) RequireAny(s access.Subject, codes ...access.Code) error {
	if s.Permissions.HasAny(codes...) {
		return nil
	}
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, c.DisplayName())
	}
	return &domain.ForbiddenError{Reason: "requiere alguno de: " + strings.Join(names, ", ")}
}
