package access

import (
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// Subject es el usuario que solicita la operación, con sus referencias de rol
// y sus permisos efectivos ya resueltos.
type Subject struct {
	UserID         string
	PsychologistID string // vacío si el usuario no es psicólogo
	PatientID      string // vacío si el usuario no es paciente
	Permissions    PermissionSet
}

// Can informa si el sujeto tiene el permiso.
func (s Subject) Can(c Code) bool { return s.Permissions.Has(c) }

// IsOwner informa si el sujeto es el psicólogo dueño del informe.
func (s Subject) IsOwner(inf *entity.Informe) bool {
	return s.PsychologistID != "" && inf != nil && s.PsychologistID == inf.PsychologistID
}

// IsAssociatedPatient informa si el sujeto es uno de los pacientes del informe.
func (s Subject) IsAssociatedPatient(inf *entity.Informe) bool {
	return s.PatientID != "" && inf != nil && inf.HasPatient(s.PatientID)
}

// Decision es el resultado de una regla, con el permiso faltante si lo hubo.
type Decision struct {
	Allowed    bool
	Permission Code
	Reason     string
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }

func deny(c Code, reason string) Decision {
	return Decision{Allowed: false, Permission: c, Reason: reason}
}

// Err convierte una negación en *domain.ForbiddenError; nil si se permite.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	fe := &domain.ForbiddenError{Reason: d.Reason}
	if d.Permission != "" {
		fe.Permission = d.Permission.DisplayName()
	}
	return fe
}

// ReportPolicy decide visibilidad y edición de informes clínicos.
type ReportPolicy struct {
	// AllowAdminOverride habilita que "Ver Todos los Informes" dé visibilidad
	// sobre informes ajenos. Desactivado, un permiso genérico nunca basta.
	AllowAdminOverride bool
}

// CanView aplica, en orden: permiso de lectura, propiedad, asociación de paciente
// (solo si no es privado) y, con la política activa, la anulación de administrador.
// Un informe privado nunca es visible para sus pacientes asociados.
func (p ReportPolicy) CanView(s Subject, inf *entity.Informe) Decision {
	if !s.Can(InformesVer) {
		return deny(InformesVer, "sin permiso de lectura de informes")
	}
	if s.IsOwner(inf) {
		return allow("propietario del informe")
	}
	if s.IsAssociatedPatient(inf) {
		if inf.Private {
			return deny("", "informe privado: no visible para el paciente")
		}
		return allow("paciente asociado")
	}
	if p.adminOverride(s) {
		return allow("anulación de administrador")
	}
	return deny("", "no es propietario ni paciente asociado")
}

func (p ReportPolicy) adminOverride(s Subject) bool {
	return p.AllowAdminOverride && s.Can(InformesVerTodos)
}

// CanEdit exige "Editar Informe" y propiedad, sin excepciones. La
// reasignación del propietario se decide aparte con CanAssignOwner.
func (p ReportPolicy) CanEdit(s Subject, inf *entity.Informe) Decision {
	if !s.Can(InformesEditar) {
		return deny(InformesEditar, "sin permiso de edición de informes")
	}
	if !s.IsOwner(inf) {
		return deny("", "solo el psicólogo propietario puede editar el informe")
	}
	return allow("propietario del informe")
}

// CanDelete exige "Eliminar Informe" y propiedad, sin excepciones.
func (p ReportPolicy) CanDelete(s Subject, inf *entity.Informe) Decision {
	if !s.Can(InformesEliminar) {
		return deny(InformesEliminar, "sin permiso de eliminación de informes")
	}
	if !s.IsOwner(inf) {
		return deny("", "solo el psicólogo propietario puede eliminar el informe")
	}
	return allow("propietario del informe")
}

// CanCreate exige "Registrar Informe" y ficha de psicólogo.
func (p ReportPolicy) CanCreate(s Subject) Decision {
	if !s.Can(InformesRegistrar) {
		return deny(InformesRegistrar, "sin permiso de registro de informes")
	}
	if s.PsychologistID == "" {
		return deny("", "solo un psicólogo puede registrar informes")
	}
	return allow("psicólogo con permiso de registro")
}

// CanAssignOwner decide si el sujeto puede dejar ownerID como propietario.
// currentOwner es el dueño actual (vacío al crear). Mantener el dueño actual,
// o asignarse a sí mismo al crear, no requiere permiso adicional.
func (p ReportPolicy) CanAssignOwner(s Subject, currentOwner, ownerID string) Decision {
	if ownerID == "" || ownerID == currentOwner {
		return allow("propietario sin cambios")
	}
	if currentOwner == "" && ownerID == s.PsychologistID {
		return allow("propietario por defecto")
	}
	if !s.Can(InformesCambiarPropietario) {
		return deny(InformesCambiarPropietario, "reasignar el propietario requiere permiso elevado")
	}
	return allow("permiso de cambio de propietario")
}
