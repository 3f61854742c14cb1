package repository

import (
	"context"

	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// InformeRepository define el puerto de persistencia para informes clínicos.
type InformeRepository interface {
	// GetByID devuelve el informe con PatientIDs cargado, o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.Informe, error)
	// Save inserta o actualiza los campos del informe (no toca pacientes).
	Save(ctx context.Context, inf *entity.Informe) error
	// ReplacePatients reemplaza por completo los pacientes asociados.
	ReplacePatients(ctx context.Context, informeID string, patientIDs []string) error
	Delete(ctx context.Context, id string) error

	// ListCandidates devuelve los informes del psicólogo más los asociados al
	// paciente. Cualquiera de los dos ids puede venir vacío. El filtro fino de
	// visibilidad lo aplica la política, no la consulta.
	ListCandidates(ctx context.Context, psychologistID, patientID string) ([]*entity.Informe, error)
	// ListAll devuelve todos los informes (solo para la anulación de administrador).
	ListAll(ctx context.Context) ([]*entity.Informe, error)
}

// PatientRepository consulta fichas de paciente; su CRUD vive fuera de este servicio.
type PatientRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	// MissingIDs devuelve los ids que no existen, en el orden recibido.
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Patient, error)
}

// PsychologistRepository consulta fichas de psicólogo.
type PsychologistRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Psychologist, error)
}
