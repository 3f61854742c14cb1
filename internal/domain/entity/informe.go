package entity

import (
	"slices"
	"time"
)

// Informe es un documento clínico propiedad de exactamente un psicólogo,
// opcionalmente privado y asociado a uno o más pacientes.
type Informe struct {
	ID             string
	Title          string
	Content        string
	Private        bool
	PsychologistID string
	PatientIDs     []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasPatient informa si el paciente está asociado al informe.
func (i *Informe) HasPatient(patientID string) bool {
	return patientID != "" && slices.Contains(i.PatientIDs, patientID)
}
