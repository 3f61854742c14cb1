package dto

import "time"

// CreateInformeRequest entrada para registrar un informe. PsychologistID vacío
// toma al psicólogo autenticado.
type CreateInformeRequest struct {
	Title          string   `json:"titulo"`
	Content        string   `json:"contenido"`
	Private        bool     `json:"privado"`
	PatientIDs     []string `json:"pacientesIds"`
	PsychologistID string   `json:"psicologoId,omitempty"`
}

// UpdateInformeRequest entrada para editar un informe. PsychologistID vacío
// conserva el propietario actual.
type UpdateInformeRequest struct {
	Title          string   `json:"titulo"`
	Content        string   `json:"contenido"`
	Private        bool     `json:"privado"`
	PatientIDs     []string `json:"pacientesIds"`
	PsychologistID string   `json:"psicologoId,omitempty"`
}

// InformeResponse salida de un informe.
type InformeResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"titulo"`
	Content        string    `json:"contenido"`
	Private        bool      `json:"privado"`
	PsychologistID string    `json:"psicologoId"`
	PatientIDs     []string  `json:"pacientesIds"`
	CanEdit        bool      `json:"puedeEditar"`
	CanDelete      bool      `json:"puedeEliminar"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InformeListResponse listado de informes visibles.
type InformeListResponse struct {
	Items []InformeResponse `json:"items"`
}
