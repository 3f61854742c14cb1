package entity

import "time"

// User representa una cuenta del sistema. Puede tener a la vez rol de psicólogo
// y de paciente; ambas referencias son opcionales.
type User struct {
	ID             string
	Email          string
	PasswordHash   string // bcrypt hash, nunca plano en dominio después de persistir
	Person         string // nombre completo
	Active         bool
	PsychologistID *string
	PatientID      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsPsychologist informa si el usuario tiene ficha de psicólogo.
func (u *User) IsPsychologist() bool {
	return u != nil && u.PsychologistID != nil && *u.PsychologistID != ""
}

// IsPatient informa si el usuario tiene ficha de paciente.
func (u *User) IsPatient() bool {
	return u != nil && u.PatientID != nil && *u.PatientID != ""
}
