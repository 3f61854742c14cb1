package entity

// Patient ficha de paciente. Aquí solo se consume para existencia y nombre.
type Patient struct {
	ID     string
	UserID *string
	Name   string
}

// Psychologist ficha de psicólogo, dueño de informes.
type Psychologist struct {
	ID     string
	UserID *string
	Name   string
}
