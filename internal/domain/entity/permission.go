package entity

// Module es un área funcional (Informes, Sesiones, Perfiles, Usuarios...). Taxonomía estática.
type Module struct {
	ID   string
	Name string
}

// Action es un verbo (Ver, Registrar, Editar, Eliminar, Asignar). Taxonomía estática.
type Action struct {
	ID   string
	Name string
}

// Permission es el derecho atómico asignable. Code es el identificador estable;
// Name es la etiqueta visible ("Editar Informe"), también única.
type Permission struct {
	ID          string
	Code        string
	Name        string
	Description string
	ModuleID    string
	ModuleName  string
	ActionID    string
	ActionName  string
}
