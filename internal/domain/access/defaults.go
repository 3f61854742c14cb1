package access

// DefaultProfile es un perfil que la siembra crea si no existe.
type DefaultProfile struct {
	ID          string
	Name        string
	Description string
	Codes       []Code
}

// DefaultProfiles perfiles iniciales. Administrador recibe el catálogo completo
// salvo "Ver Todos los Informes", que solo tiene efecto con la política activa
// y se asigna a mano.
var DefaultProfiles = []DefaultProfile{
	{
		ID:          "perfil-administrador",
		Name:        "Administrador",
		Description: "Gestión de perfiles, usuarios y fichas",
		Codes:       adminCodes(),
	},
	{
		ID:          "perfil-psicologo",
		Name:        "Psicólogo",
		Description: "Registro y seguimiento de informes propios",
		Codes: []Code{
			InformesVer, InformesRegistrar, InformesEditar, InformesEliminar,
			SesionesVer, SesionesRegistrar, SesionesEditar, SesionesEliminar,
			PacientesVer,
		},
	},
	{
		ID:          "perfil-paciente",
		Name:        "Paciente",
		Description: "Consulta de informes y sesiones propias",
		Codes:       []Code{InformesVer, SesionesVer},
	},
}

func adminCodes() []Code {
	out := make([]Code, 0, len(Catalog))
	for _, d := range Catalog {
		if d.Code != InformesVerTodos {
			out = append(out, d.Code)
		}
	}
	return out
}
