// Package access contiene el modelo de permisos y las reglas de acceso a
// informes clínicos. No depende de infraestructura: recibe datos ya cargados.
package access

import "sort"

// Code es el identificador estable de un permiso. El nombre visible puede
// cambiar sin romper las comprobaciones, que siempre se hacen por código.
type Code string

// Módulos del sistema (deben coincidir con la tabla modules).
const (
	ModuloInformes   = "Informes"
	ModuloSesiones   = "Sesiones"
	ModuloPerfiles   = "Perfiles"
	ModuloUsuarios   = "Usuarios"
	ModuloPacientes  = "Pacientes"
	ModuloPsicologos = "Psicólogos"
)

// Acciones del sistema (deben coincidir con la tabla actions).
const (
	AccionVer       = "Ver"
	AccionRegistrar = "Registrar"
	AccionEditar    = "Editar"
	AccionEliminar  = "Eliminar"
	AccionAsignar   = "Asignar"
)

const (
	InformesVer                Code = "informes.ver"
	InformesVerTodos           Code = "informes.ver_todos"
	InformesRegistrar          Code = "informes.registrar"
	InformesEditar             Code = "informes.editar"
	InformesEliminar           Code = "informes.eliminar"
	InformesCambiarPropietario Code = "informes.cambiar_propietario"

	SesionesVer       Code = "sesiones.ver"
	SesionesRegistrar Code = "sesiones.registrar"
	SesionesEditar    Code = "sesiones.editar"
	SesionesEliminar  Code = "sesiones.eliminar"

	PerfilesVer             Code = "perfiles.ver"
	PerfilesRegistrar       Code = "perfiles.registrar"
	PerfilesEditar          Code = "perfiles.editar"
	PerfilesEliminar        Code = "perfiles.eliminar"
	PerfilesAsignarPermisos Code = "perfiles.asignar_permisos"

	UsuariosVer             Code = "usuarios.ver"
	UsuariosRegistrar       Code = "usuarios.registrar"
	UsuariosEditar          Code = "usuarios.editar"
	UsuariosEliminar        Code = "usuarios.eliminar"
	UsuariosAsignarPerfiles Code = "usuarios.asignar_perfiles"

	PacientesVer       Code = "pacientes.ver"
	PacientesRegistrar Code = "pacientes.registrar"
	PacientesEditar    Code = "pacientes.editar"
	PacientesEliminar  Code = "pacientes.eliminar"

	PsicologosVer       Code = "psicologos.ver"
	PsicologosRegistrar Code = "psicologos.registrar"
	PsicologosEditar    Code = "psicologos.editar"
	PsicologosEliminar  Code = "psicologos.eliminar"
)

// Definition describe un permiso del catálogo sembrado.
type Definition struct {
	Code        Code
	Name        string
	Module      string
	Action      string
	Description string
}

// Catalog es el conjunto inmutable de permisos conocidos por el sistema.
var Catalog = []Definition{
	{InformesVer, "Ver Informes", ModuloInformes, AccionVer, "Consultar informes clínicos propios o asociados"},
	{InformesVerTodos, "Ver Todos los Informes", ModuloInformes, AccionVer, "Consultar cualquier informe (requiere política de administrador)"},
	{InformesRegistrar, "Registrar Informe", ModuloInformes, AccionRegistrar, "Crear informes clínicos"},
	{InformesEditar, "Editar Informe", ModuloInformes, AccionEditar, "Modificar informes propios"},
	{InformesEliminar, "Eliminar Informe", ModuloInformes, AccionEliminar, "Eliminar informes propios"},
	{InformesCambiarPropietario, "Cambiar Propietario", ModuloInformes, AccionAsignar, "Asignar un informe a otro psicólogo"},

	{SesionesVer, "Ver Sesiones", ModuloSesiones, AccionVer, "Consultar la agenda de sesiones"},
	{SesionesRegistrar, "Registrar Sesión", ModuloSesiones, AccionRegistrar, "Agendar sesiones"},
	{SesionesEditar, "Editar Sesión", ModuloSesiones, AccionEditar, "Reprogramar sesiones"},
	{SesionesEliminar, "Eliminar Sesión", ModuloSesiones, AccionEliminar, "Cancelar sesiones"},

	{PerfilesVer, "Ver Perfiles", ModuloPerfiles, AccionVer, "Consultar perfiles y sus permisos"},
	{PerfilesRegistrar, "Registrar Perfil", ModuloPerfiles, AccionRegistrar, "Crear perfiles"},
	{PerfilesEditar, "Editar Perfil", ModuloPerfiles, AccionEditar, "Modificar nombre y descripción de perfiles"},
	{PerfilesEliminar, "Eliminar Perfil", ModuloPerfiles, AccionEliminar, "Eliminar perfiles sin usuarios"},
	{PerfilesAsignarPermisos, "Asignar Permisos", ModuloPerfiles, AccionAsignar, "Reemplazar los permisos de un perfil"},

	{UsuariosVer, "Ver Usuarios", ModuloUsuarios, AccionVer, "Consultar usuarios"},
	{UsuariosRegistrar, "Registrar Usuario", ModuloUsuarios, AccionRegistrar, "Crear usuarios"},
	{UsuariosEditar, "Editar Usuario", ModuloUsuarios, AccionEditar, "Modificar usuarios"},
	{UsuariosEliminar, "Eliminar Usuario", ModuloUsuarios, AccionEliminar, "Desactivar usuarios"},
	{UsuariosAsignarPerfiles, "Asignar Perfiles", ModuloUsuarios, AccionAsignar, "Reemplazar los perfiles de un usuario"},

	{PacientesVer, "Ver Pacientes", ModuloPacientes, AccionVer, "Consultar pacientes"},
	{PacientesRegistrar, "Registrar Paciente", ModuloPacientes, AccionRegistrar, "Crear pacientes"},
	{PacientesEditar, "Editar Paciente", ModuloPacientes, AccionEditar, "Modificar pacientes"},
	{PacientesEliminar, "Eliminar Paciente", ModuloPacientes, AccionEliminar, "Eliminar pacientes"},

	{PsicologosVer, "Ver Psicólogos", ModuloPsicologos, AccionVer, "Consultar psicólogos"},
	{PsicologosRegistrar, "Registrar Psicólogo", ModuloPsicologos, AccionRegistrar, "Crear psicólogos"},
	{PsicologosEditar, "Editar Psicólogo", ModuloPsicologos, AccionEditar, "Modificar psicólogos"},
	{PsicologosEliminar, "Eliminar Psicólogo", ModuloPsicologos, AccionEliminar, "Eliminar psicólogos"},
}

var (
	byCode = make(map[Code]Definition, len(Catalog))
	byName = make(map[string]Code, len(Catalog))
)

func init() {
	for _, d := range Catalog {
		byCode[d.Code] = d
		byName[d.Name] = d.Code
	}
}

// Lookup devuelve la definición del código, si existe.
func Lookup(c Code) (Definition, bool) {
	d, ok := byCode[c]
	return d, ok
}

// CodeForName traduce un nombre visible ("Editar Informe") a su código.
func CodeForName(name string) (Code, bool) {
	c, ok := byName[name]
	return c, ok
}

// DisplayName devuelve el nombre visible; para códigos desconocidos, el propio código.
func (c Code) DisplayName() string {
	if d, ok := byCode[c]; ok {
		return d.Name
	}
	return string(c)
}

// Known informa si el código pertenece al catálogo.
func (c Code) Known() bool {
	_, ok := byCode[c]
	return ok
}

// ModuleGate define qué permisos hacen visible un módulo en la navegación:
// basta con tener cualquiera de ellos.
type ModuleGate struct {
	Module string
	AnyOf  []Code
}

// ModuleGates en el orden en que se muestran.
var ModuleGates = []ModuleGate{
	{ModuloInformes, []Code{InformesVer, InformesRegistrar, InformesEditar, InformesEliminar}},
	{ModuloSesiones, []Code{SesionesVer, SesionesRegistrar, SesionesEditar, SesionesEliminar}},
	{ModuloPacientes, []Code{PacientesVer, PacientesRegistrar, PacientesEditar, PacientesEliminar}},
	{ModuloPsicologos, []Code{PsicologosVer, PsicologosRegistrar, PsicologosEditar, PsicologosEliminar}},
	{ModuloPerfiles, []Code{PerfilesVer, PerfilesRegistrar, PerfilesEditar, PerfilesEliminar, PerfilesAsignarPermisos}},
	{ModuloUsuarios, []Code{UsuariosVer, UsuariosRegistrar, UsuariosEditar, UsuariosEliminar, UsuariosAsignarPerfiles}},
}

// CodesOfModule lista los códigos del catálogo de un módulo, ordenados.
func CodesOfModule(module string) []Code {
	var out []Code
	for _, d := range Catalog {
		if d.Module == module {
			out = append(out, d.Code)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
