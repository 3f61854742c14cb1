package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Consultorio-api/internal/application/auth"
	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/informes"
	"github.com/jhoicas/Consultorio-api/internal/application/usecase"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	PermissionUC *usecase.PermissionUseCase
	ProfileUC    *usecase.ProfileUseCase
	AssignmentUC *authz.AssignmentUseCase
	Evaluator    *authz.Evaluator
	InformeUC    *informes.UseCase
	InformePDF   *informes.PDFUseCase // opcional
	JWTSecret    string
	Log          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas: JWT + carga del sujeto con sus permisos efectivos.
	// Se montan por grupo para que una ruta inexistente siga siendo 404.
	secured := []fiber.Handler{AuthMiddleware(deps.JWTSecret), LoadSubject(deps.Evaluator, deps.Log)}

	me := NewMeHandler()
	meGroup := api.Group("/me", secured...)
	meGroup.Get("/permisos", me.Permissions)
	meGroup.Get("/modulos", me.Modules)

	// Catálogo de permisos (lectura para quien administra perfiles)
	permHandler := NewPermissionHandler(deps.PermissionUC)
	permisos := api.Group("/permisos", secured...)
	permisos.Use(RequireAnyPermission(access.PerfilesVer, access.PerfilesAsignarPermisos))
	permisos.Get("/", permHandler.List)
	permisos.Get("/buscar", permHandler.Find)

	// Perfiles
	profileHandler := NewProfileHandler(deps.ProfileUC)
	perfiles := api.Group("/perfiles", secured...)
	perfiles.Get("/", RequirePermission(access.PerfilesVer), profileHandler.List)
	perfiles.Post("/", RequirePermission(access.PerfilesRegistrar), profileHandler.Create)
	perfiles.Get("/:id", RequirePermission(access.PerfilesVer), profileHandler.GetByID)
	perfiles.Put("/:id", RequirePermission(access.PerfilesEditar), profileHandler.Update)
	perfiles.Delete("/:id", RequirePermission(access.PerfilesEliminar), profileHandler.Delete)
	perfiles.Put("/:id/permisos", RequirePermission(access.PerfilesAsignarPermisos), profileHandler.SetPermissions)

	// Asignación de perfiles a usuarios
	upHandler := NewUserProfileHandler(deps.AssignmentUC)
	usuarios := api.Group("/usuarios", secured...)
	usuarios.Get("/:id/perfiles", RequirePermission(access.UsuariosVer), upHandler.List)
	usuarios.Put("/:id/perfiles", RequirePermission(access.UsuariosAsignarPerfiles), upHandler.Assign)
	usuarios.Delete("/:id/perfiles/:perfilId", RequirePermission(access.UsuariosAsignarPerfiles), upHandler.Revoke)
	usuarios.Get("/:id/permisos", RequirePermission(access.UsuariosVer), upHandler.Permissions)

	// Informes: la política de propiedad y privacidad se evalúa en el caso de uso
	informeHandler := NewInformeHandler(deps.InformeUC, deps.InformePDF)
	inf := api.Group("/informes", secured...)
	inf.Get("/", informeHandler.List)
	inf.Post("/", informeHandler.Create)
	inf.Get("/:id", informeHandler.GetByID)
	inf.Put("/:id", informeHandler.Update)
	inf.Delete("/:id", informeHandler.Delete)
	if deps.InformePDF != nil {
		inf.Get("/:id/pdf", informeHandler.PDF)
	}
}
