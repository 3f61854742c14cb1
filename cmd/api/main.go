package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Consultorio-api/internal/application/auth"
	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/informes"
	"github.com/jhoicas/Consultorio-api/internal/application/usecase"
	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Consultorio-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Consultorio-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Consultorio-api/internal/interfaces/http"
	"github.com/jhoicas/Consultorio-api/pkg/config"
	"github.com/jhoicas/Consultorio-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("admin_override", cfg.RBAC.AllowAdminOverride).
		Bool("embed_permissions", cfg.JWT.EmbedPermissions).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	permRepo := postgres.NewPermissionRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	informeRepo := postgres.NewInformeRepository(pool)
	patientRepo := postgres.NewPatientRepository(pool)
	psychologistRepo := postgres.NewPsychologistRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	prom := metrics.New("consultorio")

	permissionUC := usecase.NewPermissionUseCase(permRepo)
	profileUC := usecase.NewProfileUseCase(profileRepo, txRunner, usecase.ProfileConfig{
		MinNameLength:        cfg.RBAC.MinNameLength,
		MinDescriptionLength: cfg.RBAC.MinDescriptionLength,
		StrictPermissionRefs: cfg.RBAC.StrictPermissionRefs,
	}, log.Component("perfiles"), prom)
	assignmentUC := authz.NewAssignmentUseCase(userRepo, txRunner, log.Component("asignacion"), prom)
	evaluator := authz.NewEvaluator(userRepo, assignmentUC, log.Component("autorizacion"), prom)
	authUC := auth.NewAuthUseCase(userRepo, assignmentUC, auth.JWTConfig{
		Secret:           cfg.JWT.Secret,
		ExpMinutes:       cfg.JWT.Expiration,
		Issuer:           cfg.JWT.Issuer,
		EmbedPermissions: cfg.JWT.EmbedPermissions,
	}, log.Component("auth"))

	informeUC := informes.NewUseCase(
		informeRepo, txRunner,
		access.ReportPolicy{AllowAdminOverride: cfg.RBAC.AllowAdminOverride},
		log.Component("informes"), prom,
	)
	// PDF: representación imprimible del informe, con la misma regla de visibilidad
	informePDFUC := informes.NewPDFUseCase(informeUC, patientRepo, psychologistRepo, infrapdf.NewMarotoPDFGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(prom.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Consultorio API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", prom.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		PermissionUC: permissionUC,
		ProfileUC:    profileUC,
		AssignmentUC: assignmentUC,
		Evaluator:    evaluator,
		InformeUC:    informeUC,
		InformePDF:   informePDFUC,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
