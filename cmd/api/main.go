// @title           Almacén Face ID API
// @version         1.0
// @description     Inventario de almacén con movimientos de stock autorizados por reconocimiento facial.
// @BasePath        /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	appanalytics "github.com/jhoicas/almacen-faceid/internal/application/analytics"
	"github.com/jhoicas/almacen-faceid/internal/application/auth"
	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/internal/infrastructure/biometric"
	"github.com/jhoicas/almacen-faceid/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/almacen-faceid/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/almacen-faceid/internal/interfaces/http"
	"github.com/jhoicas/almacen-faceid/pkg/config"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("crear migrador")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		_ = migrator.Close()
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	verdicts, err := infraredis.NewVerdictStore(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer verdicts.Close()

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	biometricSvc := biometric.NewHTTPClient(cfg.Biometric.URL, cfg.Biometric.APIKey, cfg.Biometric.Timeout)
	gate := faceid.NewGate(cfg.Face.VerificationTimeout, cfg.Face.ConfidenceThreshold)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, stockRepo)
	employeeUC := usecase.NewEmployeeUseCase(employeeRepo, biometricSvc, cfg.Face.MinEnrollImages, log)
	faceUC := usecase.NewFaceIDUseCase(biometricSvc, employeeRepo, verdicts, gate, log)
	engine := inventory.NewEngine(txRunner, log)
	movementUC := inventory.NewMovementUseCase(txRunner, movementRepo, engine, gate, verdicts, log)
	reportUC := appanalytics.NewReportUseCase(analyticsRepo)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, movementRepo)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		ProxyHeader: cfg.HTTP.ProxyHeader,
	}, log)

	// Swagger UI en local: http://localhost:<port>/docs (requiere `swag init -g cmd/api/main.go`)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Almacén Face ID API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger no generado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CategoryUC:  categoryUC,
		ProductUC:   productUC,
		EmployeeUC:  employeeUC,
		FaceIDUC:    faceUC,
		MovementUC:  movementUC,
		ReportUC:    reportUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		HealthChecks: map[string]httpRouter.Pinger{
			"postgres": pool,
			"redis":    verdicts,
		},
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
