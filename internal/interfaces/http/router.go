package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/almacen-faceid/internal/application/analytics"
	"github.com/jhoicas/almacen-faceid/internal/application/auth"
	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// Pinger dependencia que se reporta en /api/health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CategoryUC  *usecase.CategoryUseCase
	ProductUC   *usecase.ProductUseCase
	EmployeeUC  *usecase.EmployeeUseCase
	FaceIDUC    *usecase.FaceIDUseCase
	MovementUC  *inventory.MovementUseCase
	ReportUC    *appanalytics.ReportUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	// HealthChecks nombre -> dependencia (ej. "postgres", "redis").
	HealthChecks map[string]Pinger
}

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name        string
	ProxyHeader string
	BodyLimit   int // bytes; 0 usa 16 MB (las imágenes de registro facial viajan en base64)
}

// NewApp crea la app Fiber con el ErrorHandler central, log de peticiones y recover.
func NewApp(cfg AppConfig, log *logger.Logger) *fiber.App {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 16 * 1024 * 1024
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ProxyHeader:  cfg.ProxyHeader,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler(log.Named("http").Named("errors")),
	})
	app.Use(RequestLogger(log))
	app.Use(recover.New())
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", healthHandler(deps.HealthChecks))

	authHandler := NewAuthHandler(deps.AuthUC)

	// Auth (público)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	canView := RequireCapability(entity.CapViewInventory)
	canMove := RequireCapability(entity.CapMoveStock)
	canManage := RequireCapability(entity.CapManageCatalog)

	protected.Get("/auth/me", authHandler.Me)

	users := protected.Group("/users", RequireCapability(entity.CapManageUsers))
	users.Get("/", authHandler.ListUsers)
	users.Post("/", authHandler.CreateUser)

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", canView, categoryHandler.List)
	categories.Post("/", canManage, categoryHandler.Create)
	categories.Put("/:id", canManage, categoryHandler.Update)
	categories.Delete("/:id", canManage, categoryHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", canView, productHandler.List)
	products.Get("/lookup", canView, productHandler.Lookup)
	products.Get("/:id", canView, productHandler.GetByID)
	products.Post("/", canManage, productHandler.Create)
	products.Put("/:id", canManage, productHandler.Update)
	products.Delete("/:id", canManage, productHandler.Delete)

	employees := protected.Group("/employees")
	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	canEnroll := RequireCapability(entity.CapEnrollEmployee)
	employees.Get("/", canView, employeeHandler.List)
	employees.Get("/:id", canView, employeeHandler.GetByID)
	employees.Post("/", canEnroll, employeeHandler.Create)
	employees.Put("/:id", canEnroll, employeeHandler.Update)
	employees.Post("/:id/face", canEnroll, employeeHandler.Enroll)

	faceGroup := protected.Group("/faceid", canMove)
	faceHandler := NewFaceIDHandler(deps.FaceIDUC)
	faceGroup.Post("/verify", faceHandler.Verify)
	faceGroup.Get("/status", faceHandler.Status)
	faceGroup.Delete("/", faceHandler.Clear)

	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Get("/", canView, movementHandler.List)
	movements.Get("/:id", canView, movementHandler.Get)
	movements.Post("/", canMove, movementHandler.Create)
	movements.Post("/discard", canMove, movementHandler.Discard)
	movements.Post("/:id/items", canMove, movementHandler.AddItem)
	movements.Delete("/:id/items/:itemId", canMove, movementHandler.RemoveItem)
	movements.Post("/:id/finalize", canMove, movementHandler.Finalize)
	movements.Post("/:id/cancel", canMove, movementHandler.Cancel)
	movements.Post("/:id/reverse", RequireCapability(entity.CapReverse), movementHandler.Reverse)

	reports := protected.Group("/reports", canView)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/stock", reportHandler.Stock)
	reports.Get("/movements", reportHandler.Movements)
	reports.Get("/low-stock", reportHandler.LowStock)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", canView, dashboardHandler.GetSummary)
}

// healthHandler responde 200 si todas las dependencias responden, 503 si alguna falla.
func healthHandler(checks map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		deps := make(fiber.Map, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				deps[name] = "down"
				status = fiber.StatusServiceUnavailable
				continue
			}
			deps[name] = "up"
		}
		state := "ok"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{"status": state, "dependencies": deps})
	}
}
