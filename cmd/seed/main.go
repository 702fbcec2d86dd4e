// seed carga datos de demostración: cuenta admin, categorías, productos,
// empleados y opcionalmente un ingreso inicial de stock verificado.
// Es idempotente: lo que ya existe no se vuelve a crear.
//
// Uso: SEED_ADMIN_PASSWORD=... go run ./cmd/seed [-stock]
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-faceid/pkg/config"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

type seedProduct struct {
	name, sku, barcode, category string
	minStock                     int64
}

var (
	seedCategories = []string{"Electrónica", "Electrodomésticos", "Alimentos", "Ropa", "Materiales de construcción"}

	seedProducts = []seedProduct{
		{"iPhone 15 Pro 128GB", "IPH15-128", "195949042456", "Electrónica", 5},
		{"Samsung Galaxy S24 Ultra", "S24U-256", "880609459234", "Electrónica", 3},
		{"MacBook Pro 14 M3", "MBP14-M3", "194253456789", "Electrónica", 2},
		{"Coca-Cola 1.5L", "COLA-15", "5449000000996", "Alimentos", 50},
	}

	seedEmployees = []struct{ name, code string }{
		{"Ana Torres", "EMP001"},
		{"Bruno Díaz", "EMP002"},
		{"Carla Méndez", "EMP003"},
	}
)

func main() {
	withStock := flag.Bool("stock", false, "registrar un ingreso inicial verificado si no hay ninguno")
	adminUser := flag.String("admin", "admin", "usuario de la cuenta admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	categoryUC := usecase.NewCategoryUseCase(postgres.NewCategoryRepository(pool))
	productUC := usecase.NewProductUseCase(txRunner, productRepo, postgres.NewStockRepository(pool))
	employeeUC := usecase.NewEmployeeUseCase(postgres.NewEmployeeRepository(pool), nil, cfg.Face.MinEnrollImages, log)

	// 1. Cuenta admin
	admin, err := userRepo.GetByUsername(ctx, *adminUser)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar admin")
	}
	if admin == nil {
		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if len(password) < 8 {
			log.Fatal().Msg("SEED_ADMIN_PASSWORD es obligatorio (mínimo 8 caracteres)")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash de contraseña")
		}
		admin = &entity.User{
			Username:     *adminUser,
			PasswordHash: string(hash),
			FullName:     "Administrador",
			Role:         entity.RoleAdmin,
			IsActive:     true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("crear admin")
		}
		log.Info().Str("username", admin.Username).Msg("admin creado")
	}
	actor := entity.Actor{UserID: admin.ID, Role: entity.RoleAdmin}

	// 2. Categorías
	existing, err := categoryUC.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listar categorías")
	}
	categoryIDs := make(map[string]int64, len(existing))
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}
	for _, name := range seedCategories {
		if _, ok := categoryIDs[name]; ok {
			continue
		}
		c, err := categoryUC.Create(ctx, actor, dto.CreateCategoryRequest{Name: name})
		if err != nil {
			log.Fatal().Err(err).Str("category", name).Msg("crear categoría")
		}
		categoryIDs[name] = c.ID
		log.Info().Str("category", name).Msg("categoría creada")
	}

	// 3. Productos
	var productIDs []int64
	for _, sp := range seedProducts {
		p, err := productRepo.GetByCode(ctx, sp.barcode)
		if err != nil {
			log.Fatal().Err(err).Str("sku", sp.sku).Msg("buscar producto")
		}
		if p != nil {
			productIDs = append(productIDs, p.ID)
			continue
		}
		created, err := productUC.Create(ctx, actor, dto.CreateProductRequest{
			Name:       sp.name,
			SKU:        sp.sku,
			Barcode:    sp.barcode,
			CategoryID: categoryIDs[sp.category],
			Unit:       entity.DefaultUnit,
			MinStock:   sp.minStock,
		})
		if err != nil {
			log.Warn().Err(err).Str("sku", sp.sku).Msg("producto omitido")
			continue
		}
		productIDs = append(productIDs, created.ID)
		log.Info().Str("sku", sp.sku).Msg("producto creado")
	}

	// 4. Empleados (etiqueta facial asignada automáticamente)
	employees, err := employeeUC.List(ctx, false)
	if err != nil {
		log.Fatal().Err(err).Msg("listar empleados")
	}
	byCode := make(map[string]int64, len(employees))
	for _, e := range employees {
		byCode[e.EmployeeID] = e.ID
	}
	var firstEmployee int64
	for _, se := range seedEmployees {
		id, ok := byCode[se.code]
		if !ok {
			e, err := employeeUC.Create(ctx, actor, dto.CreateEmployeeRequest{Name: se.name, EmployeeID: se.code})
			if err != nil {
				log.Fatal().Err(err).Str("employee_id", se.code).Msg("crear empleado")
			}
			id = e.ID
			log.Info().Str("employee_id", se.code).Int("face_label", e.FaceLabel).Msg("empleado creado")
		}
		if firstEmployee == 0 {
			firstEmployee = id
		}
	}

	// 5. Ingreso inicial
	if !*withStock || len(productIDs) == 0 {
		log.Info().Msg("seed completado")
		return
	}
	_, total, err := movementRepo.List(ctx, entity.MovementFilter{
		Type:   entity.MovementTypeIN,
		Status: entity.MovementStatusVerified,
		Limit:  1,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("consultar ingresos")
	}
	if total > 0 {
		log.Info().Msg("ya existe un ingreso verificado, se omite el stock inicial")
		return
	}

	if _, err := movementRepo.CancelPending(ctx, admin.ID, entity.MovementTypeIN); err != nil {
		log.Fatal().Err(err).Msg("cancelar borradores previos")
	}
	mov := &entity.Movement{
		Type:        entity.MovementTypeIN,
		Status:      entity.MovementStatusPending,
		PerformedBy: admin.ID,
		Note:        "Stock inicial de demostración",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := movementRepo.Create(ctx, mov); err != nil {
		log.Fatal().Err(err).Msg("crear ingreso")
	}
	for _, pid := range productIDs {
		item := &entity.MovementItem{
			MovementID: mov.ID,
			ProductID:  pid,
			Quantity:   int64(rand.IntN(151) + 50),
			UnitPrice:  decimal.NewFromInt(int64(rand.IntN(99001) + 1000)),
		}
		if err := movementRepo.AddItem(ctx, item); err != nil {
			log.Fatal().Err(err).Msg("agregar ítem")
		}
	}
	engine := inventory.NewEngine(txRunner, log)
	if _, err := engine.Commit(ctx, mov.ID, firstEmployee, 0); err != nil {
		log.Fatal().Err(err).Msg("confirmar ingreso inicial")
	}
	log.Info().Msg("seed completado con stock inicial")
}
