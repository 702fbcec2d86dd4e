// Package analytics contiene los casos de uso de solo lectura: dashboard y reportes.
// Solo leen datos confirmados; los borradores PENDING no afectan stock ni totales.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

const dashboardRecentMovements = 10 // movimientos en el widget "recientes"

// DashboardUseCase genera el resumen del inventario.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	movRepo       repository.MovementRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, movRepo repository.MovementRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, movRepo: movRepo, now: time.Now}
}

// WithClock reemplaza la fuente de tiempo.
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro consultas en paralelo:
//  1. GetInventoryCounts            → contadores
//  2. GetVerifiedCounts(hoy)        → TodayIn / TodayOut
//  3. GetTotalStockValue            → TotalStockValue
//  4. MovementRepository.List(10)   → RecentMovements
func (uc *DashboardUseCase) GetSummary(ctx context.Context, actor entity.Actor) (*dto.DashboardSummaryDTO, error) {
	todayStart, todayEnd := dayBounds(uc.now())

	var (
		counts   repository.InventoryCounts
		todayIn  int
		todayOut int
		value    decimal.Decimal
		recent   []*entity.Movement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := uc.analyticsRepo.GetInventoryCounts(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: contadores: %w", err)
		}
		counts = c
		return nil
	})
	g.Go(func() error {
		in, out, err := uc.analyticsRepo.GetVerifiedCounts(gctx, todayStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: movimientos de hoy: %w", err)
		}
		todayIn, todayOut = in, out
		return nil
	})
	g.Go(func() error {
		v, err := uc.analyticsRepo.GetTotalStockValue(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: valor del stock: %w", err)
		}
		value = v
		return nil
	})
	g.Go(func() error {
		list, _, err := uc.movRepo.List(gctx, entity.MovementFilter{Limit: dashboardRecentMovements})
		if err != nil {
			return fmt.Errorf("dashboard: movimientos recientes: %w", err)
		}
		recent = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	movements := make([]dto.MovementResponse, 0, len(recent))
	for _, m := range recent {
		resp := inventory.ToMovementResponse(m, nil, actor)
		// sin consultar la reversión no se sabe si aún es reversible
		resp.CanReverse = false
		movements = append(movements, resp)
	}
	return &dto.DashboardSummaryDTO{
		TotalProducts:   counts.Products,
		TotalCategories: counts.Categories,
		ActiveEmployees: counts.ActiveEmployees,
		LowStockCount:   counts.LowStock,
		PendingDrafts:   counts.PendingDrafts,
		TodayIn:         todayIn,
		TodayOut:        todayOut,
		TotalStockValue: value.Round(2),
		RecentMovements: movements,
	}, nil
}

// dayBounds devuelve 00:00:00 y 23:59:59.999999999 del día de t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
