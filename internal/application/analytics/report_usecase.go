package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

const reportDateLayout = "2006-01-02"

// ReportUseCase reportes de stock, movimientos y stock bajo.
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(analyticsRepo repository.AnalyticsRepository) *ReportUseCase {
	return &ReportUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// WithClock reemplaza la fuente de tiempo.
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// StockReport stock actual por producto con su valor y totales.
func (uc *ReportUseCase) StockReport(ctx context.Context, in dto.StockReportRequest) (*dto.StockReportResponse, error) {
	rows, err := uc.analyticsRepo.GetStockReport(ctx, in.CategoryID, in.LowOnly)
	if err != nil {
		return nil, err
	}
	resp := &dto.StockReportResponse{
		GeneratedAt: uc.now(),
		Items:       make([]dto.StockReportItem, 0, len(rows)),
		TotalValue:  decimal.Zero,
	}
	for _, r := range rows {
		resp.Items = append(resp.Items, dto.StockReportItem{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			SKU:          r.SKU,
			Barcode:      r.Barcode,
			CategoryName: r.CategoryName,
			Unit:         r.Unit,
			MinStock:     r.MinStock,
			CurrentQty:   r.CurrentQty,
			IsLowStock:   r.IsLow(),
			LastInPrice:  r.LastInPrice,
			Value:        r.Value.Round(2),
			LastUpdated:  r.LastUpdated,
		})
		resp.TotalQty += r.CurrentQty
		resp.TotalValue = resp.TotalValue.Add(r.Value)
	}
	resp.TotalItems = len(resp.Items)
	resp.TotalValue = resp.TotalValue.Round(2)
	return resp, nil
}

// MovementReport ítems de movimientos del período.
// Sin fechas: del día 1 del mes en curso al final de hoy. "to" incluye el día completo.
func (uc *ReportUseCase) MovementReport(ctx context.Context, in dto.MovementReportRequest) (*dto.MovementReportResponse, error) {
	now := uc.now()
	_, todayEnd := dayBounds(now)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := todayEnd
	if in.From != "" {
		d, err := time.ParseInLocation(reportDateLayout, in.From, now.Location())
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		from = d
	}
	if in.To != "" {
		d, err := time.ParseInLocation(reportDateLayout, in.To, now.Location())
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		_, to = dayBounds(d)
	}
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	if in.Type != "" && !entity.IsValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = entity.MovementStatusVerified
	}

	rows, err := uc.analyticsRepo.GetMovementReport(ctx, from, to, in.Type, status)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovementReportResponse{
		From:        from,
		To:          to,
		Type:        in.Type,
		Status:      status,
		Items:       make([]dto.MovementReportItem, 0, len(rows)),
		TotalAmount: decimal.Zero,
	}
	for _, r := range rows {
		resp.Items = append(resp.Items, dto.MovementReportItem{
			MovementID:         r.MovementID,
			Date:               r.Date,
			Type:               r.Type,
			Status:             r.Status,
			PerformedBy:        r.PerformedBy,
			FaceEmployee:       r.FaceEmployee,
			FaceConfidence:     r.FaceConfidence,
			ProductID:          r.ProductID,
			ProductName:        r.ProductName,
			SKU:                r.SKU,
			Unit:               r.Unit,
			Quantity:           r.Quantity,
			UnitPrice:          r.UnitPrice,
			Total:              r.Total,
			Note:               r.Note,
			ReversedMovementID: r.ReversedMovementID,
		})
		if r.Type == entity.MovementTypeIN {
			resp.TotalIn += r.Quantity
		} else {
			resp.TotalOut += r.Quantity
		}
		resp.TotalAmount = resp.TotalAmount.Add(r.Total)
	}
	resp.TotalAmount = resp.TotalAmount.Round(2)
	return resp, nil
}

// LowStockReport productos en o por debajo del mínimo, ordenados por cantidad.
func (uc *ReportUseCase) LowStockReport(ctx context.Context) (*dto.LowStockReportResponse, error) {
	levels, err := uc.analyticsRepo.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.LowStockReportResponse{
		GeneratedAt: uc.now(),
		Items:       make([]dto.LowStockItem, 0, len(levels)),
	}
	for _, l := range levels {
		resp.Items = append(resp.Items, dto.LowStockItem{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			SKU:          l.SKU,
			CategoryName: l.CategoryName,
			Unit:         l.Unit,
			MinStock:     l.MinStock,
			CurrentQty:   l.CurrentQty,
			Deficit:      l.Deficit(),
		})
	}
	resp.Total = len(resp.Items)
	return resp, nil
}
