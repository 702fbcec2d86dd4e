package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/almacen-faceid/internal/application/analytics"
	"github.com/jhoicas/almacen-faceid/internal/application/dto"
)

// ReportHandler reportes de stock y movimientos.
type ReportHandler struct {
	uc *appanalytics.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *appanalytics.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Stock godoc
// @Summary      Reporte de stock valorizado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        category_id  query  int   false  "Filtrar por categoría"
// @Param        low_only     query  bool  false  "Solo productos bajo el mínimo"
// @Success      200  {object}  dto.StockReportResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	var in dto.StockReportRequest
	if err := parseQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.StockReport(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Reporte de movimientos por período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (YYYY-MM-DD); por defecto inicio de mes"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD, inclusive); por defecto hoy"
// @Param        type    query  string  false  "IN | OUT"
// @Param        status  query  string  false  "Por defecto VERIFIED"
// @Success      200  {object}  dto.MovementReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	var in dto.MovementReportRequest
	if err := parseQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.MovementReport(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos con stock bajo el mínimo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LowStockReportResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStockReport(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(out)
}
