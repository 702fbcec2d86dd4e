package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/almacen-faceid/internal/application/analytics"
)

// DashboardHandler maneja el resumen del panel principal.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve conteos del inventario, movimientos verificados de hoy,
// valor total del stock y los últimos movimientos.
// GET /api/dashboard
//
// No requiere parámetros; "hoy" se calcula en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context(), ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
