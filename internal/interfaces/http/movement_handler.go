package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
)

// MovementHandler maneja el ciclo de vida de los movimientos de stock:
// borrador, ítems, confirmación con Face ID, cancelación y reversión.
type MovementHandler struct {
	uc *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Abrir borrador de movimiento (IN u OUT)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "Tipo y nota"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.Context(), ActorFrom(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "IN | OUT"
// @Param        status  query  string  false  "PENDING | VERIFIED | CANCELLED"
// @Param        limit   query  int     false  "Tamaño de página"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := parseQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.List(c.Context(), ActorFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de un movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.Context(), ActorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto al borrador (acumula si ya está)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del movimiento"
// @Param        body  body  dto.AddMovementItemRequest  true  "Producto, cantidad y precio unitario"
// @Success      200   {object}  dto.MovementResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/items [post]
func (h *MovementHandler) AddItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.AddMovementItemRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.AddItem(c.Context(), ActorFrom(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RemoveItem godoc
// @Summary      Quitar un ítem del borrador
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id      path  int  true  "ID del movimiento"
// @Param        itemId  path  int  true  "ID del ítem"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/items/{itemId} [delete]
func (h *MovementHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return err
	}
	out, err := h.uc.RemoveItem(c.Context(), ActorFrom(c), id, itemID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Finalize godoc
// @Summary      Confirmar movimiento con la verificación facial vigente
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      403  {object}  dto.ErrorResponse  "FACE_NOT_VERIFIED"
// @Failure      409  {object}  InsufficientStockResponse
// @Router       /api/movements/{id}/finalize [post]
func (h *MovementHandler) Finalize(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Finalize(c.Context(), ActorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar borrador
// @Tags         movements
// @Security     Bearer
// @Param        id  path  int  true  "ID del movimiento"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/cancel [post]
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Cancel(c.Context(), ActorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Discard godoc
// @Summary      Cancelar todos los borradores propios de un tipo
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DiscardMovementsRequest  true  "Tipo"
// @Success      200   {object}  dto.DiscardMovementsResponse
// @Router       /api/movements/discard [post]
func (h *MovementHandler) Discard(c *fiber.Ctx) error {
	var in dto.DiscardMovementsRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	n, err := h.uc.Discard(c.Context(), ActorFrom(c), in.Type)
	if err != nil {
		return err
	}
	return c.JSON(dto.DiscardMovementsResponse{Discarded: n})
}

// Reverse godoc
// @Summary      Revertir movimiento verificado (solo admin)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del movimiento"
// @Param        body  body  dto.ReverseMovementRequest  false  "Motivo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  InsufficientStockResponse
// @Router       /api/movements/{id}/reverse [post]
func (h *MovementHandler) Reverse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.ReverseMovementRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Reverse(c.Context(), ActorFrom(c), id, in.Reason)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
