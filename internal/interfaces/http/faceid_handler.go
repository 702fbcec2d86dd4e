package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
)

// FaceIDHandler verificación facial de la sesión.
type FaceIDHandler struct {
	uc *usecase.FaceIDUseCase
}

// NewFaceIDHandler construye el handler.
func NewFaceIDHandler(uc *usecase.FaceIDUseCase) *FaceIDHandler {
	return &FaceIDHandler{uc: uc}
}

// Verify godoc
// @Summary      Verificar rostro con un cuadro de la cámara
// @Tags         faceid
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FaceVerifyRequest  true  "Imagen en base64 o data URL"
// @Success      200   {object}  dto.FaceStatusResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/faceid/verify [post]
func (h *FaceIDHandler) Verify(c *fiber.Ctx) error {
	var in dto.FaceVerifyRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Verify(c.Context(), ActorFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Status godoc
// @Summary      Estado de la verificación facial vigente
// @Tags         faceid
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.FaceStatusResponse
// @Router       /api/faceid/status [get]
func (h *FaceIDHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.Context(), ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Descartar la verificación facial de la sesión
// @Tags         faceid
// @Security     Bearer
// @Success      204
// @Router       /api/faceid [delete]
func (h *FaceIDHandler) Clear(c *fiber.Ctx) error {
	if err := h.uc.Clear(c.Context(), ActorFrom(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
