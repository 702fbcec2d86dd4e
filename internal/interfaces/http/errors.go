package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/ports"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// InsufficientStockResponse 409 con el producto que impide la salida.
type InsufficientStockResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Available   int64  `json:"available"`
	Requested   int64  `json:"requested"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // vacío: se usa err.Error()
}

// El orden importa: se toma la primera coincidencia con errors.Is.
var errorMappings = []errorMapping{
	{errInvalidBody, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "usuario o contraseña incorrectos"},
	{faceid.ErrVerdictInvalid, fiber.StatusForbidden, "FACE_NOT_VERIFIED", "verifique su rostro de nuevo"},
	{domain.ErrNotOwner, fiber.StatusForbidden, "NOT_OWNER", ""},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "no tiene permiso para esta acción"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND", ""},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", ""},
	{faceid.ErrNoMatch, fiber.StatusUnprocessableEntity, "FACE_NOT_RECOGNIZED", "rostro no reconocido, intente de nuevo"},
	{domain.ErrMovementNotPending, fiber.StatusConflict, "MOVEMENT_NOT_PENDING", ""},
	{domain.ErrMovementNotVerified, fiber.StatusConflict, "MOVEMENT_NOT_VERIFIED", ""},
	{domain.ErrAlreadyReversed, fiber.StatusConflict, "ALREADY_REVERSED", ""},
	{domain.ErrReversalOfReversal, fiber.StatusConflict, "REVERSAL_NOT_REVERSIBLE", ""},
	{domain.ErrEmptyMovement, fiber.StatusConflict, "EMPTY_MOVEMENT", ""},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", ""},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", ""},
	{ports.ErrBiometricUnavailable, fiber.StatusServiceUnavailable, "BIOMETRIC_UNAVAILABLE", "el servicio de reconocimiento facial no está disponible"},
}

// ErrorHandler traduce los errores devueltos por los handlers a respuestas JSON.
// Los errores sin mapeo se registran y responden 500 sin detalle.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(verrs))
		}

		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			return c.Status(fiber.StatusConflict).JSON(InsufficientStockResponse{
				Code:        "INSUFFICIENT_STOCK",
				Message:     stockErr.Error(),
				ProductID:   stockErr.ProductID,
				ProductName: stockErr.ProductName,
				SKU:         stockErr.SKU,
				Available:   stockErr.Available,
				Requested:   stockErr.Requested,
			})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
		}

		for _, m := range errorMappings {
			if !errors.Is(err, m.target) {
				continue
			}
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			if m.status >= fiber.StatusInternalServerError {
				log.Warn().Err(err).Str("path", c.Path()).Msg("dependencia externa no disponible")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: fiberErrorCode(fe.Code), Message: fe.Message})
		}

		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
	}
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "HTTP_ERROR"
	}
}
