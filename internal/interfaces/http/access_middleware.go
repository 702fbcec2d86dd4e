package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// RequireCapability verifica que el rol del token tenga la capacidad indicada.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 MISSING_ROLE si el token no trae rol.
//   - 403 FORBIDDEN si el rol no tiene la capacidad.
func RequireCapability(capability entity.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}
		if !actor.Can(capability) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + actor.Role + "' no puede realizar '" + string(capability) + "'",
			})
		}
		return c.Next()
	}
}

// RequestLogger registra cada petición con método, ruta, estado y latencia.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.Named("http").Named("access")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// El ErrorHandler escribe la respuesta; se invoca aquí para registrar el estado final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Int64("user_id", GetUserID(c)).
			Msg("request")
		return nil
	}
}
