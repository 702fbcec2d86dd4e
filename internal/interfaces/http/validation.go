package http

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/domain"
)

var validate = newValidator()

// newValidator usa los nombres de json (o query) en los errores por campo.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// errInvalidBody cuerpo que no se pudo decodificar.
var errInvalidBody = errors.New("cuerpo inválido")

// parseBody decodifica el JSON del cuerpo y valida las etiquetas `validate`.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return validate.Struct(out)
}

// parseQuery decodifica la query string y valida.
func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return errInvalidBody
	}
	return validate.Struct(out)
}

// paramID lee un parámetro de ruta numérico positivo.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s inválido: %w", name, domain.ErrInvalidInput)
	}
	return id, nil
}

// formatValidationErrors convierte los errores del validador en la respuesta 400.
func formatValidationErrors(verrs validator.ValidationErrors) dto.ValidationErrorResponse {
	fields := make([]dto.ValidationField, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, dto.ValidationField{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return dto.ValidationErrorResponse{
		Code:    "VALIDATION",
		Message: "la petición tiene campos inválidos",
		Fields:  fields,
	}
}

func validationMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "campo obligatorio"
	case "min":
		if isString {
			return "debe tener al menos " + e.Param() + " caracteres"
		}
		if e.Kind() == reflect.Slice {
			return "debe tener al menos " + e.Param() + " elementos"
		}
		return "debe ser al menos " + e.Param()
	case "max":
		if isString {
			return "debe tener como máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "gt":
		return "debe ser mayor que " + e.Param()
	case "gte":
		return "debe ser mayor o igual que " + e.Param()
	case "datetime":
		return "fecha inválida, formato YYYY-MM-DD"
	default:
		return "valor inválido"
	}
}
