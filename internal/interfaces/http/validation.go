package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre JSON del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// gt, gte y compañía sobre cantidades y montos.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// errMalformedBody cuerpo que no se pudo decodificar.
var errMalformedBody = errors.New("cuerpo inválido")

// parseBody decodifica el JSON en out y aplica las reglas validate de sus tags.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errMalformedBody
	}
	return validate.Struct(out)
}

// validationFailed responde 400 con el detalle por campo cuando lo hay.
func validationFailed(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Code: codeValidation, Message: "datos inválidos"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			resp.Details = append(resp.Details, dto.ValidationDetail{
				Field:   fieldPath(e),
				Message: validationMessage(e),
			})
		}
	} else {
		resp.Message = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

// fieldPath ruta del campo sin el nombre del struct raíz: items[0].quantity.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo obligatorio"
	case "uuid":
		return "debe ser un UUID"
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "min":
		if e.Kind() == reflect.Slice {
			return "debe tener al menos " + e.Param() + " elemento(s)"
		}
		return "debe ser al menos " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "gt":
		return "debe ser mayor que " + e.Param()
	case "gte":
		return "debe ser mayor o igual que " + e.Param()
	default:
		return "valor inválido"
	}
}
