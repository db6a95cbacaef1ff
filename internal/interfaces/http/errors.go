package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Código de API para errores de validación de entrada.
const codeValidation = "validation"

var statusByCode = map[string]int{
	domain.CodeNotFound:          fiber.StatusNotFound,
	domain.CodeAlreadyApproved:   fiber.StatusConflict,
	domain.CodeAlreadyClosed:     fiber.StatusConflict,
	domain.CodeAlreadyOpen:       fiber.StatusConflict,
	domain.CodeClosedRegister:    fiber.StatusConflict,
	domain.CodeInsufficientStock: fiber.StatusConflict,
	domain.CodeInvalidTransition: fiber.StatusConflict,
	domain.CodeOverReceipt:       fiber.StatusConflict,
	domain.CodeLockConflict:      fiber.StatusConflict,
	domain.CodeDuplicate:         fiber.StatusConflict,
	domain.CodeInvalidStatus:     fiber.StatusBadRequest,
	domain.CodeEmptyItems:        fiber.StatusBadRequest,
	domain.CodeValidation:        fiber.StatusBadRequest,
	domain.CodeUnauthorized:      fiber.StatusUnauthorized,
	domain.CodeForbidden:         fiber.StatusForbidden,
}

// codeOverrides reemplaza el código de API de ciertos errores de dominio en un grupo de rutas.
type codeOverrides map[string]string

// Las rutas de recepción exponen códigos propios para aprobación repetida y recepción vacía.
var receptionCodes = codeOverrides{
	domain.CodeAlreadyApproved: "reception_already_approved",
	domain.CodeEmptyItems:      "reception_without_items",
}

func apiCode(domainCode string, overrides codeOverrides) string {
	if c, ok := overrides[domainCode]; ok {
		return c
	}
	if domainCode == domain.CodeValidation {
		return codeValidation
	}
	return strings.ToLower(domainCode)
}

// respondError traduce un error de dominio a su respuesta HTTP. Lo que no es de dominio
// sube al ErrorHandler de la aplicación, que lo registra y responde 500.
func respondError(c *fiber.Ctx, err error, overrides codeOverrides) error {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return err
	}
	status, ok := statusByCode[de.Code]
	if !ok {
		return err
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: apiCode(de.Code, overrides), Message: err.Error()})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "unauthorized", Message: "token inválido"})
}

// ErrorHandler respuesta por defecto de la aplicación Fiber: los *fiber.Error conservan su status,
// el resto se registra y se responde como error interno sin exponer el detalle.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := strings.ToLower(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_"))
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user_id", GetUserID(c)).
			Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "internal", Message: "error interno"})
	}
}
