package domain

import "errors"

// Códigos estables de error de dominio. El controlador decide el status HTTP.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyApproved   = "ALREADY_APPROVED"
	CodeAlreadyClosed     = "ALREADY_CLOSED"
	CodeAlreadyOpen       = "ALREADY_OPEN"
	CodeClosedRegister    = "CLOSED_REGISTER"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeEmptyItems        = "EMPTY_ITEMS"
	CodeOverReceipt       = "OVER_RECEIPT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeLockConflict      = "LOCK_CONFLICT"
	CodeDuplicate         = "DUPLICATE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
)

// DomainError error de negocio con código legible por máquina.
// Dos DomainError son equivalentes para errors.Is si comparten Code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Is compara por código, de modo que un error con mensaje específico sigue
// coincidiendo con su sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage devuelve una copia del error con un mensaje más específico.
func (e *DomainError) WithMessage(msg string) *DomainError {
	return &DomainError{Code: e.Code, Message: msg}
}

// NewDomainError construye un error de dominio.
func NewDomainError(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg}
}

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "recurso no encontrado")
	ErrAlreadyApproved   = NewDomainError(CodeAlreadyApproved, "el documento ya fue aprobado")
	ErrAlreadyClosed     = NewDomainError(CodeAlreadyClosed, "el turno ya está cerrado")
	ErrAlreadyOpen       = NewDomainError(CodeAlreadyOpen, "la caja ya tiene un turno abierto")
	ErrClosedRegister    = NewDomainError(CodeClosedRegister, "la caja está cerrada")
	ErrInsufficientStock = NewDomainError(CodeInsufficientStock, "stock insuficiente")
	ErrInvalidTransition = NewDomainError(CodeInvalidTransition, "transición de estado no permitida")
	ErrInvalidStatus     = NewDomainError(CodeInvalidStatus, "estado no válido")
	ErrEmptyItems        = NewDomainError(CodeEmptyItems, "el documento no tiene ítems")
	ErrOverReceipt       = NewDomainError(CodeOverReceipt, "la cantidad recibida supera la ordenada")
	ErrInvalidInput      = NewDomainError(CodeValidation, "entrada inválida")
	ErrLockConflict      = NewDomainError(CodeLockConflict, "recurso bloqueado por otra operación, intente de nuevo")
	ErrDuplicate         = NewDomainError(CodeDuplicate, "recurso duplicado")
	ErrUnauthorized      = NewDomainError(CodeUnauthorized, "no autorizado")
	ErrForbidden         = NewDomainError(CodeForbidden, "acceso denegado")
)

// CodeOf devuelve el código del DomainError contenido en err, o "" si no hay ninguno.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
