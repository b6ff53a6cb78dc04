package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrConfirmationMismatch = errors.New("el texto de confirmación no coincide")
)

// InsufficientStockError indica que aplicar un movimiento dejaría el stock en negativo.
// Available es el stock con el que se evaluó la regla (ya sin el efecto previo del mismo registro).
type InsufficientStockError struct {
	ProductID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente (actual: %d, solicitado: %d)", e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError entrada rechazada antes de tocar el almacenamiento.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
