package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidMovement   = errors.New("movimiento de stock inválido")
	ErrPersistence       = errors.New("error de persistencia")
	ErrConfiguration     = errors.New("configuración inválida")
	ErrCacheInvalidation = errors.New("no se pudo invalidar la caché")
	ErrForbidden         = errors.New("acceso denegado")
)

// ValidationError entrada mal formada, rechazada antes de tocar el ledger.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError referencia desconocida (producto, sucursal, transacción).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Resource, e.ID, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError rechazo de negocio: el primer producto sin stock suficiente.
// No se registró ninguna mutación.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s para producto %q: solicitado %d, disponible %d",
		ErrInsufficientStock, e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidMovementError el movimiento dejaría un balance negativo o no respeta el signo de su tipo.
type InvalidMovementError struct {
	ProductID string
	BranchID  string
	Delta     int64
	Balance   int64
}

func (e *InvalidMovementError) Error() string {
	return fmt.Sprintf("%s: producto %q sucursal %q delta %d balance resultante %d",
		ErrInvalidMovement, e.ProductID, e.BranchID, e.Delta, e.Balance)
}

func (e *InvalidMovementError) Is(target error) bool { return target == ErrInvalidMovement }

// PersistenceError falla del almacenamiento subyacente. Transitoria para el caller;
// nunca se reintenta dentro del ledger.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence envuelve err como PersistenceError salvo que ya sea un error de dominio.
func Persistence(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// ConfigurationError fatal al arranque: el proceso no debe servir tráfico.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Key, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// IsDomainError indica si err ya pertenece a la taxonomía de dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrInsufficientStock, ErrInvalidMovement,
		ErrPersistence, ErrConfiguration, ErrCacheInvalidation, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
