package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrDuplicateReference  = errors.New("el número de referencia ya existe para este tipo de movimiento")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia: reintentos agotados")
	ErrMovementNotFound    = errors.New("movimiento no encontrado")

	// ErrOverpayment envuelve ErrInvalidInput: errors.Is(ErrOverpayment, ErrInvalidInput) == true.
	ErrOverpayment = fmt.Errorf("%w: el monto pagado excede el total del movimiento", ErrInvalidInput)

	// ErrTxConflict lo reporta el almacén cuando una lectura de la transacción fue invalidada
	// por un escritor concurrente antes del commit. Es el único error reintentable.
	ErrTxConflict = errors.New("conflicto de escritura concurrente en la transacción")
)

// DuplicateReferenceError detalla la referencia ya registrada.
type DuplicateReferenceError struct {
	WorkspaceID string
	MovementID  string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("movimiento %s ya existe en %s", e.MovementID, e.WorkspaceID)
}

func (e *DuplicateReferenceError) Unwrap() error { return ErrDuplicateReference }

// ProductNotFoundError identifica el ítem que referencia un producto inexistente.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// InsufficientStockError describe el faltante leído dentro de la transacción.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s (%s): disponible %d, solicitado %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConflictError se devuelve cuando el controlador de reintentos agota los intentos.
// Nada fue confirmado: el llamador puede reintentar la operación completa.
type ConflictError struct {
	Attempts int
	Err      error // último conflicto reportado por el almacén
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicto de concurrencia tras %d intentos: %v", e.Attempts, e.Err)
}

func (e *ConflictError) Unwrap() error { return ErrConcurrencyConflict }

// IsRetryable indica si el error es un aborto optimista del almacén.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTxConflict)
}

// IsClientError indica violaciones de reglas de negocio causadas por la entrada del llamador.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDuplicateReference) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsNotFound indica recursos referenciados inexistentes.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrMovementNotFound)
}
