package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Errores del libro de movimientos de stock.
	ErrInvalidQuantity        = errors.New("la cantidad debe ser un entero positivo")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrItemInactive           = errors.New("el ítem está inactivo")
	ErrConcurrentModification = errors.New("el ítem fue modificado concurrentemente, reintente la operación")
	ErrIntegrityHold          = errors.New("ítem bloqueado por incidente de integridad, requiere conciliación manual")

	// ErrNegativeStock nunca debería ocurrir si el mutador validó: es un incidente de integridad.
	ErrNegativeStock = errors.New("el movimiento dejaría el stock en negativo")

	ErrDuplicateRequest = errors.New("solicitud ya procesada (Idempotency-Key repetida)")
)
