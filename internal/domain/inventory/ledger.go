// Package inventory contiene los servicios de dominio puros del libro de stock:
// efecto de cada tipo de movimiento, replay del libro, fechas de reemplazo y severidad de alertas.
package inventory

import (
	"fmt"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

// Effect devuelve la cantidad con signo que aplica un movimiento.
func Effect(kind entity.MovementKind, quantity int) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("tipo de movimiento %q: %w", kind, domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	return kind.Sign() * quantity, nil
}

// Apply calcula la nueva cantidad a partir de la anterior.
// NuevaCantidad = CantidadAnterior + Efecto; falla con ErrNegativeStock si queda < 0.
func Apply(previous int, kind entity.MovementKind, quantity int) (effect, next int, err error) {
	effect, err = Effect(kind, quantity)
	if err != nil {
		return 0, 0, err
	}
	next = previous + effect
	if next < 0 {
		return effect, next, domain.ErrNegativeStock
	}
	return effect, next, nil
}

// ReplayError describe el primer punto donde el libro deja de ser consistente.
type ReplayError struct {
	MovementID string
	Seq        int64
	Reason     string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("libro inconsistente en movimiento %s (seq %d): %s", e.MovementID, e.Seq, e.Reason)
}

// Replay reconstruye la cantidad de un ítem plegando sus movimientos en orden de creación.
// Verifica que cada snapshot encadene con el anterior y que nunca quede stock negativo.
func Replay(movements []*entity.Movement) (int, error) {
	qty := 0
	for _, m := range movements {
		if m.PreviousQuantity != qty {
			return qty, &ReplayError{MovementID: m.ID, Seq: m.Seq,
				Reason: fmt.Sprintf("previous_quantity=%d, esperado %d", m.PreviousQuantity, qty)}
		}
		_, next, err := Apply(qty, m.Kind, m.Quantity)
		if err != nil {
			return qty, &ReplayError{MovementID: m.ID, Seq: m.Seq, Reason: err.Error()}
		}
		if next != m.NewQuantity {
			return qty, &ReplayError{MovementID: m.ID, Seq: m.Seq,
				Reason: fmt.Sprintf("new_quantity=%d, esperado %d", m.NewQuantity, next)}
		}
		qty = next
	}
	return qty, nil
}
