package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo cerrado de movimiento de stock.
type MovementKind string

// Tipos de movimiento.
const (
	MovementEntry              MovementKind = "entry"               // entrada (compra, reposición)
	MovementExit               MovementKind = "exit"                // salida (entrega a persona)
	MovementAdjustmentIncrease MovementKind = "adjustment_increase" // ajuste positivo
	MovementAdjustmentDecrease MovementKind = "adjustment_decrease" // ajuste negativo
	MovementReturn             MovementKind = "return"              // devolución
	MovementLoss               MovementKind = "loss"                // pérdida o baja
)

// movementSigns tabla única de signos: agregar un tipo es un cambio en un solo lugar.
var movementSigns = map[MovementKind]int{
	MovementEntry:              +1,
	MovementExit:               -1,
	MovementAdjustmentIncrease: +1,
	MovementAdjustmentDecrease: -1,
	MovementReturn:             +1,
	MovementLoss:               -1,
}

// MovementKinds devuelve todos los tipos válidos.
func MovementKinds() []MovementKind {
	return []MovementKind{
		MovementEntry, MovementExit,
		MovementAdjustmentIncrease, MovementAdjustmentDecrease,
		MovementReturn, MovementLoss,
	}
}

// Valid indica si el tipo pertenece a la enumeración.
func (k MovementKind) Valid() bool {
	_, ok := movementSigns[k]
	return ok
}

// Sign devuelve +1 o -1; 0 para un tipo desconocido.
func (k MovementKind) Sign() int {
	return movementSigns[k]
}

// Decreases indica si el tipo resta stock (exit, loss, adjustment_decrease).
func (k MovementKind) Decreases() bool {
	return k.Sign() < 0
}

// Movement registro inmutable del libro de movimientos.
// NewQuantity = PreviousQuantity + Effect; nunca se actualiza ni se borra.
type Movement struct {
	ID               string
	Seq              int64 // orden total por ítem (asignado al insertar)
	ItemID           string
	Kind             MovementKind
	Quantity         int // siempre > 0
	Effect           int // Quantity con signo según Kind
	PreviousQuantity int
	NewQuantity      int
	PersonID         string // opcional: entrega o devolución de una persona
	DeliveryID       string // opcional: salida ligada a una entrega
	Reason           string
	DocumentNumber   string
	UnitCost         *decimal.Decimal
	CreatedBy        string
	CreatedAt        time.Time
}

// MovementMetadata datos opcionales de un movimiento.
type MovementMetadata struct {
	PersonID       string
	DeliveryID     string
	Reason         string
	DocumentNumber string
	UnitCost       *decimal.Decimal
	CreatedBy      string
}
