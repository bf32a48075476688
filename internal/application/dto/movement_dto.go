package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/items/:id/movements.
// Kind "adjustment" requiere direction (increase|decrease).
type RecordMovementRequest struct {
	Kind           string           `json:"kind" validate:"required,oneof=entry exit adjustment adjustment_increase adjustment_decrease return loss"`
	Direction      string           `json:"direction" validate:"omitempty,oneof=increase decrease"`
	Quantity       int              `json:"quantity"`
	PersonID       string           `json:"person_id" validate:"max=64"`
	Reason         string           `json:"reason" validate:"max=500"`
	DocumentNumber string           `json:"document_number" validate:"max=64"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID               string           `json:"id"`
	ItemID           string           `json:"item_id"`
	Kind             string           `json:"kind"`
	Quantity         int              `json:"quantity"`
	Effect           int              `json:"effect"`
	PreviousQuantity int              `json:"previous_quantity"`
	NewQuantity      int              `json:"new_quantity"`
	PersonID         string           `json:"person_id,omitempty"`
	DeliveryID       string           `json:"delivery_id,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	DocumentNumber   string           `json:"document_number,omitempty"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	CreatedBy        string           `json:"created_by,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// MovementListResponse historial paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
