package dto

import "time"

// IssueDeliveryRequest body para POST /api/deliveries.
type IssueDeliveryRequest struct {
	PersonID          string    `json:"person_id" validate:"required,max=64"`
	ItemID            string    `json:"item_id" validate:"required,uuid"`
	Quantity          int       `json:"quantity"`
	Size              string    `json:"size" validate:"max=16"`
	DeliveryDate      time.Time `json:"delivery_date"`
	ConfirmedByPerson bool      `json:"confirmed_by_person"`
	Notes             string    `json:"notes" validate:"max=1000"`
}

// ListDeliveriesRequest filtros de GET /api/deliveries (persona o ítem).
type ListDeliveriesRequest struct {
	PersonID string `query:"person_id" validate:"max=64"`
	ItemID   string `query:"item_id" validate:"omitempty,uuid"`
	Limit    int    `query:"limit" validate:"min=0,max=100"`
	Offset   int    `query:"offset" validate:"min=0"`
}

// DeliveryResponse salida de una entrega.
type DeliveryResponse struct {
	ID                  string     `json:"id"`
	PersonID            string     `json:"person_id"`
	ItemID              string     `json:"item_id"`
	MovementID          string     `json:"movement_id"`
	Quantity            int        `json:"quantity"`
	Size                string     `json:"size,omitempty"`
	DeliveryDate        time.Time  `json:"delivery_date"`
	CertificateNumber   string     `json:"certificate_number,omitempty"`
	NextReplacementDate *time.Time `json:"next_replacement_date"`
	Acknowledged        bool       `json:"acknowledged"`
	Notes               string     `json:"notes,omitempty"`
	CreatedBy           string     `json:"created_by,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// DeliveryListResponse historial paginado de entregas.
type DeliveryListResponse struct {
	Items []DeliveryResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
