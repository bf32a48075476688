package dto

import "time"

// AlertDTO alerta calculada al vuelo (no persistida).
type AlertDTO struct {
	Kind              string     `json:"kind"`     // low_stock | certificate_expiring | replacement_due
	Severity          string     `json:"severity"` // critical | warning
	ItemID            string     `json:"item_id"`
	ItemName          string     `json:"item_name,omitempty"`
	SKU               string     `json:"sku,omitempty"`
	QuantityAvailable *int       `json:"quantity_available,omitempty"`
	MinStock          *int       `json:"min_stock,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	DaysRemaining     *int       `json:"days_remaining,omitempty"`
	DeliveryID        string     `json:"delivery_id,omitempty"`
	PersonID          string     `json:"person_id,omitempty"`
}

// AlertListResponse respuesta de GET /api/alerts.
type AlertListResponse struct {
	Total    int        `json:"total"`
	Critical int        `json:"critical"`
	Warning  int        `json:"warning"`
	Alerts   []AlertDTO `json:"alerts"`
}
