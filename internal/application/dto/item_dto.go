package dto

import "time"

// CreateItemRequest entrada para POST /api/items.
type CreateItemRequest struct {
	SKU                   string     `json:"sku" validate:"omitempty,max=64"`
	Name                  string     `json:"name" validate:"required,min=1,max=200"`
	Description           string     `json:"description" validate:"max=1000"`
	Category              string     `json:"category" validate:"required,oneof=protective_equipment uniform tool it office_supply other"`
	UnitMeasure           string     `json:"unit_measure" validate:"required,oneof=piece pair box pack"`
	QuantityAvailable     int        `json:"quantity_available" validate:"min=0"`
	MinStock              int        `json:"min_stock" validate:"min=0"`
	CertificateNumber     string     `json:"certificate_number" validate:"max=64"`
	CertificateExpiration *time.Time `json:"certificate_expiration"`
	ReplacementCycleDays  *int       `json:"replacement_cycle_days" validate:"omitempty,gt=0"`
}

// UpdateItemRequest entrada para PUT /api/items/:id. Nunca modifica la cantidad.
type UpdateItemRequest struct {
	SKU                   *string    `json:"sku" validate:"omitempty,max=64"`
	Name                  *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description           *string    `json:"description" validate:"omitempty,max=1000"`
	Category              *string    `json:"category" validate:"omitempty,oneof=protective_equipment uniform tool it office_supply other"`
	UnitMeasure           *string    `json:"unit_measure" validate:"omitempty,oneof=piece pair box pack"`
	MinStock              *int       `json:"min_stock" validate:"omitempty,min=0"`
	CertificateNumber     *string    `json:"certificate_number" validate:"omitempty,max=64"`
	CertificateExpiration *time.Time `json:"certificate_expiration"`
	ReplacementCycleDays  *int       `json:"replacement_cycle_days" validate:"omitempty,gt=0"`
}

// ListItemsRequest filtros de GET /api/items.
type ListItemsRequest struct {
	Category string `query:"category" validate:"omitempty,oneof=protective_equipment uniform tool it office_supply other"`
	Search   string `query:"search" validate:"max=100"`
	LowStock bool   `query:"low_stock"`
	Limit    int    `query:"limit" validate:"min=0,max=100"`
	Offset   int    `query:"offset" validate:"min=0"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID                    string     `json:"id"`
	SKU                   string     `json:"sku,omitempty"`
	Name                  string     `json:"name"`
	Description           string     `json:"description"`
	Category              string     `json:"category"`
	UnitMeasure           string     `json:"unit_measure"`
	QuantityAvailable     int        `json:"quantity_available"`
	MinStock              int        `json:"min_stock"`
	CertificateNumber     string     `json:"certificate_number,omitempty"`
	CertificateExpiration *time.Time `json:"certificate_expiration,omitempty"`
	ReplacementCycleDays  *int       `json:"replacement_cycle_days,omitempty"`
	IsActive              bool       `json:"is_active"`
	IntegrityHold         bool       `json:"integrity_hold"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// AuditResponse resultado de la auditoría de replay de un ítem.
type AuditResponse struct {
	ItemID            string `json:"item_id"`
	QuantityAvailable int    `json:"quantity_available"`
	ReplayedQuantity  int    `json:"replayed_quantity"`
	MovementCount     int    `json:"movement_count"`
	Consistent        bool   `json:"consistent"`
	Detail            string `json:"detail,omitempty"`
}

// AuditReportResponse resultado de POST /api/audit.
type AuditReportResponse struct {
	Checked      int             `json:"checked"`
	Inconsistent int             `json:"inconsistent"`
	Items        []AuditResponse `json:"items"`
}
