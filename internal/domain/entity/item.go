package entity

import "time"

// Categorías de ítem.
const (
	CategoryProtectiveEquipment = "protective_equipment" // EPP
	CategoryUniform             = "uniform"
	CategoryTool                = "tool"
	CategoryIT                  = "it"
	CategoryOfficeSupply        = "office_supply"
	CategoryOther               = "other"
)

// Unidades de medida.
const (
	UnitPiece = "piece"
	UnitPair  = "pair"
	UnitBox   = "box"
	UnitPack  = "pack"
)

// Estados del ítem (soft delete).
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
)

// Item representa un ítem de dotación o material con stock controlado.
// QuantityAvailable solo lo modifica el mutador de stock, siempre junto a un movimiento.
type Item struct {
	ID                string
	SKU               string // opcional; único cuando existe
	Name              string
	Description       string
	Category          string
	UnitMeasure       string
	QuantityAvailable int
	MinStock          int

	// Metadatos regulatorios (solo aplican a EPP): número de certificado y vencimiento.
	CertificateNumber     string
	CertificateExpiration *time.Time

	ReplacementCycleDays *int // cada cuántos días se reemplaza una unidad entregada

	Status        string
	IntegrityHold bool // true tras un incidente de integridad del libro
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive indica si el ítem puede recibir entregas y generar alertas.
func (i *Item) IsActive() bool {
	return i.Status == ItemStatusActive
}

// HasReplacementCycle indica si el ítem define un ciclo de reemplazo.
func (i *Item) HasReplacementCycle() bool {
	return i.ReplacementCycleDays != nil && *i.ReplacementCycleDays > 0
}

// ValidCategory valida la categoría contra el catálogo cerrado.
func ValidCategory(c string) bool {
	switch c {
	case CategoryProtectiveEquipment, CategoryUniform, CategoryTool, CategoryIT, CategoryOfficeSupply, CategoryOther:
		return true
	}
	return false
}

// ValidUnitMeasure valida la unidad de medida.
func ValidUnitMeasure(u string) bool {
	switch u {
	case UnitPiece, UnitPair, UnitBox, UnitPack:
		return true
	}
	return false
}

// ItemFilter filtros para listar ítems activos.
type ItemFilter struct {
	Category string
	Search   string // coincide con nombre o SKU
	LowStock bool   // solo ítems con quantity_available <= min_stock
	Limit    int
	Offset   int
}
