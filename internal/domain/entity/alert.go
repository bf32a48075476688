package entity

import "time"

// Tipos de alerta.
const (
	AlertLowStock            = "low_stock"
	AlertCertificateExpiring = "certificate_expiring"
	AlertReplacementDue      = "replacement_due"
)

// Severidades.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Alert señal derivada (no persistida) de stock bajo, certificado por vencer o reemplazo pendiente.
type Alert struct {
	Kind     string
	Severity string
	ItemID   string
	ItemName string
	SKU      string

	// Stock bajo.
	QuantityAvailable int
	MinStock          int

	// Certificado o reemplazo. DaysRemaining es negativo si la fecha ya pasó.
	DueDate       *time.Time
	DaysRemaining *int

	// Reemplazo: alcance por entrega.
	DeliveryID string
	PersonID   string
}
