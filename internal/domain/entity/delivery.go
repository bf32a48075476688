package entity

import "time"

// Delivery registro de dotación entregada a una persona. Inmutable: una corrección
// requiere una devolución y una nueva entrega.
type Delivery struct {
	ID           string
	PersonID     string // identidad opaca provista por el módulo de RRHH
	ItemID       string
	MovementID   string // salida del libro que respalda la entrega
	Quantity     int
	Size         string
	DeliveryDate time.Time

	// CertificateNumber copia congelada del certificado del ítem al momento de la entrega.
	CertificateNumber string

	NextReplacementDate *time.Time
	Acknowledged        bool // la persona confirmó la recepción
	Notes               string
	CreatedBy           string
	CreatedAt           time.Time
}

// DeliveryFilter filtro de historial (por persona o por ítem).
type DeliveryFilter struct {
	PersonID string
	ItemID   string
	Limit    int
	Offset   int
}
