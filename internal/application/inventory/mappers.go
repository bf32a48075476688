package inventory

import (
	"time"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
)

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := domaininv.DateOnly(*t)
	return &d
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:                    i.ID,
		SKU:                   i.SKU,
		Name:                  i.Name,
		Description:           i.Description,
		Category:              i.Category,
		UnitMeasure:           i.UnitMeasure,
		QuantityAvailable:     i.QuantityAvailable,
		MinStock:              i.MinStock,
		CertificateNumber:     i.CertificateNumber,
		CertificateExpiration: i.CertificateExpiration,
		ReplacementCycleDays:  i.ReplacementCycleDays,
		IsActive:              i.IsActive(),
		IntegrityHold:         i.IntegrityHold,
		CreatedAt:             i.CreatedAt,
		UpdatedAt:             i.UpdatedAt,
	}
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               m.ID,
		ItemID:           m.ItemID,
		Kind:             string(m.Kind),
		Quantity:         m.Quantity,
		Effect:           m.Effect,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		PersonID:         m.PersonID,
		DeliveryID:       m.DeliveryID,
		Reason:           m.Reason,
		DocumentNumber:   m.DocumentNumber,
		UnitCost:         m.UnitCost,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

func toDeliveryResponse(d *entity.Delivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:                  d.ID,
		PersonID:            d.PersonID,
		ItemID:              d.ItemID,
		MovementID:          d.MovementID,
		Quantity:            d.Quantity,
		Size:                d.Size,
		DeliveryDate:        d.DeliveryDate,
		CertificateNumber:   d.CertificateNumber,
		NextReplacementDate: d.NextReplacementDate,
		Acknowledged:        d.Acknowledged,
		Notes:               d.Notes,
		CreatedBy:           d.CreatedBy,
		CreatedAt:           d.CreatedAt,
	}
}

func toAlertDTO(a entity.Alert) dto.AlertDTO {
	out := dto.AlertDTO{
		Kind:          a.Kind,
		Severity:      a.Severity,
		ItemID:        a.ItemID,
		ItemName:      a.ItemName,
		SKU:           a.SKU,
		DueDate:       a.DueDate,
		DaysRemaining: a.DaysRemaining,
		DeliveryID:    a.DeliveryID,
		PersonID:      a.PersonID,
	}
	if a.Kind == entity.AlertLowStock {
		qty, minStock := a.QuantityAvailable, a.MinStock
		out.QuantityAvailable = &qty
		out.MinStock = &minStock
	}
	return out
}
