package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

const deliveryColumns = `d.id, d.person_id, d.item_id, d.movement_id, d.quantity, d.size, d.delivery_date,
	d.certificate_number, d.next_replacement_date, d.acknowledged, d.notes, d.created_by, d.created_at`

// DeliveryRepo entregas sobre PostgreSQL (solo inserción y lectura).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

func scanDelivery(row pgx.Row) (*entity.Delivery, error) {
	var d entity.Delivery
	err := row.Scan(
		&d.ID, &d.PersonID, &d.ItemID, &d.MovementID, &d.Quantity, &d.Size, &d.DeliveryDate,
		&d.CertificateNumber, &d.NextReplacementDate, &d.Acknowledged, &d.Notes, &d.CreatedBy, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserta la entrega. Debe correr en la misma tx que su movimiento de salida.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	query := `
		INSERT INTO deliveries (id, person_id, item_id, movement_id, quantity, size, delivery_date,
			certificate_number, next_replacement_date, acknowledged, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.PersonID, d.ItemID, d.MovementID, d.Quantity, d.Size, d.DeliveryDate,
		d.CertificateNumber, d.NextReplacementDate, d.Acknowledged, d.Notes, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	if !isUUID(id) {
		return nil, nil
	}
	d, err := scanDelivery(r.q.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

// List historial por persona y/o ítem, más reciente primero.
func (r *DeliveryRepo) List(ctx context.Context, f entity.DeliveryFilter) ([]*entity.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries d WHERE 1=1`
	var args []any
	if f.PersonID != "" {
		args = append(args, f.PersonID)
		query += fmt.Sprintf(" AND d.person_id = $%d", len(args))
	}
	if f.ItemID != "" {
		if !isUUID(f.ItemID) {
			return nil, nil
		}
		args = append(args, f.ItemID)
		query += fmt.Sprintf(" AND d.item_id = $%d", len(args))
	}
	query += " ORDER BY d.created_at DESC, d.id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.list(ctx, query, args...)
}

// ListWithReplacement entregas con fecha de reemplazo cuyo ítem sigue activo.
func (r *DeliveryRepo) ListWithReplacement(ctx context.Context) ([]*entity.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries d
		JOIN items i ON i.id = d.item_id
		WHERE d.next_replacement_date IS NOT NULL AND i.status = 'active'
		ORDER BY d.next_replacement_date`
	return r.list(ctx, query)
}

func (r *DeliveryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Delivery, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()
	var out []*entity.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
