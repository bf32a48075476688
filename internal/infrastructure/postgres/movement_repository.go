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

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `seq, id, item_id, kind, quantity, effect, previous_quantity, new_quantity,
	person_id, COALESCE(delivery_id::text, ''), reason, document_number, unit_cost, created_by, created_at`

// MovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m    entity.Movement
		kind string
	)
	err := row.Scan(
		&m.Seq, &m.ID, &m.ItemID, &kind, &m.Quantity, &m.Effect, &m.PreviousQuantity, &m.NewQuantity,
		&m.PersonID, &m.DeliveryID, &m.Reason, &m.DocumentNumber, &m.UnitCost, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	return &m, nil
}

// Append inserta el movimiento y asigna Seq.
// La restricción CHECK new_quantity >= 0 se traduce a ErrNegativeStock.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (id, item_id, kind, quantity, effect, previous_quantity, new_quantity,
			person_id, delivery_id, reason, document_number, unit_cost, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ItemID, string(m.Kind), m.Quantity, m.Effect, m.PreviousQuantity, m.NewQuantity,
		m.PersonID, nullIfEmpty(m.DeliveryID), m.Reason, m.DocumentNumber, m.UnitCost, m.CreatedBy, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		switch {
		case isCheckViolation(err):
			return domain.ErrNegativeStock
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	if !isUUID(id) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByItem movimientos del ítem en orden de seq. Limit 0 = sin límite.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	if !isUUID(itemID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE item_id = $1 ORDER BY seq`
	args := []any{itemID}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListAllByItem libro completo del ítem para replay.
func (r *MovementRepo) ListAllByItem(ctx context.Context, itemID string) ([]*entity.Movement, error) {
	return r.ListByItem(ctx, itemID, 0, 0)
}

// CountByItem cuenta por filas y no por max(seq): el orden de seq no sigue el orden de commit.
func (r *MovementRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	if !isUUID(itemID) {
		return 0, nil
	}
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}
