package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, sku, name, description, category, unit_measure, quantity_available, min_stock,
	certificate_number, certificate_expiration, replacement_cycle_days, status, integrity_hold, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var i entity.Item
	err := row.Scan(
		&i.ID, &i.SKU, &i.Name, &i.Description, &i.Category, &i.UnitMeasure, &i.QuantityAvailable, &i.MinStock,
		&i.CertificateNumber, &i.CertificateExpiration, &i.ReplacementCycleDays, &i.Status, &i.IntegrityHold,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserta un ítem. SKU repetido → ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, i *entity.Item) error {
	query := `INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		i.ID, i.SKU, i.Name, i.Description, i.Category, i.UnitMeasure, i.QuantityAvailable, i.MinStock,
		i.CertificateNumber, i.CertificateExpiration, i.ReplacementCycleDays, i.Status, i.IntegrityHold,
		i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if !isUUID(id) {
		return nil, nil
	}
	item, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetBySKU devuelve nil, nil si no existe.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	item, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE sku = $1 AND sku <> ''`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by sku: %w", err)
	}
	return item, nil
}

// ListActive ítems activos ordenados por nombre. Limit 0 = sin límite.
func (r *ItemRepo) ListActive(ctx context.Context, f entity.ItemFilter) ([]*entity.Item, error) {
	var (
		where = []string{"status = 'active'"}
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args)))
	}
	if f.LowStock {
		where = append(where, "quantity_available <= min_stock")
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name, id`
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

// ListAll incluye inactivos.
func (r *ItemRepo) ListAll(ctx context.Context) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name, id`)
}

func (r *ItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var out []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// UpdateMetadata nunca toca quantity_available, status ni integrity_hold.
func (r *ItemRepo) UpdateMetadata(ctx context.Context, i *entity.Item) error {
	query := `
		UPDATE items SET sku = $2, name = $3, description = $4, category = $5, unit_measure = $6,
			min_stock = $7, certificate_number = $8, certificate_expiration = $9,
			replacement_cycle_days = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		i.ID, i.SKU, i.Name, i.Description, i.Category, i.UnitMeasure,
		i.MinStock, i.CertificateNumber, i.CertificateExpiration, i.ReplacementCycleDays, i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate baja lógica. Idempotente.
func (r *ItemRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE items SET status = 'inactive', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetIntegrityHold marca o libera el bloqueo de integridad.
func (r *ItemRepo) SetIntegrityHold(ctx context.Context, id string, hold bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE items SET integrity_hold = $2, updated_at = now() WHERE id = $1`, id, hold)
	if err != nil {
		return fmt.Errorf("set integrity hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CompareAndSwapQuantity UPDATE condicional: 0 filas afectadas significa que otro escritor ganó.
func (r *ItemRepo) CompareAndSwapQuantity(ctx context.Context, id string, expected, next int) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE items SET quantity_available = $3, updated_at = now() WHERE id = $1 AND quantity_available = $2`,
		id, expected, next)
	if err != nil {
		if isCheckViolation(err) {
			return false, domain.ErrNegativeStock
		}
		return false, fmt.Errorf("compare-and-swap quantity: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
