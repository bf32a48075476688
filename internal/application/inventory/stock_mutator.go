package inventory

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// errCASConflict indica que el UPDATE condicional no afectó filas: otro escritor ganó.
var errCASConflict = errors.New("conflicto de compare-and-swap")

// RetryPolicy límite de intentos y backoff exponencial con jitter.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy 5 intentos, 10ms base, 200ms máximo.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseBackoff: 10 * time.Millisecond, MaxBackoff: 200 * time.Millisecond}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseBackoff <= 0 {
		return 0
	}
	d := p.BaseBackoff << (attempt - 1)
	if p.MaxBackoff > 0 && (d > p.MaxBackoff || d <= 0) {
		d = p.MaxBackoff
	}
	// full jitter: [d/2, d)
	half := int64(d / 2)
	return time.Duration(half + rand.Int63n(half+1))
}

// MutationInput cambio de stock solicitado.
type MutationInput struct {
	ItemID   string
	Kind     entity.MovementKind
	Quantity int
	Meta     entity.MovementMetadata
}

// afterMutation se ejecuta dentro de la misma transacción, tras el movimiento (ej. crear la entrega).
type afterMutation func(
	ctx context.Context,
	item *entity.Item,
	mov *entity.Movement,
	deliveryRepo repository.DeliveryRepository,
) error

// StockMutator único camino autorizado para cambiar Item.QuantityAvailable.
// Cada intento: lee v0, valida, UPDATE ... WHERE quantity_available = v0, inserta el movimiento;
// todo en una transacción. Si el UPDATE no afecta filas, reintenta con el valor fresco.
type StockMutator struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
	ledger   *MovementLedger
	policy   RetryPolicy
	metrics  Metrics
	now      Clock
	log      zerolog.Logger
}

// NewStockMutator construye el mutador. itemRepo (fuera de tx) se usa para marcar bloqueos de integridad.
func NewStockMutator(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	ledger *MovementLedger,
	policy RetryPolicy,
	metrics Metrics,
	now Clock,
	log zerolog.Logger,
) *StockMutator {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if now == nil {
		now = time.Now
	}
	return &StockMutator{
		txRunner: txRunner,
		itemRepo: itemRepo,
		ledger:   ledger,
		policy:   policy,
		metrics:  metrics,
		now:      now,
		log:      log.With().Str("component", "stock_mutator").Logger(),
	}
}

// Apply aplica el cambio de stock y devuelve el movimiento creado.
func (m *StockMutator) Apply(ctx context.Context, in MutationInput) (*entity.Movement, error) {
	return m.apply(ctx, in, nil)
}

func (m *StockMutator) apply(ctx context.Context, in MutationInput, after afterMutation) (*entity.Movement, error) {
	if in.ItemID == "" || !in.Kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	for attempt := 1; attempt <= m.policy.MaxAttempts; attempt++ {
		mov, err := m.attempt(ctx, in, after)
		if err == nil {
			m.metrics.MovementRecorded(in.Kind)
			return mov, nil
		}
		switch {
		case errors.Is(err, errCASConflict):
			m.metrics.CASRetry()
			m.log.Debug().Str("item_id", in.ItemID).Int("attempt", attempt).Msg("compare-and-swap perdido, reintentando")
			if attempt < m.policy.MaxAttempts {
				if err := sleepCtx(ctx, m.policy.backoff(attempt)); err != nil {
					return nil, err
				}
			}
			continue
		case errors.Is(err, domain.ErrNegativeStock):
			m.holdItem(ctx, in.ItemID, "negative_stock")
			return nil, err
		default:
			return nil, err
		}
	}

	m.metrics.CASExhausted()
	m.log.Warn().Str("item_id", in.ItemID).Int("attempts", m.policy.MaxAttempts).Msg("reintentos de compare-and-swap agotados")
	return nil, domain.ErrConcurrentModification
}

func (m *StockMutator) attempt(ctx context.Context, in MutationInput, after afterMutation) (*entity.Movement, error) {
	var mov *entity.Movement
	err := m.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		deliveryRepo repository.DeliveryRepository,
	) error {
		item, err := itemRepo.GetByID(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if !item.IsActive() {
			return domain.ErrItemInactive
		}
		if item.IntegrityHold {
			return domain.ErrIntegrityHold
		}
		v0 := item.QuantityAvailable
		if in.Kind.Decreases() && in.Quantity > v0 {
			return domain.ErrInsufficientStock
		}
		next := v0 + in.Kind.Sign()*in.Quantity

		swapped, err := itemRepo.CompareAndSwapQuantity(ctx, item.ID, v0, next)
		if err != nil {
			return err
		}
		if !swapped {
			return errCASConflict
		}

		mov, err = m.ledger.AppendMovement(ctx, movRepo, item.ID, in.Kind, in.Quantity, v0, in.Meta, m.now())
		if err != nil {
			return err
		}
		if after != nil {
			return after(ctx, item, mov, deliveryRepo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// holdItem bloquea el ítem tras un incidente de integridad; requiere conciliación manual.
func (m *StockMutator) holdItem(ctx context.Context, itemID, reason string) {
	m.metrics.IntegrityIncident(reason)
	if err := m.itemRepo.SetIntegrityHold(context.WithoutCancel(ctx), itemID, true); err != nil {
		m.log.Error().Err(err).Str("item_id", itemID).Msg("no se pudo bloquear el ítem tras incidente de integridad")
		return
	}
	m.log.Error().Str("item_id", itemID).Str("reason", reason).Msg("ítem bloqueado por incidente de integridad")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
