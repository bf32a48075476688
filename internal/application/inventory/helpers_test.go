package inventory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/application/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
	"github.com/jhoicas/dotacion-api/internal/infrastructure/memory"
)

const testUser = "00000000-0000-0000-0000-000000000001"

var fixedNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// countingMetrics registra las llamadas para verificarlas en los tests.
type countingMetrics struct {
	mu         sync.Mutex
	movements  map[entity.MovementKind]int
	deliveries int
	retries    int
	exhausted  int
	incidents  map[string]int
	alerts     int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{movements: map[entity.MovementKind]int{}, incidents: map[string]int{}}
}

func (m *countingMetrics) MovementRecorded(k entity.MovementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements[k]++
}
func (m *countingMetrics) DeliveryIssued() { m.mu.Lock(); m.deliveries++; m.mu.Unlock() }
func (m *countingMetrics) CASRetry()       { m.mu.Lock(); m.retries++; m.mu.Unlock() }
func (m *countingMetrics) CASExhausted()   { m.mu.Lock(); m.exhausted++; m.mu.Unlock() }
func (m *countingMetrics) IntegrityIncident(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents[reason]++
}
func (m *countingMetrics) AlertsComputed(a []entity.Alert) { m.mu.Lock(); m.alerts = len(a); m.mu.Unlock() }

// flakyItemRepo pierde las primeras N carreras de compare-and-swap.
type flakyItemRepo struct {
	repository.ItemRepository
	losses *atomic.Int32
}

func (r flakyItemRepo) CompareAndSwapQuantity(ctx context.Context, id string, expected, next int) (bool, error) {
	if r.losses.Add(-1) >= 0 {
		return false, nil
	}
	return r.ItemRepository.CompareAndSwapQuantity(ctx, id, expected, next)
}

// corruptMovementRepo simula la restricción CHECK de la BD rechazando el movimiento.
type corruptMovementRepo struct {
	repository.MovementRepository
}

func (corruptMovementRepo) Append(context.Context, *entity.Movement) error {
	return domain.ErrNegativeStock
}

// failingDeliveryRepo falla al insertar la entrega, después de la salida del libro.
type failingDeliveryRepo struct {
	repository.DeliveryRepository
	err error
}

func (r failingDeliveryRepo) Create(context.Context, *entity.Delivery) error { return r.err }

// wrappingRunner envuelve los repositorios de la tx para inyectar fallas.
type wrappingRunner struct {
	inner     inventory.TxRunner
	wrapItem  func(repository.ItemRepository) repository.ItemRepository
	wrapMov   func(repository.MovementRepository) repository.MovementRepository
	wrapDeliv func(repository.DeliveryRepository) repository.DeliveryRepository
}

func (w wrappingRunner) Run(ctx context.Context, fn func(repository.ItemRepository, repository.MovementRepository, repository.DeliveryRepository) error) error {
	return w.inner.Run(ctx, func(ir repository.ItemRepository, mr repository.MovementRepository, dr repository.DeliveryRepository) error {
		if w.wrapItem != nil {
			ir = w.wrapItem(ir)
		}
		if w.wrapMov != nil {
			mr = w.wrapMov(mr)
		}
		if w.wrapDeliv != nil {
			dr = w.wrapDeliv(dr)
		}
		return fn(ir, mr, dr)
	})
}

// fixture arma todos los casos de uso sobre el almacén en memoria.
type fixture struct {
	store      *memory.Store
	items      *memory.ItemRepository
	movs       *memory.MovementRepository
	deliveries *memory.DeliveryRepository
	metrics    *countingMetrics
	ledger     *inventory.MovementLedger
	mutator    *inventory.StockMutator
	catalog    *inventory.CatalogUseCase
	movements  *inventory.MovementUseCase
	scheduler  *inventory.DeliveryScheduler
	alerts     *inventory.AlertGenerator
	auditor    *inventory.IntegrityAuditor
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	runner func(inventory.TxRunner) inventory.TxRunner
	policy inventory.RetryPolicy
}

func withRunner(wrap func(inventory.TxRunner) inventory.TxRunner) fixtureOption {
	return func(c *fixtureConfig) { c.runner = wrap }
}

func withPolicy(p inventory.RetryPolicy) fixtureOption {
	return func(c *fixtureConfig) { c.policy = p }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{policy: inventory.RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}}
	for _, o := range opts {
		o(&cfg)
	}
	log := zerolog.Nop()
	store := memory.NewStore()
	f := &fixture{
		store:      store,
		items:      memory.NewItemRepository(store),
		movs:       memory.NewMovementRepository(store),
		deliveries: memory.NewDeliveryRepository(store),
		metrics:    newCountingMetrics(),
	}
	var runner inventory.TxRunner = memory.NewTxRunner(store)
	if cfg.runner != nil {
		runner = cfg.runner(runner)
	}
	f.ledger = inventory.NewMovementLedger(f.movs, log)
	f.mutator = inventory.NewStockMutator(runner, f.items, f.ledger, cfg.policy, f.metrics, fixedClock, log)
	f.catalog = inventory.NewCatalogUseCase(runner, f.items, f.ledger, f.metrics, fixedClock, log)
	f.movements = inventory.NewMovementUseCase(f.mutator, f.ledger, f.items)
	f.scheduler = inventory.NewDeliveryScheduler(f.mutator, f.items, f.deliveries, f.metrics, fixedClock, log)
	f.alerts = inventory.NewAlertGenerator(f.items, f.deliveries, domaininv.DefaultThresholds(), time.UTC, f.metrics, fixedClock, log)
	f.auditor = inventory.NewIntegrityAuditor(f.items, f.ledger, f.metrics, log)
	return f
}

func intPtr(v int) *int { return &v }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// createItem crea un ítem EPP con stock inicial y ciclo opcional.
func (f *fixture) createItem(t *testing.T, name string, qty, minStock int, cycle *int) *dto.ItemResponse {
	t.Helper()
	item, err := f.catalog.CreateItem(context.Background(), testUser, dto.CreateItemRequest{
		Name:                 name,
		Category:             entity.CategoryProtectiveEquipment,
		UnitMeasure:          entity.UnitPiece,
		QuantityAvailable:    qty,
		MinStock:             minStock,
		ReplacementCycleDays: cycle,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	it, err := f.items.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.QuantityAvailable
}

// requireLedgerConsistent verifica que la cantidad almacenada sea el replay del libro.
func (f *fixture) requireLedgerConsistent(t *testing.T, id string) {
	t.Helper()
	replayed, _, err := f.ledger.ReplayQuantity(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, f.quantity(t, id), replayed, "quantity_available debe coincidir con el replay del libro")
}
