package inventory_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/application/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
	"github.com/jhoicas/dotacion-api/internal/infrastructure/memory"
)

// appendGate detiene un único Append dentro de la tx, ya hecho el CAS del ítem.
type appendGate struct {
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newAppendGate() *appendGate {
	return &appendGate{entered: make(chan struct{}), release: make(chan struct{})}
}

type gatedMovementRepo struct {
	repository.MovementRepository
	gate *appendGate
}

func (r gatedMovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if r.gate.armed.CompareAndSwap(true, false) {
		close(r.gate.entered)
		<-r.gate.release
	}
	return r.MovementRepository.Append(ctx, m)
}

// interleavingMovementRepo confirma movimientos justo antes y justo después
// de la primera lectura del libro.
type interleavingMovementRepo struct {
	repository.MovementRepository
	calls         *atomic.Int32
	before, after func()
}

func (r interleavingMovementRepo) ListAllByItem(ctx context.Context, itemID string) ([]*entity.Movement, error) {
	first := r.calls.Add(1) == 1
	if first {
		r.before()
	}
	movs, err := r.MovementRepository.ListAllByItem(ctx, itemID)
	if first {
		r.after()
	}
	return movs, err
}

func TestAuditItem_Consistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "Casco", 10, 0, nil)
	_, err := f.scheduler.IssueDelivery(ctx, testUser, dto.IssueDeliveryRequest{PersonID: "EMP-1", ItemID: item.ID, Quantity: 4})
	require.NoError(t, err)

	res, err := f.auditor.AuditItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, 6, res.QuantityAvailable)
	assert.Equal(t, 6, res.ReplayedQuantity)
	assert.Equal(t, 2, res.MovementCount)
	assert.Empty(t, res.Detail)
}

func TestAuditItem_DiscrepanciaBloqueaElItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "Casco", 10, 0, nil)

	// escritura fuera del libro
	ok, err := f.items.CompareAndSwapQuantity(ctx, item.ID, 10, 12)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := f.auditor.AuditItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, res.Consistent)
	assert.Equal(t, 12, res.QuantityAvailable)
	assert.Equal(t, 10, res.ReplayedQuantity)
	assert.NotEmpty(t, res.Detail)
	assert.Equal(t, 1, f.metrics.incidents["replay_mismatch"])

	_, err = f.movements.RecordMovement(ctx, item.ID, testUser, dto.RecordMovementRequest{Kind: "entry", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrIntegrityHold)

	// una segunda auditoría no vuelve a contar el incidente
	_, err = f.auditor.AuditItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.metrics.incidents["replay_mismatch"])
}

func TestAuditItem_MovimientoEnCursoNoBloqueaElItem(t *testing.T) {
	gate := newAppendGate()
	f := newFixture(t, withRunner(func(inner inventory.TxRunner) inventory.TxRunner {
		return wrappingRunner{inner: inner, wrapMov: func(r repository.MovementRepository) repository.MovementRepository {
			return gatedMovementRepo{MovementRepository: r, gate: gate}
		}}
	}))
	ctx := context.Background()
	item := f.createItem(t, "Casco", 10, 0, nil)

	gate.armed.Store(true)
	movDone := make(chan error, 1)
	go func() {
		_, err := f.movements.RecordMovement(ctx, item.ID, testUser, dto.RecordMovementRequest{Kind: "entry", Quantity: 1})
		movDone <- err
	}()
	<-gate.entered

	type auditResult struct {
		res *dto.AuditResponse
		err error
	}
	auditDone := make(chan auditResult, 1)
	go func() {
		res, err := f.auditor.AuditItem(ctx, item.ID)
		auditDone <- auditResult{res: res, err: err}
	}()

	select {
	case got := <-auditDone:
		close(gate.release)
		t.Fatalf("la auditoría leyó la tx sin confirmar: %+v", got.res)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	require.NoError(t, <-movDone)
	got := <-auditDone
	require.NoError(t, got.err)
	assert.True(t, got.res.Consistent, got.res.Detail)
	assert.Equal(t, 11, got.res.QuantityAvailable)
	assert.Equal(t, 11, got.res.ReplayedQuantity)
	assert.Equal(t, 2, got.res.MovementCount)
	assert.Zero(t, f.metrics.incidents["replay_mismatch"])

	stored, err := f.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, stored.IntegrityHold)

	_, err = f.movements.RecordMovement(ctx, item.ID, testUser, dto.RecordMovementRequest{Kind: "exit", Quantity: 1})
	require.NoError(t, err)
	f.requireLedgerConsistent(t, item.ID)
}

// Entre la primera lectura del ítem y la segunda entran +1 y -1: la cantidad vuelve
// al mismo valor pero el replay intermedio no le corresponde.
func TestAuditItem_CantidadQueVuelveAlMismoValorSeReintenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "Casco", 10, 0, nil)

	record := func(kind string) {
		_, err := f.movements.RecordMovement(ctx, item.ID, testUser, dto.RecordMovementRequest{Kind: kind, Quantity: 1})
		require.NoError(t, err)
	}
	calls := &atomic.Int32{}
	movs := interleavingMovementRepo{
		MovementRepository: f.movs,
		calls:              calls,
		before:             func() { record("entry") },
		after:              func() { record("exit") },
	}
	auditor := inventory.NewIntegrityAuditor(f.items, inventory.NewMovementLedger(movs, zerolog.Nop()), f.metrics, zerolog.Nop())

	res, err := auditor.AuditItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, res.Consistent, res.Detail)
	assert.Equal(t, 10, res.QuantityAvailable)
	assert.Equal(t, 3, res.MovementCount)
	assert.Equal(t, int32(2), calls.Load(), "el primer replay se descarta")
	assert.Zero(t, f.metrics.incidents["replay_mismatch"])

	stored, err := f.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, stored.IntegrityHold)
}

func TestAuditItem_Inexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.auditor.AuditItem(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuditAll_ReportaSoloInconsistentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createItem(t, "Casco", 10, 0, nil)
	f.createItem(t, "Botas", 4, 0, nil)
	roto := f.createItem(t, "Guantes", 3, 0, nil)
	inactivo := f.createItem(t, "Careta", 1, 0, nil)
	require.NoError(t, f.catalog.DeactivateItem(ctx, inactivo.ID))

	_, err := f.items.CompareAndSwapQuantity(ctx, roto.ID, 3, 0)
	require.NoError(t, err)

	report, err := f.auditor.AuditAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Checked)
	assert.Equal(t, 1, report.Inconsistent)
	require.Len(t, report.Items, 1)
	assert.Equal(t, roto.ID, report.Items[0].ItemID)
}

func TestAlertJob_RunOnceRespetaElLock(t *testing.T) {
	f := newFixture(t)
	f.createItem(t, "Agotado", 0, 1, nil)
	locker := memory.NewJobLocker()
	job := inventory.NewAlertJob(inventory.AlertJobConfig{Interval: time.Hour}, f.alerts, locker, zerolog.Nop())
	ctx := context.Background()

	ran, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, f.metrics.alerts)

	release, ok, err := locker.TryLock(ctx, "otra-instancia", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ran, err = job.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "otra instancia tiene el lock")
	require.NoError(t, release(ctx))
}

func TestAlertJob_StartStop(t *testing.T) {
	f := newFixture(t)
	f.createItem(t, "Agotado", 0, 1, nil)
	job := inventory.NewAlertJob(inventory.AlertJobConfig{Interval: time.Hour}, f.alerts, nil, zerolog.Nop())

	job.Start(context.Background())
	assert.Eventually(t, func() bool {
		f.metrics.mu.Lock()
		defer f.metrics.mu.Unlock()
		return f.metrics.alerts == 1
	}, time.Second, 10*time.Millisecond, "el primer ciclo corre al iniciar")
	job.Stop()
	job.Stop()
}
