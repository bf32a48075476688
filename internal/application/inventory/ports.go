package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: ni la cantidad ni el libro quedan a medias.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		deliveryRepo repository.DeliveryRepository,
	) error) error
}

// Metrics contrato mínimo de observabilidad del libro (lo implementa infrastructure/metrics).
type Metrics interface {
	MovementRecorded(kind entity.MovementKind)
	DeliveryIssued()
	CASRetry()
	CASExhausted()
	IntegrityIncident(reason string)
	AlertsComputed(alerts []entity.Alert)
}

// JobLocker lock distribuido para que un solo proceso ejecute el job de alertas.
// ok=false indica que otra instancia tiene el lock.
type JobLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Clock fuente de tiempo inyectable (tests).
type Clock func() time.Time

type nopMetrics struct{}

func (nopMetrics) MovementRecorded(entity.MovementKind) {}
func (nopMetrics) DeliveryIssued()                      {}
func (nopMetrics) CASRetry()                            {}
func (nopMetrics) CASExhausted()                        {}
func (nopMetrics) IntegrityIncident(string)             {}
func (nopMetrics) AlertsComputed([]entity.Alert)        {}

// NopMetrics métricas vacías para tests o despliegues sin Prometheus.
func NopMetrics() Metrics { return nopMetrics{} }
