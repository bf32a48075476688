// Package metrics implementa inventory.Metrics con Prometheus sobre un registry propio.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/dotacion-api/internal/application/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

const namespace = "dotacion"

var _ inventory.Metrics = (*Prometheus)(nil)

// Prometheus contadores del libro de stock y gauges de alertas.
type Prometheus struct {
	registry *prometheus.Registry

	movementsTotal  *prometheus.CounterVec
	deliveriesTotal prometheus.Counter
	casRetries      prometheus.Counter
	casExhausted    prometheus.Counter
	incidentsTotal  *prometheus.CounterVec
	activeAlerts    *prometheus.GaugeVec
}

// NewPrometheus registra las métricas en un registry nuevo (más las del runtime de Go).
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		movementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de stock registrados en el libro, por tipo.",
		}, []string{"kind"}),
		deliveriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Entregas de dotación emitidas.",
		}),
		casRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_cas_retries_total",
			Help:      "Carreras de compare-and-swap perdidas que provocaron un reintento.",
		}),
		casExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_cas_exhausted_total",
			Help:      "Mutaciones abandonadas tras agotar los reintentos.",
		}),
		incidentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_incidents_total",
			Help:      "Incidentes de integridad del libro, por motivo.",
		}, []string{"reason"}),
		activeAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_alerts",
			Help:      "Alertas vigentes en el último cálculo, por tipo y severidad.",
		}, []string{"kind", "severity"}),
	}
	p.registry.MustRegister(
		p.movementsTotal, p.deliveriesTotal, p.casRetries, p.casExhausted, p.incidentsTotal, p.activeAlerts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, k := range entity.MovementKinds() {
		p.movementsTotal.WithLabelValues(string(k))
	}
	return p
}

func (p *Prometheus) MovementRecorded(kind entity.MovementKind) {
	p.movementsTotal.WithLabelValues(string(kind)).Inc()
}

func (p *Prometheus) DeliveryIssued() { p.deliveriesTotal.Inc() }
func (p *Prometheus) CASRetry()       { p.casRetries.Inc() }
func (p *Prometheus) CASExhausted()   { p.casExhausted.Inc() }

func (p *Prometheus) IntegrityIncident(reason string) {
	p.incidentsTotal.WithLabelValues(reason).Inc()
}

// AlertsComputed reemplaza los gauges con el conteo del último cálculo.
func (p *Prometheus) AlertsComputed(alerts []entity.Alert) {
	counts := map[[2]string]int{}
	for _, kind := range []string{entity.AlertLowStock, entity.AlertCertificateExpiring, entity.AlertReplacementDue} {
		for _, sev := range []string{entity.SeverityCritical, entity.SeverityWarning} {
			counts[[2]string{kind, sev}] = 0
		}
	}
	for _, a := range alerts {
		counts[[2]string{a.Kind, a.Severity}]++
	}
	for k, n := range counts {
		p.activeAlerts.WithLabelValues(k[0], k[1]).Set(float64(n))
	}
}

// Registry expone el registry (tests).
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler endpoint /metrics en formato de exposición de Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
