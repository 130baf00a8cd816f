package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementación de ports.Metrics con client_golang.
type Prometheus struct {
	applied       *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	applyLatency  *prometheus.HistogramVec
	items         *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// New crea los colectores y los registra en reg (prometheus.DefaultRegisterer si es nil).
func New(namespace string, reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Prometheus{
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_applied_total",
			Help:      "Transacciones confirmadas por tipo",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_rejected_total",
			Help:      "Transacciones rechazadas por tipo y motivo",
		}, []string{"type", "reason"}),
		applyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_apply_duration_seconds",
			Help:      "Duración de la aplicación de transacciones",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		items: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_items",
			Help:      "Líneas por transacción confirmada",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}, []string{"type"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Consultas a la caché de lectura por clase y resultado",
		}, []string{"class", "result"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Invalidaciones de caché tras mutaciones por resultado",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.applied, m.rejected, m.applyLatency, m.items,
		m.cacheLookups, m.invalidations, m.httpRequests, m.httpLatency)
	return m
}

func (m *Prometheus) TransactionApplied(t entity.TransactionType, items int, elapsed time.Duration) {
	m.applied.WithLabelValues(string(t)).Inc()
	m.applyLatency.WithLabelValues(string(t)).Observe(elapsed.Seconds())
	m.items.WithLabelValues(string(t)).Observe(float64(items))
}

func (m *Prometheus) TransactionRejected(t entity.TransactionType, reason string) {
	m.rejected.WithLabelValues(string(t), reason).Inc()
}

func (m *Prometheus) CacheLookup(class string, hit bool) {
	m.cacheLookups.WithLabelValues(class, result(hit, "hit", "miss")).Inc()
}

func (m *Prometheus) CacheInvalidation(ok bool) {
	m.invalidations.WithLabelValues(result(ok, "ok", "failed")).Inc()
}

// HTTPRequest registra una petición atendida. route es la plantilla de la ruta, no la URL.
func (m *Prometheus) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
