package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса.
// Методы Record*/Inc* безопасны для nil-получателя: при выключенных метриках
// в use case можно передать nil *Metrics.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// БД
	DBQueryDuration      *prometheus.HistogramVec
	DBQueryErrors        *prometheus.CounterVec
	DBOpenConnections    *prometheus.GaugeVec
	DBInUseConnections   *prometheus.GaugeVec
	DBIdleConnections    *prometheus.GaugeVec
	DBWaitCount          *prometheus.GaugeVec
	DBWaitDurationSecond *prometheus.GaugeVec

	// Бизнес-метрики
	AppointmentsCreated    *prometheus.CounterVec
	AppointmentTransitions *prometheus.CounterVec
	WebhookEvents          *prometheus.CounterVec
	Refunds                *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBOpenConnections: newPoolGauge("db_open_connections", "Open connections in the pool", constLabels),
		DBInUseConnections: newPoolGauge("db_in_use_connections", "Connections currently in use", constLabels),
		DBIdleConnections: newPoolGauge("db_idle_connections", "Idle connections in the pool", constLabels),
		DBWaitCount: newPoolGauge("db_wait_count", "Total number of connections waited for", constLabels),
		DBWaitDurationSecond: newPoolGauge("db_wait_duration_seconds", "Total time blocked waiting for a connection", constLabels),

		AppointmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointments_created_total",
			Help:        "Appointments created, by checkout mode",
			ConstLabels: constLabels,
		}, []string{"checkout"}),
		AppointmentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_status_transitions_total",
			Help:        "Appointment status transitions",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_webhook_events_total",
			Help:        "Payment webhook deliveries by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		Refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "refunds_total",
			Help:        "Refunds issued, real or simulated",
			ConstLabels: constLabels,
		}, []string{"mode"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.DBWaitDurationSecond,
		m.AppointmentsCreated,
		m.AppointmentTransitions,
		m.WebhookEvents,
		m.Refunds,
	)

	return m
}

func newPoolGauge(name, help string, constLabels prometheus.Labels) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        name,
		Help:        help,
		ConstLabels: constLabels,
	}, []string{"db"})
}

// IncAppointmentCreated учитывает созданную запись
func (m *Metrics) IncAppointmentCreated(checkout string) {
	if m == nil {
		return
	}
	m.AppointmentsCreated.WithLabelValues(checkout).Inc()
}

// IncTransition учитывает смену статуса записи
func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.AppointmentTransitions.WithLabelValues(from, to).Inc()
}

// IncWebhookOutcome учитывает результат обработки webhook
func (m *Metrics) IncWebhookOutcome(outcome string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(outcome).Inc()
}

// IncRefund учитывает возврат: mode = real | simulated
func (m *Metrics) IncRefund(mode string) {
	if m == nil {
		return
	}
	m.Refunds.WithLabelValues(mode).Inc()
}

// ObserveHTTPRequest учитывает HTTP запрос по шаблону маршрута
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
