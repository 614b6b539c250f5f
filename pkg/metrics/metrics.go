package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SagaMetrics счётчики переходов саги
type SagaMetrics struct {
	transitions   *prometheus.CounterVec
	participant   *prometheus.CounterVec
	finished      *prometheus.CounterVec
	routingErrors *prometheus.CounterVec
	publishErrors *prometheus.CounterVec
}

var sagaMetricsSingleton = sync.OnceValue(func() *SagaMetrics {
	return NewSagaMetrics(prometheus.DefaultRegisterer)
})

// Saga возвращает метрики, зарегистрированные в реестре по умолчанию
func Saga() *SagaMetrics {
	return sagaMetricsSingleton()
}

// NewSagaMetrics регистрирует метрики в переданном реестре
func NewSagaMetrics(registerer prometheus.Registerer) *SagaMetrics {
	factory := promauto.With(registerer)
	return &SagaMetrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saga",
			Name:      "transitions_total",
			Help:      "Total number of routed saga transitions.",
		}, []string{"source", "status", "direction"}),
		participant: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saga",
			Name:      "participant_operations_total",
			Help:      "Total number of participant execute/compensate operations by result.",
		}, []string{"participant", "operation", "result"}),
		finished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saga",
			Name:      "finished_total",
			Help:      "Total number of finished sagas by final status.",
		}, []string{"status"}),
		routingErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saga",
			Name:      "routing_errors_total",
			Help:      "Total number of events that could not be routed.",
		}, []string{"kind"}),
		publishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saga",
			Name:      "publish_errors_total",
			Help:      "Total number of events that could not be published.",
		}, []string{"topic"}),
	}
}

func (m *SagaMetrics) Transition(source, status, direction string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(source, status, direction).Inc()
}

func (m *SagaMetrics) Participant(participant, operation, result string) {
	if m == nil {
		return
	}
	m.participant.WithLabelValues(participant, operation, result).Inc()
}

func (m *SagaMetrics) Finished(status string) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(status).Inc()
}

func (m *SagaMetrics) RoutingError(kind string) {
	if m == nil {
		return
	}
	m.routingErrors.WithLabelValues(kind).Inc()
}

func (m *SagaMetrics) PublishError(topic string) {
	if m == nil {
		return
	}
	m.publishErrors.WithLabelValues(topic).Inc()
}

// Handler gin-обработчик для эндпоинта /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
