// Package metrics exposes Prometheus instrumentation for the alarm pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"FCCMonitorAPI/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "fcc_"

var (
	registerOnce sync.Once

	alarmsRaised       *prometheus.CounterVec
	alarmsAcknowledged prometheus.Counter
	alarmsEscalated    *prometheus.CounterVec
	activeAlarms       *prometheus.GaugeVec
	recomputeLatency   prometheus.Histogram

	tagReadings   *prometheus.CounterVec
	mqttMessages  *prometheus.CounterVec
	graphImports  *prometheus.CounterVec
	wsConnections prometheus.Gauge
)

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		alarmsRaised = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarms_raised_total",
				Help: "Total alarms raised by priority and kind",
			},
			[]string{"priority", "kind"},
		)
		alarmsAcknowledged = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarms_acknowledged_total",
				Help: "Total alarms acknowledged by operators",
			},
		)
		alarmsEscalated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarms_escalated_total",
				Help: "Total alarm escalations by resulting priority",
			},
			[]string{"priority"},
		)
		activeAlarms = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "active_alarms",
				Help: "Unacknowledged alarms by priority",
			},
			[]string{"priority"},
		)
		recomputeLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "alarm_recompute_seconds",
				Help:    "Duration of a risk recompute pass",
				Buckets: prometheus.DefBuckets,
			},
		)
		tagReadings = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tag_readings_total",
				Help: "Tag readings applied by resulting status",
			},
			[]string{"status"},
		)
		mqttMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "mqtt_messages_total",
				Help: "MQTT messages received by result",
			},
			[]string{"result"},
		)
		graphImports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "causality_imports_total",
				Help: "Causality graph imports by result",
			},
			[]string{"result"},
		)
		wsConnections = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "websocket_clients",
				Help: "Connected websocket clients",
			},
		)

		prometheus.MustRegister(
			alarmsRaised,
			alarmsAcknowledged,
			alarmsEscalated,
			activeAlarms,
			recomputeLatency,
			tagReadings,
			mqttMessages,
			graphImports,
			wsConnections,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func priorityLabel(p models.Priority) string {
	return strconv.Itoa(int(p))
}

func AlarmRaised(p models.Priority, kind models.AlarmKind) {
	if alarmsRaised == nil {
		return
	}
	alarmsRaised.WithLabelValues(priorityLabel(p), string(kind)).Inc()
}

func AlarmAcknowledged() {
	if alarmsAcknowledged == nil {
		return
	}
	alarmsAcknowledged.Inc()
}

func AlarmEscalated(to models.Priority) {
	if alarmsEscalated == nil {
		return
	}
	alarmsEscalated.WithLabelValues(priorityLabel(to)).Inc()
}

// SetActiveAlarms replaces the active gauge with counts per priority.
func SetActiveAlarms(counts map[models.Priority]int) {
	if activeAlarms == nil {
		return
	}
	for _, p := range models.Priorities {
		activeAlarms.WithLabelValues(priorityLabel(p)).Set(float64(counts[p]))
	}
}

func ObserveRecompute(seconds float64) {
	if recomputeLatency == nil {
		return
	}
	recomputeLatency.Observe(seconds)
}

func TagReading(status models.Status) {
	if tagReadings == nil {
		return
	}
	tagReadings.WithLabelValues(string(status)).Inc()
}

func MQTTMessage(ok bool) {
	if mqttMessages == nil {
		return
	}
	result := "success"
	if !ok {
		result = "error"
	}
	mqttMessages.WithLabelValues(result).Inc()
}

func GraphImport(ok bool) {
	if graphImports == nil {
		return
	}
	result := "success"
	if !ok {
		result = "rejected"
	}
	graphImports.WithLabelValues(result).Inc()
}

func WebsocketClients(n int) {
	if wsConnections == nil {
		return
	}
	wsConnections.Set(float64(n))
}
