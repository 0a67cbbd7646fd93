// Package telemetry exposes medmission's Prometheus metrics. There is no
// scrape endpoint: the registry is written as a node-exporter textfile after
// each command when METRICS_FILE is configured. All methods are safe to call
// on a nil *Metrics, which records nothing.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medmission"

type Metrics struct {
	registry *prometheus.Registry

	identifiersMinted  *prometheus.CounterVec
	storeWrites        *prometheus.CounterVec
	patientsRegistered prometheus.Counter
	vitalsRecorded     prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		identifiersMinted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_minted_total",
			Help:      "Patient identifiers minted, by service code.",
		}, []string{"service"}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Key-value store writes and deletes, by key and result.",
		}, []string{"key", "result"}),
		patientsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_registered_total",
			Help:      "Patients registered.",
		}),
		vitalsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vitals_recorded_total",
			Help:      "Vital sign records added.",
		}),
	}
	m.registry.MustRegister(m.identifiersMinted, m.storeWrites, m.patientsRegistered, m.vitalsRecorded)
	return m
}

// Registry returns the registry holding every medmission collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IdentifierMinted(service string) {
	if m == nil {
		return
	}
	m.identifiersMinted.WithLabelValues(service).Inc()
}

// StoreWrite records one write or delete against key.
func (m *Metrics) StoreWrite(key string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeWrites.WithLabelValues(key, result).Inc()
}

func (m *Metrics) PatientRegistered() {
	if m == nil {
		return
	}
	m.patientsRegistered.Inc()
}

func (m *Metrics) VitalsRecorded() {
	if m == nil {
		return
	}
	m.vitalsRecorded.Inc()
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically, for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// StoreWritesCounter returns the store write counter for key and result
// ("ok" or "error").
func (m *Metrics) StoreWritesCounter(key, result string) prometheus.Counter {
	return m.storeWrites.WithLabelValues(key, result)
}

// IdentifiersMintedCounter returns the mint counter for service.
func (m *Metrics) IdentifiersMintedCounter(service string) prometheus.Counter {
	return m.identifiersMinted.WithLabelValues(service)
}

func (m *Metrics) PatientsRegisteredCounter() prometheus.Counter { return m.patientsRegistered }

func (m *Metrics) VitalsRecordedCounter() prometheus.Counter { return m.vitalsRecorded }
