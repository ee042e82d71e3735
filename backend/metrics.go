package backend

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "cloudchain"
	subsystemUpload  = "upload"
)

// UploadMetrics tracks upload activity and exposes it through Prometheus
// compatible collectors.
type UploadMetrics struct {
	mu       sync.Mutex
	registry *prometheus.Registry

	bytesUploaded prometheus.Counter
	filesUploaded prometheus.Counter
	chunksSent    prometheus.Counter

	bytes  uint64
	files  uint64
	chunks uint64
}

// UploadSnapshot is a point-in-time view of the collected metrics.
type UploadSnapshot struct {
	Bytes  uint64
	Files  uint64
	Chunks uint64
}

func NewUploadMetrics() *UploadMetrics {
	m := &UploadMetrics{
		registry: prometheus.NewRegistry(),
		bytesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystemUpload,
			Name:      "bytes_total",
			Help:      "Total bytes acknowledged by the remote store.",
		}),
		filesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystemUpload,
			Name:      "files_total",
			Help:      "Total files fully uploaded.",
		}),
		chunksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystemUpload,
			Name:      "chunks_total",
			Help:      "Total chunks sent to the remote store.",
		}),
	}
	m.registry.MustRegister(m.bytesUploaded, m.filesUploaded, m.chunksSent)
	return m
}

func (m *UploadMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *UploadMetrics) ObserveChunk(bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes += bytes
	m.chunks++
	m.bytesUploaded.Add(float64(bytes))
	m.chunksSent.Inc()
}

func (m *UploadMetrics) ObserveFile() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files++
	m.filesUploaded.Inc()
}

func (m *UploadMetrics) Snapshot() UploadSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return UploadSnapshot{Bytes: m.bytes, Files: m.files, Chunks: m.chunks}
}
