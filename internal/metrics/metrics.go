package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	once sync.Once

	// GenerationsTotal считает обращения к модели по исходу.
	GenerationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cropbreed",
		Subsystem: "generator",
		Name:      "generations_total",
		Help:      "Total number of breed generations, labeled by result.",
	}, []string{"result"})

	// GenerationDurationSeconds время от приёма двух фото до готового текста.
	GenerationDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cropbreed",
		Subsystem: "generator",
		Name:      "generation_duration_seconds",
		Help:      "Time to decode both crops and get the model response.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})

	// UploadsRejectedTotal загрузки, не дошедшие до модели.
	UploadsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cropbreed",
		Subsystem: "intake",
		Name:      "uploads_rejected_total",
		Help:      "Total number of submissions rejected before generation, labeled by reason.",
	}, []string{"reason"})
)

// Register регистрирует метрики в стандартном реестре Prometheus.
// Повторные вызовы безопасны.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			GenerationsTotal,
			GenerationDurationSeconds,
			UploadsRejectedTotal,
		)
	})
}
