package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "product_catalog_size",
			Help: "Number of products currently stored.",
		},
	)
	storeUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "product_store_up",
			Help: "Whether the last storage ping succeeded (1) or failed (0).",
		},
	)
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_events_published_total",
			Help: "Product change events handed to the publisher.",
		},
		[]string{"type", "result"},
	)
)

// Collectors returns the product collectors so a server can expose them on its own registry
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{catalogSize, storeUp, eventsPublished}
}

// SetCatalogSize records the current number of products
func SetCatalogSize(n int64) {
	catalogSize.Set(float64(n))
}

// SetStoreUp records the result of the last storage ping
func SetStoreUp(up bool) {
	if up {
		storeUp.Set(1)
		return
	}
	storeUp.Set(0)
}

// RecordEvent counts a published event by type and outcome
func RecordEvent(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(eventType, result).Inc()
}
