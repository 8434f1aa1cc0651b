package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implémente ports.FeedMetrics
type Prometheus struct {
	feedSize        prometheus.Histogram
	paddedItems     prometheus.Counter
	paddedFeeds     prometheus.Counter
	recommendations prometheus.Histogram
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	sizes := []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000}
	p := &Prometheus{
		feedSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "feed",
			Name:      "size_items",
			Help:      "Number of items returned per feed.",
			Buckets:   sizes,
		}),
		paddedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "feed",
			Name:      "padded_items_total",
			Help:      "Randomly sampled items added to under-filled feeds.",
		}),
		paddedFeeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "feed",
			Name:      "padded_total",
			Help:      "Feeds that needed padding.",
		}),
		recommendations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recommend",
			Name:      "follows_size",
			Help:      "Number of follow suggestions returned.",
			Buckets:   sizes,
		}),
	}
	reg.MustRegister(p.feedSize, p.paddedItems, p.paddedFeeds, p.recommendations)
	return p
}

func (p *Prometheus) ObserveFeed(size, padded int) {
	p.feedSize.Observe(float64(size))
	if padded > 0 {
		p.paddedFeeds.Inc()
		p.paddedItems.Add(float64(padded))
	}
}

func (p *Prometheus) ObserveRecommendations(size int) {
	p.recommendations.Observe(float64(size))
}
