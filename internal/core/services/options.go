package services

import (
	"go.opentelemetry.io/otel"

	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

const (
	DefaultFeedTarget       = 25
	DefaultFetchConcurrency = 8
)

var tracer = otel.Tracer("feed-service")

type settings struct {
	concurrency int
	metrics     ports.FeedMetrics
}

type Option func(*settings)

// WithConcurrency borne le nombre de lectures parallèles par requête (fan-out)
func WithConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithMetrics(m ports.FeedMetrics) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		concurrency: DefaultFetchConcurrency,
		metrics:     noopMetrics{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

type noopMetrics struct{}

func (noopMetrics) ObserveFeed(int, int)        {}
func (noopMetrics) ObserveRecommendations(int) {}
