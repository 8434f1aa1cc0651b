package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

type RecommendService struct {
	graph ports.SocialGraphReader
	settings
}

func NewRecommendService(graph ports.SocialGraphReader, opts ...Option) *RecommendService {
	return &RecommendService{graph: graph, settings: newSettings(opts)}
}

// Recommend parcourt deux sauts du graphe : les comptes suivis par mes abonnements,
// moins ceux que je suis déjà. Un candidat atteint via deux abonnements apparaît deux fois.
// userID lui-même n'est exclu que s'il se suit.
func (s *RecommendService) Recommend(ctx context.Context, userID string) ([]*domain.User, error) {
	ctx, span := tracer.Start(ctx, "recommend.Follows", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	direct, err := s.graph.FollowedUsers(ctx, userID)
	if err != nil {
		return nil, fail(span, graphUnavailable("followed users", userID, err))
	}

	// Lecture seule une fois construit => partageable entre goroutines
	following := make(map[string]struct{}, len(direct))
	for _, u := range direct {
		following[u.ID] = struct{}{}
	}

	chunks, err := fetchOrdered(ctx, s.concurrency, direct, func(ctx context.Context, f *domain.User) ([]*domain.User, error) {
		second, err := s.graph.FollowedUsers(ctx, f.ID)
		if err != nil {
			return nil, graphUnavailable("followed users", f.ID, err)
		}
		kept := make([]*domain.User, 0, len(second))
		for _, candidate := range second {
			if _, ok := following[candidate.ID]; ok {
				continue
			}
			kept = append(kept, candidate)
		}
		return kept, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	var out []*domain.User
	for _, c := range chunks {
		out = append(out, c...)
	}

	span.SetAttributes(attribute.Int("recommend.size", len(out)))
	s.metrics.ObserveRecommendations(len(out))
	return out, nil
}
