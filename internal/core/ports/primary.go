package ports

import (
	"context"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
)

// --- DRIVING (Ce que le service expose) ---

type FeedService interface {
	// Feed agrège le contenu des comptes suivis et complète jusqu'à target
	Feed(ctx context.Context, userID string, target int) ([]*domain.ContentItem, error)

	// Random renvoie jusqu'à n tweets aléatoires
	Random(ctx context.Context, n int) ([]*domain.ContentItem, error)
}

type RecommendationService interface {
	// Recommend : "who my follows follow", sans ceux déjà suivis, doublons conservés
	Recommend(ctx context.Context, userID string) ([]*domain.User, error)
}

type RelationService interface {
	Followers(ctx context.Context, userID string) ([]*domain.User, error)
	FollowedUsers(ctx context.Context, userID string) ([]*domain.User, error)
	Relation(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error)
}

type IndexService interface {
	ContentCreated(ctx context.Context, item *domain.ContentItem) error
	ContentDeleted(ctx context.Context, item *domain.ContentItem) error
}
