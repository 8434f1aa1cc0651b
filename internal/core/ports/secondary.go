package ports

import (
	"context"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
)

// --- DRIVEN (Ce dont le service a besoin) ---

// SocialGraphReader lit le graphe de follows. L'ordre renvoyé est "l'ordre du graphe",
// que le core conserve tel quel.
type SocialGraphReader interface {
	FollowedUsers(ctx context.Context, userID string) ([]*domain.User, error)
	Followers(ctx context.Context, userID string) ([]*domain.User, error)
}

// RelationChecker répond à "A suit B ?" et "B suit A ?" en une requête
type RelationChecker interface {
	GetRelationStatus(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error)
}

type ContentRepository interface {
	// ContentFor : tweets, puis retweets, puis likes de l'utilisateur
	ContentFor(ctx context.Context, userID string) ([]*domain.ContentItem, error)

	// RandomSample renvoie jusqu'à n tweets tirés dans tout le corpus.
	// Pas de garantie d'ordre ni de dédoublonnage vis-à-vis du feed.
	RandomSample(ctx context.Context, n int) ([]*domain.ContentItem, error)
}

// ContentIndexer est alimenté par les events (tweet.created, like.deleted, ...)
type ContentIndexer interface {
	IndexContent(ctx context.Context, item *domain.ContentItem) error
	RemoveContent(ctx context.Context, item *domain.ContentItem) error
}

// RandomSource est injecté dans les repos pour rendre le tirage déterministe en test.
// *math/rand/v2.Rand le satisfait.
type RandomSource interface {
	IntN(n int) int
}

// FeedMetrics observe la taille des feeds et le padding
type FeedMetrics interface {
	ObserveFeed(size, padded int)
	ObserveRecommendations(size int)
}
