package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

type FeedService struct {
	graph   ports.SocialGraphReader
	content ports.ContentRepository
	settings
}

func NewFeedService(graph ports.SocialGraphReader, content ports.ContentRepository, opts ...Option) *FeedService {
	return &FeedService{
		graph:    graph,
		content:  content,
		settings: newSettings(opts),
	}
}

// Feed construit le feed de userID :
//  1. comptes suivis (ordre du graphe)
//  2. tweets, retweets et likes de chacun, concaténés dans cet ordre
//  3. si on a moins de target items, complément par tirage aléatoire
//
// Pas de tri, pas de dédoublonnage, pas de troncature : target est un plancher.
func (s *FeedService) Feed(ctx context.Context, userID string, target int) ([]*domain.ContentItem, error) {
	if target <= 0 {
		target = DefaultFeedTarget
	}

	ctx, span := tracer.Start(ctx, "feed.Build", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("feed.target", target),
	))
	defer span.End()

	followed, err := s.graph.FollowedUsers(ctx, userID)
	if err != nil {
		return nil, fail(span, graphUnavailable("followed users", userID, err))
	}

	chunks, err := fetchOrdered(ctx, s.concurrency, followed, func(ctx context.Context, u *domain.User) ([]*domain.ContentItem, error) {
		items, err := s.content.ContentFor(ctx, u.ID)
		if err != nil {
			return nil, contentUnavailable(fmt.Sprintf("content of %s", u.ID), err)
		}
		return items, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	feed := make([]*domain.ContentItem, 0, max(total, target))
	for _, c := range chunks {
		feed = append(feed, c...)
	}

	padded := 0
	if len(feed) < target {
		deficit := target - len(feed)
		sample, err := s.content.RandomSample(ctx, deficit)
		if err != nil {
			return nil, fail(span, contentUnavailable("random sample", err))
		}
		padded = len(sample)
		feed = append(feed, sample...)
		slog.Debug("Feed padded", "user_id", userID, "deficit", deficit, "padded", padded)
	}

	span.SetAttributes(
		attribute.Int("feed.followed", len(followed)),
		attribute.Int("feed.size", len(feed)),
		attribute.Int("feed.padded", padded),
	)
	s.metrics.ObserveFeed(len(feed), padded)
	return feed, nil
}

// Random : tirage direct dans le pool de tweets (n <= 0 => DefaultFeedTarget)
func (s *FeedService) Random(ctx context.Context, n int) ([]*domain.ContentItem, error) {
	if n <= 0 {
		n = DefaultFeedTarget
	}
	items, err := s.content.RandomSample(ctx, n)
	if err != nil {
		return nil, contentUnavailable("random sample", err)
	}
	return items, nil
}

// --- Helpers ---

func graphUnavailable(what, userID string, err error) error {
	return fmt.Errorf("%w: %s of %s: %w", domain.ErrGraphUnavailable, what, userID, err)
}

func contentUnavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrContentUnavailable, what, err)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
