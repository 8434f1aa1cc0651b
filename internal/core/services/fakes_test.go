package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
)

// fakeGraph implements ports.SocialGraphReader and ports.RelationChecker for testing.
type fakeGraph struct {
	follows      map[string][]string // follower -> followed, in graph order
	followedErrs map[string]error
	followersErr error
	relation     *domain.RelationStatus
	relationErr  error
	delay        map[string]time.Duration
	calls        atomic.Int32
}

func (g *fakeGraph) FollowedUsers(ctx context.Context, userID string) ([]*domain.User, error) {
	g.calls.Add(1)
	if d := g.delay[userID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := g.followedErrs[userID]; err != nil {
		return nil, err
	}
	return users(g.follows[userID]...), nil
}

func (g *fakeGraph) Followers(ctx context.Context, userID string) ([]*domain.User, error) {
	if g.followersErr != nil {
		return nil, g.followersErr
	}
	var ids []string
	for follower, followed := range g.follows {
		for _, id := range followed {
			if id == userID {
				ids = append(ids, follower)
			}
		}
	}
	return users(ids...), nil
}

func (g *fakeGraph) GetRelationStatus(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error) {
	if g.relationErr != nil {
		return nil, g.relationErr
	}
	return g.relation, nil
}

// fakeContent implements ports.ContentRepository for testing.
type fakeContent struct {
	byUser     map[string][]*domain.ContentItem
	userErrs   map[string]error
	pool       []*domain.ContentItem
	sampleErr  error
	delay      map[string]time.Duration
	mu         sync.Mutex
	sampleArgs []int
}

func (c *fakeContent) ContentFor(ctx context.Context, userID string) ([]*domain.ContentItem, error) {
	if d := c.delay[userID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := c.userErrs[userID]; err != nil {
		return nil, err
	}
	return c.byUser[userID], nil
}

func (c *fakeContent) RandomSample(ctx context.Context, n int) ([]*domain.ContentItem, error) {
	c.mu.Lock()
	c.sampleArgs = append(c.sampleArgs, n)
	c.mu.Unlock()
	if c.sampleErr != nil {
		return nil, c.sampleErr
	}
	if n > len(c.pool) {
		n = len(c.pool)
	}
	return c.pool[:n], nil
}

func (c *fakeContent) sampled() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.sampleArgs...)
}

type fakeMetrics struct {
	mu              sync.Mutex
	size, padded    int
	recommendations int
}

func (m *fakeMetrics) ObserveFeed(size, padded int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size, m.padded = size, padded
}

func (m *fakeMetrics) ObserveRecommendations(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations = size
}

func users(ids ...string) []*domain.User {
	out := make([]*domain.User, len(ids))
	for i, id := range ids {
		out[i] = &domain.User{ID: id, Username: id}
	}
	return out
}

func userIDs(us []*domain.User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.ID
	}
	return out
}

func dataIDs(items []*domain.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.DataID()
	}
	return out
}

var epoch = time.Date(2022, 2, 22, 0, 0, 0, 0, time.UTC)

func tweets(owner string, n int) []*domain.ContentItem {
	out := make([]*domain.ContentItem, n)
	for i := range out {
		id := fmt.Sprintf("%s-t%d", owner, i)
		out[i] = domain.NewTweet(id, owner, "tweet "+id, epoch.Add(time.Duration(i)*time.Minute))
	}
	return out
}

func pool(n int) []*domain.ContentItem {
	out := make([]*domain.ContentItem, n)
	for i := range out {
		id := fmt.Sprintf("p%d", i)
		out[i] = domain.NewTweet(id, "stranger", "random", epoch)
	}
	return out
}
