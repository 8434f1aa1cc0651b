package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

// Ordre de ContentFor : tweets, puis retweets, puis likes
var contentKinds = []domain.ContentKind{domain.KindTweet, domain.KindRetweet, domain.KindLike}

// Layout Redis :
//
//	content:{owner}:{kind}   ZSET  id -> created_at (ms)
//	content:item:{kind}:{id} HASH  owner, tweet, body, created_at
//	content:pool:tweet       ZSET  tous les tweets (pool du tirage aléatoire)
type RedisContentRepo struct {
	client *redis.Client
	rnd    ports.RandomSource
}

func NewRedisContentRepo(client *redis.Client, rnd ports.RandomSource) *RedisContentRepo {
	return &RedisContentRepo{client: client, rnd: rnd}
}

func ownerKey(ownerID string, kind domain.ContentKind) string {
	return fmt.Sprintf("content:%s:%s", ownerID, kind)
}

func itemKey(kind domain.ContentKind, id string) string {
	return fmt.Sprintf("content:item:%s:%s", kind, id)
}

const poolKey = "content:pool:tweet"

// IndexContent : écriture atomique (MULTI/EXEC) de l'item et de ses index
func (r *RedisContentRepo) IndexContent(ctx context.Context, item *domain.ContentItem) error {
	score := float64(item.CreatedAt.UnixMilli())

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, itemKey(item.Kind, item.ID), itemToHash(item))
		pipe.ZAdd(ctx, ownerKey(item.OwnerID, item.Kind), redis.Z{Score: score, Member: item.ID})
		if item.Kind == domain.KindTweet {
			pipe.ZAdd(ctx, poolKey, redis.Z{Score: score, Member: item.ID})
		}
		return nil
	})
	return err
}

func (r *RedisContentRepo) RemoveContent(ctx context.Context, item *domain.ContentItem) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, itemKey(item.Kind, item.ID))
		pipe.ZRem(ctx, ownerKey(item.OwnerID, item.Kind), item.ID)
		if item.Kind == domain.KindTweet {
			pipe.ZRem(ctx, poolKey, item.ID)
		}
		return nil
	})
	return err
}

// ContentFor : 2 pipelines, les ids triés par date puis l'hydratation
func (r *RedisContentRepo) ContentFor(ctx context.Context, userID string) ([]*domain.ContentItem, error) {
	pipe := r.client.Pipeline()
	idCmds := make([]*redis.StringSliceCmd, len(contentKinds))
	for i, kind := range contentKinds {
		idCmds[i] = pipe.ZRange(ctx, ownerKey(userID, kind), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	var refs []itemRef
	for i, cmd := range idCmds {
		for _, id := range cmd.Val() {
			refs = append(refs, itemRef{kind: contentKinds[i], id: id})
		}
	}
	return r.hydrate(ctx, refs)
}

// RandomSample tire des rangs distincts dans le pool de tweets
func (r *RedisContentRepo) RandomSample(ctx context.Context, n int) ([]*domain.ContentItem, error) {
	if n <= 0 {
		return nil, nil
	}

	total, err := r.client.ZCard(ctx, poolKey).Result()
	if err != nil {
		return nil, err
	}

	ranks := sampleIndexes(r.rnd, int(total), n)
	if len(ranks) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(ranks))
	for i, rank := range ranks {
		cmds[i] = pipe.ZRange(ctx, poolKey, int64(rank), int64(rank))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	refs := make([]itemRef, 0, len(ranks))
	for _, cmd := range cmds {
		for _, id := range cmd.Val() {
			refs = append(refs, itemRef{kind: domain.KindTweet, id: id})
		}
	}
	return r.hydrate(ctx, refs)
}

type itemRef struct {
	kind domain.ContentKind
	id   string
}

func (r *RedisContentRepo) hydrate(ctx context.Context, refs []itemRef) ([]*domain.ContentItem, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(refs))
	for i, ref := range refs {
		cmds[i] = pipe.HGetAll(ctx, itemKey(ref.kind, ref.id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	items := make([]*domain.ContentItem, 0, len(refs))
	for i, cmd := range cmds {
		item, ok := itemFromHash(refs[i].kind, refs[i].id, cmd.Val())
		if !ok {
			// Index orphelin (item supprimé entre-temps) : on ignore
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func itemToHash(item *domain.ContentItem) map[string]any {
	return map[string]any{
		"owner":      item.OwnerID,
		"tweet":      item.TweetID,
		"body":       item.Body,
		"created_at": strconv.FormatInt(item.CreatedAt.UnixMilli(), 10),
	}
}

func itemFromHash(kind domain.ContentKind, id string, fields map[string]string) (*domain.ContentItem, bool) {
	owner := fields["owner"]
	if owner == "" {
		return nil, false
	}
	ms, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, false
	}
	tweetID := fields["tweet"]
	if kind == domain.KindTweet {
		tweetID = id
	}
	return &domain.ContentItem{
		Kind:      kind,
		ID:        id,
		OwnerID:   owner,
		TweetID:   tweetID,
		Body:      fields["body"],
		CreatedAt: time.UnixMilli(ms).UTC(),
	}, true
}
