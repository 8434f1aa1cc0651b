package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

const (
	queryTweetsByUser = `
		SELECT id, user_id, body, created_at
		FROM tweets
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	queryRetweetsByUser = `
		SELECT r.id, r.user_id, r.tweet_id, t.body, r.created_at
		FROM retweets r
		JOIN tweets t ON t.id = r.tweet_id
		WHERE r.user_id = $1
		ORDER BY r.created_at, r.id
	`
	queryLikesByUser = `
		SELECT l.id, l.user_id, l.tweet_id, t.body, l.created_at
		FROM likes l
		JOIN tweets t ON t.id = l.tweet_id
		WHERE l.user_id = $1
		ORDER BY l.created_at, l.id
	`
	// Rangs 0-based dans l'ordre des ids, un seul parcours pour tout l'échantillon
	queryTweetsAtRanks = `
		SELECT id, user_id, body, created_at
		FROM (
			SELECT id, user_id, body, created_at, row_number() OVER (ORDER BY id) - 1 AS rank
			FROM tweets
		) ranked
		WHERE rank = ANY($1)
	`
)

type PostgresContentRepo struct {
	db  *pgxpool.Pool
	rnd ports.RandomSource
}

func NewPostgresContentRepo(db *pgxpool.Pool, rnd ports.RandomSource) *PostgresContentRepo {
	return &PostgresContentRepo{db: db, rnd: rnd}
}

// ContentFor : BATCH (un seul aller-retour pour les 3 tables)
func (r *PostgresContentRepo) ContentFor(ctx context.Context, userID string) ([]*domain.ContentItem, error) {
	batch := &pgx.Batch{}
	batch.Queue(queryTweetsByUser, userID)
	batch.Queue(queryRetweetsByUser, userID)
	batch.Queue(queryLikesByUser, userID)

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	var items []*domain.ContentItem
	for _, scan := range []pgx.RowToFunc[*domain.ContentItem]{scanTweet, scanReaction(domain.KindRetweet), scanReaction(domain.KindLike)} {
		rows, err := br.Query()
		if err != nil {
			return nil, fmt.Errorf("db: content for %s: %w", userID, err)
		}
		got, err := pgx.CollectRows(rows, scan)
		if err != nil {
			return nil, fmt.Errorf("db: scan content for %s: %w", userID, err)
		}
		items = append(items, got...)
	}
	return items, nil
}

// RandomSample remplace ORDER BY RANDOM() : on compte, on tire des rangs
// distincts avec la source injectée, puis on lit ces rangs en une requête.
// Count et lecture partagent le même snapshot (transaction read-only).
// Le pool est celui des tweets uniquement.
func (r *PostgresContentRepo) RandomSample(ctx context.Context, n int) ([]*domain.ContentItem, error) {
	if n <= 0 {
		return nil, nil
	}

	var items []*domain.ContentItem
	txOpts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, r.db, txOpts, func(tx pgx.Tx) error {
		var total int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM tweets`).Scan(&total); err != nil {
			return fmt.Errorf("db: count tweets: %w", err)
		}

		ranks := toRanks(sampleIndexes(r.rnd, total, n))
		if len(ranks) == 0 {
			return nil
		}

		rows, err := tx.Query(ctx, queryTweetsAtRanks, ranks)
		if err != nil {
			return fmt.Errorf("db: sample tweets: %w", err)
		}
		items, err = pgx.CollectRows(rows, scanTweet)
		if err != nil {
			return fmt.Errorf("db: scan sample: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Helpers ---

func toRanks(idx []int) []int64 {
	if len(idx) == 0 {
		return nil
	}
	out := make([]int64, len(idx))
	for i, v := range idx {
		out[i] = int64(v)
	}
	return out
}

func scanTweet(row pgx.CollectableRow) (*domain.ContentItem, error) {
	var it domain.ContentItem
	var body *string
	if err := row.Scan(&it.ID, &it.OwnerID, &body, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.Kind = domain.KindTweet
	it.TweetID = it.ID
	if body != nil {
		it.Body = *body
	}
	return &it, nil
}

func scanReaction(kind domain.ContentKind) pgx.RowToFunc[*domain.ContentItem] {
	return func(row pgx.CollectableRow) (*domain.ContentItem, error) {
		var it domain.ContentItem
		var body *string
		if err := row.Scan(&it.ID, &it.OwnerID, &it.TweetID, &body, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Kind = kind
		if body != nil {
			it.Body = *body
		}
		return &it, nil
	}
}
