package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
)

// PostgresGraphRepo lit le graphe depuis la table follows (follower_id -> followed_id)
type PostgresGraphRepo struct {
	db *pgxpool.Pool
}

func NewPostgresGraphRepo(db *pgxpool.Pool) *PostgresGraphRepo {
	return &PostgresGraphRepo{db: db}
}

func (r *PostgresGraphRepo) FollowedUsers(ctx context.Context, userID string) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM follows f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at, f.id
	`
	return r.queryUsers(ctx, query, userID)
}

func (r *PostgresGraphRepo) Followers(ctx context.Context, userID string) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = $1
		ORDER BY f.created_at, f.id
	`
	return r.queryUsers(ctx, query, userID)
}

func (r *PostgresGraphRepo) GetRelationStatus(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM follows WHERE follower_id = @actor AND followed_id = @target),
			EXISTS (SELECT 1 FROM follows WHERE follower_id = @target AND followed_id = @actor)
	`
	var st domain.RelationStatus
	err := r.db.QueryRow(ctx, query, pgx.NamedArgs{"actor": actorID, "target": targetID}).
		Scan(&st.IsFollowing, &st.IsFollowedBy)
	if err != nil {
		return nil, fmt.Errorf("db: relation status: %w", err)
	}
	return &st, nil
}

func (r *PostgresGraphRepo) queryUsers(ctx context.Context, query string, userID string) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db: query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("db: scan users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.CollectableRow) (*domain.User, error) {
	var u domain.User
	var first, last *string // colonnes nullable
	if err := row.Scan(&u.ID, &u.Username, &first, &last); err != nil {
		return nil, err
	}
	if first != nil {
		u.FirstName = *first
	}
	if last != nil {
		u.LastName = *last
	}
	return &u, nil
}
