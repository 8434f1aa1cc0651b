package services

import (
	"context"
	"errors"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

type RelationService struct {
	graph   ports.SocialGraphReader
	checker ports.RelationChecker
}

func NewRelationService(graph ports.SocialGraphReader, checker ports.RelationChecker) *RelationService {
	return &RelationService{graph: graph, checker: checker}
}

func (s *RelationService) Followers(ctx context.Context, userID string) ([]*domain.User, error) {
	users, err := s.graph.Followers(ctx, userID)
	if err != nil {
		return nil, graphUnavailable("followers", userID, err)
	}
	return users, nil
}

func (s *RelationService) FollowedUsers(ctx context.Context, userID string) ([]*domain.User, error) {
	users, err := s.graph.FollowedUsers(ctx, userID)
	if err != nil {
		return nil, graphUnavailable("followed users", userID, err)
	}
	return users, nil
}

func (s *RelationService) Relation(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error) {
	if actorID == "" || targetID == "" {
		return nil, errors.New("ids cannot be empty")
	}
	st, err := s.checker.GetRelationStatus(ctx, actorID, targetID)
	if err != nil {
		return nil, graphUnavailable("relation with "+targetID, actorID, err)
	}
	return st, nil
}
