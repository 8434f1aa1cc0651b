package services

import (
	"context"
	"log/slog"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

type IndexService struct {
	indexer ports.ContentIndexer
}

func NewIndexService(indexer ports.ContentIndexer) *IndexService {
	return &IndexService{indexer: indexer}
}

func (s *IndexService) ContentCreated(ctx context.Context, item *domain.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	slog.Debug("Indexing content", "data_id", item.DataID(), "owner_id", item.OwnerID)
	return s.indexer.IndexContent(ctx, item)
}

func (s *IndexService) ContentDeleted(ctx context.Context, item *domain.ContentItem) error {
	if err := item.ValidateRef(); err != nil {
		return err
	}
	return s.indexer.RemoveContent(ctx, item)
}
