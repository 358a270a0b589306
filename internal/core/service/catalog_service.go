package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
)

type CatalogService struct {
	repo ports.CatalogRepository
	log  zerolog.Logger
}

func NewCatalogService(repo ports.CatalogRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

func (s *CatalogService) List(ctx context.Context) ([]*domain.CatalogItem, error) {
	return s.repo.List(ctx)
}

// Add registers a new product. Prices must be positive.
func (s *CatalogService) Add(ctx context.Context, name string, price int64, stackable bool) (*domain.CatalogItem, error) {
	if price <= 0 {
		return nil, fmt.Errorf("add catalog item: %w", domain.ErrInvalidAmount)
	}
	item := &domain.CatalogItem{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Price:     price,
		Stackable: stackable,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.log.Error().Err(err).Msg("failed to create catalog item")
		return nil, err
	}
	s.log.Info().Str("item_id", item.ID).Str("name", item.Name).Int64("price", price).Msg("catalog item added")
	return item, nil
}
