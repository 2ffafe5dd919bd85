package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nkiryanov/crownplay/internal/cache"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

const DefaultTTL = 60 * time.Second

const (
	keyPackages   = "catalog:packages"
	keyGames      = "catalog:games"
	keyPromotions = "catalog:promotions"
)

// Read only catalog. Lists are cached when cache is set; cache failures fall back to storage
type CatalogService struct {
	storage repository.Storage
	cache   cache.Cache
	ttl     time.Duration
	logger  logger.Logger
	now     func() time.Time
}

func NewService(storage repository.Storage, c cache.Cache, ttl time.Duration, l logger.Logger) *CatalogService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &CatalogService{
		storage: storage,
		cache:   c,
		ttl:     ttl,
		logger:  l,
		now:     time.Now,
	}
}

// Active packages, cheapest first
func (s *CatalogService) Packages(ctx context.Context) ([]models.Package, error) {
	return cached(ctx, s, keyPackages, func() ([]models.Package, error) {
		return s.storage.Catalog().ListActivePackages(ctx)
	})
}

func (s *CatalogService) Games(ctx context.Context) ([]models.Game, error) {
	return cached(ctx, s, keyGames, func() ([]models.Game, error) {
		return s.storage.Catalog().ListActiveGames(ctx)
	})
}

// Promotions running now. Cache TTL bounds how late a window change shows up
func (s *CatalogService) Promotions(ctx context.Context) ([]models.Promotion, error) {
	return cached(ctx, s, keyPromotions, func() ([]models.Promotion, error) {
		return s.storage.Catalog().ListActivePromotions(ctx, s.now())
	})
}

func cached[T any](ctx context.Context, s *CatalogService, key string, load func() ([]T, error)) ([]T, error) {
	if s.cache == nil {
		return load()
	}

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		s.logger.Warn("Broken cache entry", "key", key)
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("Cache unavailable", "key", key, "error", err)
	}

	items, err := load()
	if err != nil {
		return nil, err
	}

	raw, err = json.Marshal(items)
	if err == nil {
		err = s.cache.Set(ctx, key, raw, s.ttl)
	}
	if err != nil {
		s.logger.Warn("Cache not updated", "key", key, "error", err)
	}

	return items, nil
}
