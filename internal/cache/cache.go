package cache

import (
	"context"
	"time"

	"nexuspos/internal/domain"
)

// LookupCache holds recent candidate-product search results keyed by the
// normalized search term. It is advisory only: commit-time checks against
// the repository remain authoritative, so short TTLs are fine and
// invalidation is unnecessary.
type LookupCache interface {
	Get(ctx context.Context, key string) ([]domain.Product, bool, error)
	Set(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error
}

type NoopLookupCache struct{}

func (NoopLookupCache) Get(_ context.Context, _ string) ([]domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopLookupCache) Set(_ context.Context, _ string, _ []domain.Product, _ time.Duration) error {
	return nil
}
