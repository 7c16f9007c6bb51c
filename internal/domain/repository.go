package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations. Values are
// opaque encoded payloads; callers own the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// MatchRepository persists match records produced by a batch run.
type MatchRepository interface {
	SaveMatches(ctx context.Context, runID string, records []MatchRecord) error
	// ProcessedCompetitors lists competitors that already have records for the
	// given country and day.
	ProcessedCompetitors(ctx context.Context, country string, date time.Time) ([]string, error)
	ListMatches(ctx context.Context, country string, date time.Time) ([]MatchRecord, error)
}
