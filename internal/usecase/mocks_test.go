package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/pricelens/skumatch/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string][]byte
	getError  error
	setError  error
	getCalled bool
	setCalled bool
	lastTTL   time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalled = true
	m.lastTTL = ttl
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockMatchRepository is a mock implementation of domain.MatchRepository
type MockMatchRepository struct {
	mu        sync.Mutex
	saved     map[string][]domain.MatchRecord
	processed []string
	saveError error
	listError error
}

func NewMockMatchRepository() *MockMatchRepository {
	return &MockMatchRepository{saved: make(map[string][]domain.MatchRecord)}
}

func (m *MockMatchRepository) SaveMatches(ctx context.Context, runID string, records []domain.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.saved[runID] = append(m.saved[runID], records...)
	return nil
}

func (m *MockMatchRepository) ProcessedCompetitors(ctx context.Context, country string, date time.Time) ([]string, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.processed, nil
}

func (m *MockMatchRepository) ListMatches(ctx context.Context, country string, date time.Time) ([]domain.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MatchRecord
	for _, records := range m.saved {
		out = append(out, records...)
	}
	return out, nil
}
