package storage

import (
	"context"
	"sync"
	"time"

	"crop-breed-bot/internal/domain/entity"
	"crop-breed-bot/internal/domain/port"
)

// MemoryResultStore держит результаты ровно столько, чтобы их успели скачать.
type MemoryResultStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	results map[string]*entity.BreedResult
}

// NewMemoryResultStore создаёт хранилище с временем жизни записей ttl
func NewMemoryResultStore(ttl time.Duration) *MemoryResultStore {
	return &MemoryResultStore{
		ttl:     ttl,
		now:     time.Now,
		results: make(map[string]*entity.BreedResult),
	}
}

// Save сохраняет результат и заодно выбрасывает устаревшие
func (s *MemoryResultStore) Save(ctx context.Context, result *entity.BreedResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, r := range s.results {
		if s.expired(r, now) {
			delete(s.results, id)
		}
	}

	stored := *result
	s.results[result.ID] = &stored
	return nil
}

// Get возвращает результат по ID
func (s *MemoryResultStore) Get(ctx context.Context, id string) (*entity.BreedResult, error) {
	s.mu.RLock()
	r, ok := s.results[id]
	s.mu.RUnlock()

	if !ok || s.expired(r, s.now()) {
		return nil, port.ErrResultNotFound
	}

	out := *r
	return &out, nil
}

// Len возвращает число записей, включая ещё не вычищенные устаревшие
func (s *MemoryResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

func (s *MemoryResultStore) expired(r *entity.BreedResult, now time.Time) bool {
	return s.ttl > 0 && now.Sub(r.CreatedAt) > s.ttl
}

var _ port.ResultStore = (*MemoryResultStore)(nil)
