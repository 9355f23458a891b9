package service

import (
	"context"
	"sync"

	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/repository"
	"mathdojo_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CatalogService is a read-through cache over the seeded fact catalog.
// Entries never change after seeding, so the cache is warmed once at startup
// and healed on miss; concurrent misses for the same slot are collapsed with
// singleflight so they don't thrash the store.
type CatalogService struct {
	FactRepo *repository.FactRepository

	mu    sync.RWMutex
	cache map[string]model.FactPair
	group singleflight.Group
}

func NewCatalogService(factRepo *repository.FactRepository) *CatalogService {
	return &CatalogService{
		FactRepo: factRepo,
		cache:    make(map[string]model.FactPair),
	}
}

// Get returns the canonical pair for a slot, or (nil, nil) when the slot has
// no seeded fact. Callers must treat absence as "skip this source".
func (s *CatalogService) Get(op model.Operation, level int, belt model.Belt) (*model.FactPair, error) {
	key := model.FactKey(op, level, belt)

	s.mu.RLock()
	if fact, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		f := fact
		return &f, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		fact, err := s.FactRepo.FindBySlot(op, level, belt)
		if err != nil {
			return nil, err
		}
		if fact != nil {
			s.mu.Lock()
			s.cache[key] = *fact
			s.mu.Unlock()
		}
		return fact, nil
	})
	if err != nil {
		return nil, err
	}
	fact, _ := v.(*model.FactPair)
	return fact, nil
}

// Warm loads the whole catalog into the cache. Races with concurrent heals
// are harmless: the data is idempotent, last writer wins.
func (s *CatalogService) Warm(ctx context.Context) error {
	facts, err := s.FactRepo.FindAll()
	if err != nil {
		return err
	}

	fresh := make(map[string]model.FactPair, len(facts))
	for _, f := range facts {
		fresh[f.Key()] = f
	}

	s.mu.Lock()
	s.cache = fresh
	s.mu.Unlock()

	logger.Log.Info("fact catalog warmed", zap.Int("entries", len(fresh)))
	return nil
}

// Invalidate empties the cache; the next reads heal from the store.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]model.FactPair)
	s.mu.Unlock()
}
