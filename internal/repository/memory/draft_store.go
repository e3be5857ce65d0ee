package memory

import (
	"context"
	"maps"
	"sync"

	"portfolio-admin-backend/internal/domain"
)

type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]map[string]string
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]map[string]string)}
}

func key(ownerID string, section domain.Section) string {
	return ownerID + "/" + string(section)
}

func (s *DraftStore) Get(_ context.Context, ownerID string, section domain.Section) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.drafts[key(ownerID, section)]
	if !ok {
		return nil, nil
	}
	return maps.Clone(values), nil
}

func (s *DraftStore) Put(_ context.Context, ownerID string, section domain.Section, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key(ownerID, section)] = maps.Clone(values)
	return nil
}

func (s *DraftStore) Delete(_ context.Context, ownerID string, section domain.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key(ownerID, section))
	return nil
}
