package memory

import (
	"context"
	"sync"
	"time"

	"portfolio-admin-backend/internal/domain"
)

// ChallengeStore keeps OTP challenges in process. Expired entries are evicted
// after a grace period on every write.
type ChallengeStore struct {
	mu    sync.Mutex
	items map[string]domain.OTPChallenge
	grace time.Duration
	now   func() time.Time
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		items: make(map[string]domain.OTPChallenge),
		grace: 10 * time.Minute,
		now:   time.Now,
	}
}

func (s *ChallengeStore) Save(_ context.Context, challenge *domain.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, c := range s.items {
		if now.After(c.ExpiresAt.Add(s.grace)) {
			delete(s.items, id)
		}
	}
	s.items[challenge.ID] = *challenge
	return nil
}

func (s *ChallengeStore) Get(_ context.Context, id string) (*domain.OTPChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok || s.now().After(c.ExpiresAt.Add(s.grace)) {
		return nil, nil
	}
	return &c, nil
}

func (s *ChallengeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
