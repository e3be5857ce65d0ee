package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"portfolio-admin-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const challengePrefix = "otp:challenge:"

// challengeGrace keeps an expired challenge around long enough to answer
// "expired" rather than "not found".
const challengeGrace = 10 * time.Minute

type challengeStore struct {
	client *goredis.Client
	now    func() time.Time
}

func NewChallengeStore(client *goredis.Client) domain.ChallengeStore {
	return &challengeStore{client: client, now: time.Now}
}

func (s *challengeStore) Save(ctx context.Context, challenge *domain.OTPChallenge) error {
	b, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	ttl := challenge.ExpiresAt.Sub(s.now()) + challengeGrace
	if ttl <= 0 {
		ttl = challengeGrace
	}
	return s.client.Set(ctx, challengePrefix+challenge.ID, b, ttl).Err()
}

func (s *challengeStore) Get(ctx context.Context, id string) (*domain.OTPChallenge, error) {
	b, err := s.client.Get(ctx, challengePrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c domain.OTPChallenge
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *challengeStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, challengePrefix+id).Err()
}
