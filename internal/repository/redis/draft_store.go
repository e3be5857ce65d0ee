package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"portfolio-admin-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// Drafts outlive a working session but not forever.
const draftTTL = 7 * 24 * time.Hour

type draftStore struct {
	client *goredis.Client
}

func NewDraftStore(client *goredis.Client) domain.DraftStore {
	return &draftStore{client: client}
}

func draftKey(ownerID string, section domain.Section) string {
	return "draft:" + ownerID + ":" + string(section)
}

func (s *draftStore) Get(ctx context.Context, ownerID string, section domain.Section) (map[string]string, error) {
	b, err := s.client.Get(ctx, draftKey(ownerID, section)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *draftStore) Put(ctx context.Context, ownerID string, section domain.Section, values map[string]string) error {
	b, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(ownerID, section), b, draftTTL).Err()
}

func (s *draftStore) Delete(ctx context.Context, ownerID string, section domain.Section) error {
	return s.client.Del(ctx, draftKey(ownerID, section)).Err()
}
