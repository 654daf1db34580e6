package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petresgate/feedcore/domain"
)

const (
	KeyFeedSnapshot = "feed:snapshot"

	DefaultTTL = 30 * time.Minute
)

// RedisStore retains the snapshot in redis, for deployments where the
// core runs headless and the snapshot should outlive the process.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ domain.SnapshotStore = (*RedisStore)(nil)

// NewRedisStore creates a redis-backed snapshot store. ttl <= 0 selects
// DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context) ([]domain.Publication, error) {
	data, err := s.client.Get(ctx, KeyFeedSnapshot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSnapshotMiss
	} else if err != nil {
		return nil, err
	}
	var res []domain.Publication
	if err = json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *RedisStore) Set(ctx context.Context, pubs []domain.Publication) error {
	data, err := json.Marshal(pubs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, KeyFeedSnapshot, data, s.ttl).Err()
}
