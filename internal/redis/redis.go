package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

// TimingsKey holds the single cached timings record.
const TimingsKey = "athan:timings:current"

// NewClient connects to Redis and verifies the connection, retrying while the
// server comes up.
func NewClient(ctx context.Context, address, username, password string) (*redis.Client, error) {
	const maxRetries = 5
	const retryInterval = time.Second

	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			log.Info().Str("address", address).Msg("connected to redis")
			return rdb, nil
		}
		log.Error().Err(err).Int("attempt", attempt).Msgf("failed to connect to redis, retrying in %s", retryInterval)

		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	rdb.Close()
	return nil, fmt.Errorf("could not connect to redis after %d attempts: %w", maxRetries, err)
}

// TimingsStore keeps the cached record as one JSON value, so every write
// replaces it atomically.
type TimingsStore struct {
	client *redis.Client
	key    string
}

var _ timings.Store = (*TimingsStore)(nil)

func NewTimingsStore(client *redis.Client) *TimingsStore {
	return &TimingsStore{client: client, key: TimingsKey}
}

func (s *TimingsStore) Load(ctx context.Context) (*model.StoredTimings, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load timings: %w", err)
	}

	var st model.StoredTimings
	if err := json.Unmarshal(data, &st); err != nil {
		// an unreadable record is treated as absent
		log.Warn().Err(err).Str("key", s.key).Msg("discarding unreadable cached timings")
		return nil, nil
	}
	return &st, nil
}

func (s *TimingsStore) Save(ctx context.Context, st model.StoredTimings) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode timings: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("failed to save timings to redis")
		return fmt.Errorf("failed to save timings: %w", err)
	}
	return nil
}

func (s *TimingsStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear timings: %w", err)
	}
	return nil
}
