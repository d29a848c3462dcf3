package redis

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	stackmate "github.com/Anthonyushie/Stackmate-sub000"
)

// LogStore provides Redis-based persistence for the recent-transaction log.
// It implements the stackmate.LogStore interface.
//
// The whole list lives under one key as a JSON array. The list is capped at
// ten records by TxLog, so reading and writing the full blob is cheaper than
// per-record keys and keeps the layout identical to the web client's
// local-storage blob.
type LogStore struct {
	client    redis.UniversalClient
	keyPrefix string
	namespace string
}

// LogStoreOption configures a LogStore.
type LogStoreOption func(*LogStore)

// WithLogStoreKeyPrefix sets a custom prefix for the Redis key.
func WithLogStoreKeyPrefix(prefix string) LogStoreOption {
	return func(s *LogStore) {
		s.keyPrefix = prefix
	}
}

// WithLogStoreNamespace replaces the default storage namespace.
func WithLogStoreNamespace(namespace string) LogStoreOption {
	return func(s *LogStore) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// NewLogStore creates a new Redis-based transaction log store.
func NewLogStore(client redis.UniversalClient, opts ...LogStoreOption) *LogStore {
	s := &LogStore{
		client:    client,
		namespace: stackmate.DefaultStorageNamespace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// key returns the full Redis key with optional prefix.
func (s *LogStore) key() string {
	if s.keyPrefix != "" {
		return s.keyPrefix + ":" + s.namespace
	}
	return s.namespace
}

// Save replaces the persisted list with records. An empty list deletes the
// key rather than storing an empty array.
func (s *LogStore) Save(ctx context.Context, records []stackmate.TxRecord) error {
	if len(records) == 0 {
		if err := s.client.Del(ctx, s.key()).Err(); err != nil {
			return fmt.Errorf("failed to clear transaction log: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to serialize transaction log: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save transaction log: %w", err)
	}
	return nil
}

// Load returns the persisted list. A missing key is an empty log, not an
// error.
func (s *LogStore) Load(ctx context.Context) ([]stackmate.TxRecord, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction log: %w", err)
	}

	var records []stackmate.TxRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction log: %w", err)
	}
	return records, nil
}

// Verify LogStore implements stackmate.LogStore
var _ stackmate.LogStore = (*LogStore)(nil)
