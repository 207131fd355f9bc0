package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// ErrUnsupportedVersion is returned for entries written in an unknown layout.
var ErrUnsupportedVersion = errors.New("unsupported cache entry version")

// store is the consumer interface for the query cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store persists assembled result lists as JSON under precomputed keys.
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a query cache store. Every entry expires after ttl.
func New(s store, ttl time.Duration) *Store {
	return &Store{store: s, ttl: ttl}
}

// Get returns the cached results for key. found is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (results []result.Result, found bool, err error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("qcache get %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, fmt.Errorf("qcache decode %s: %w", key, err)
	}
	if env.V != envelopeVersion {
		return nil, false, fmt.Errorf("qcache decode %s: %w: %d", key, ErrUnsupportedVersion, env.V)
	}

	return env.toDomain(), true, nil
}

// Put stores results under key with the configured TTL.
func (s *Store) Put(ctx context.Context, key string, results []result.Result) error {
	data, err := json.Marshal(toDTO(results))
	if err != nil {
		return fmt.Errorf("qcache encode: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("qcache set %s: %w", key, err)
	}
	return nil
}
