package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

var keyPrefix = domain.KeyPrefix + "quota:"

// admitScript reads the counter, rejects at the limit, otherwise increments it.
// KEYS[1] = counter key, ARGV[1] = limit, ARGV[2] = window seconds (0 = lifetime).
// Reply: {allowed (0|1), count after the decision}.
const admitScript = `
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if count >= limit then
  return {0, count}
end
count = redis.call('INCR', KEYS[1])
local window = tonumber(ARGV[2])
if window > 0 and redis.call('TTL', KEYS[1]) < 0 then
  redis.call('EXPIRE', KEYS[1], window)
end
return {1, count}
`

// store is the consumer interface for quota counters (ISP).
type store interface {
	EvalInt64s(ctx context.Context, script string, keys, args []string) ([]int64, error)
}

// Store keeps per-identity request counters.
// Check and increment run as one server-side script, so concurrent
// requests for the same identity can never both take the last slot.
type Store struct {
	store  store
	window time.Duration
}

// New creates a quota store. A zero window means the counter never resets.
func New(s store, window time.Duration) *Store {
	return &Store{store: s, window: window}
}

// Admit consumes one request from the identity's quota if it is below limit.
// It returns whether the request was admitted and the counter value afterwards.
func (s *Store) Admit(ctx context.Context, identity string, limit int64) (bool, int64, error) {
	key := Key(identity)
	args := []string{
		strconv.FormatInt(limit, 10),
		strconv.FormatInt(int64(s.window/time.Second), 10),
	}

	reply, err := s.store.EvalInt64s(ctx, admitScript, []string{key}, args)
	if err != nil {
		return false, 0, fmt.Errorf("quota admit %s: %w", key, err)
	}
	if len(reply) != 2 {
		return false, 0, fmt.Errorf("quota admit %s: unexpected reply length %d", key, len(reply))
	}

	return reply[0] == 1, reply[1], nil
}

// Key returns the counter key of an identity.
func Key(identity string) string {
	return keyPrefix + identity
}
