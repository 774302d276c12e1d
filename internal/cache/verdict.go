package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

const verdictKeyPrefix = "verdict:"

// Store is the byte-level cache VerdictCache sits on
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// VerdictCache remembers analyzer verdicts for identical frames. Clients that
// resend an unchanged frame within the TTL get the earlier verdict without a
// second analyzer call.
type VerdictCache struct {
	store Store
	ttl   time.Duration
}

// NewVerdictCache creates a verdict cache. A non-positive ttl disables caching.
func NewVerdictCache(store Store, ttl time.Duration) *VerdictCache {
	return &VerdictCache{store: store, ttl: ttl}
}

// VerdictKey derives the cache key for a frame, its transcript and the
// liveness label it was analyzed under.
func VerdictKey(frame []byte, transcript, label string) string {
	h := sha256.New()
	h.Write(frame)
	h.Write([]byte{0})
	h.Write([]byte(transcript))
	h.Write([]byte{0})
	h.Write([]byte(label))
	return verdictKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached verdict, or ok=false on a miss
func (c *VerdictCache) Get(ctx context.Context, key string) (*domain.Verdict, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}

	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) || errors.Is(err, ErrCacheExpired) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var v domain.Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("decode cached verdict: %w", err)
	}

	return &v, true, nil
}

// Set stores a verdict under key
func (c *VerdictCache) Set(ctx context.Context, key string, v *domain.Verdict) error {
	if c.ttl <= 0 || v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}

	return c.store.Set(ctx, key, raw, c.ttl)
}
