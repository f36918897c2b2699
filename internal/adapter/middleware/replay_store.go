package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	geoid "geofence-attendance/pkg/id"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "idemp:geofence:"

var (
	errReplayMissing = errors.New("idempotency: entry expired")
	errReplayCorrupt = errors.New("idempotency: undecodable entry")
)

// replayEntry is what the store keeps per (route, user, request id). While
// the first attempt runs only Pending and BodySHA256 are set.
type replayEntry struct {
	Pending    bool      `json:"pending"`
	Status     int       `json:"status,omitempty"`
	Body       []byte    `json:"body,omitempty"`
	BodySHA256 string    `json:"body_sha256"`
	StoredAt   time.Time `json:"stored_at"`
}

func (e replayEntry) replayable() bool { return !e.Pending && e.Status != 0 && len(e.Body) > 0 }

// replayStore keeps submission outcomes in redis.
type replayStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func replayKey(method, route, userID, requestID string) string {
	return replayKeyPrefix + strings.ToLower(method) + ":" + route + ":" + userID + ":" + requestID
}

func bodyDigest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// validRequestID accepts the service's own 32-hex ids and canonical
// lowercase UUIDs. Case is significant: the id is part of the store key.
func validRequestID(s string) bool {
	if geoid.IsID32(s) {
		return true
	}
	u, err := uuid.Parse(s)
	return err == nil && u.String() == s
}

// reserve claims key for a first attempt. false means the key already exists.
func (s *replayStore) reserve(ctx context.Context, key, digest string) (bool, error) {
	payload, err := json.Marshal(replayEntry{Pending: true, BodySHA256: digest, StoredAt: time.Now().UTC()})
	if err != nil {
		return false, fmt.Errorf("idempotency: encode entry: %w", err)
	}
	return s.rdb.SetNX(ctx, key, payload, s.lockTTL).Result()
}

func (s *replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, errReplayMissing
	}
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return replayEntry{}, fmt.Errorf("%w: %v", errReplayCorrupt, err)
	}
	return e, nil
}

// complete replaces the pending entry with the final response.
func (s *replayStore) complete(ctx context.Context, key string, e replayEntry) error {
	e.Pending = false
	e.StoredAt = time.Now().UTC()
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("idempotency: encode entry: %w", err)
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
