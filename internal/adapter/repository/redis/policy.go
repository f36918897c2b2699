package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	domain "geofence-attendance/internal/domain/geofence"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	policyKey = "geofence:policy"
	// bumped on every Save; a fill is dropped when it changed underneath it
	policyGenKey = "geofence:policy:gen"
)

var errStaleFill = errors.New("policy cache: generation changed during fill")

// PolicyCache is a read-through cache in front of the policy store. Cache
// failures degrade to the underlying repository; they are never surfaced.
type PolicyCache struct {
	next domain.PolicyRepository
	rdb  *goredis.Client
	ttl  time.Duration
}

var _ domain.PolicyRepository = (*PolicyCache)(nil)

func NewPolicyCache(next domain.PolicyRepository, rdb *goredis.Client, ttl time.Duration) *PolicyCache {
	return &PolicyCache{next: next, rdb: rdb, ttl: ttl}
}

func (c *PolicyCache) Get(ctx context.Context) (*domain.Policy, error) {
	raw, err := c.rdb.Get(ctx, policyKey).Bytes()
	switch {
	case err == nil:
		var p domain.Policy
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			p.ID = domain.PolicyID
			return &p, nil
		}
		log.Warn().Str("key", policyKey).Msg("policy cache: dropping undecodable entry")
		if derr := c.rdb.Del(ctx, policyKey).Err(); derr != nil {
			log.Warn().Err(derr).Msg("policy cache: drop failed")
		}
	case errors.Is(err, goredis.Nil):
	default:
		log.Warn().Err(err).Msg("policy cache: read failed")
	}

	gen, genErr := c.generation(ctx)
	p, err := c.next.Get(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return p, nil
	}
	if err := c.fill(ctx, gen, p); err != nil && !errors.Is(err, errStaleFill) && !errors.Is(err, goredis.TxFailedErr) {
		log.Warn().Err(err).Msg("policy cache: write failed")
	}
	return p, nil
}

func (c *PolicyCache) generation(ctx context.Context) (string, error) {
	gen, err := c.rdb.Get(ctx, policyGenKey).Result()
	if errors.Is(err, goredis.Nil) {
		return "0", nil
	}
	return gen, err
}

// fill stores p only if no Save has bumped the generation since gen was read.
func (c *PolicyCache) fill(ctx context.Context, gen string, p *domain.Policy) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, policyGenKey).Result()
		switch {
		case errors.Is(err, goredis.Nil):
			cur = "0"
		case err != nil:
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, policyKey, payload, c.ttl)
			return nil
		})
		return err
	}, policyGenKey)
}

// Save writes through, drops the cached copy and bumps the generation so
// that fills started before the write are discarded.
func (c *PolicyCache) Save(ctx context.Context, p *domain.Policy) error {
	if err := c.next.Save(ctx, p); err != nil {
		return err
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, policyGenKey)
		pipe.Del(ctx, policyKey)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("policy cache: invalidate failed")
	}
	return nil
}
