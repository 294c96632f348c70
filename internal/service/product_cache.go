package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	productCacheTTL = 10 * time.Minute
	// generation keys only guard in-flight fills, so they can expire long
	// after the entries they protect
	productGenTTL = time.Hour
)

// errStaleFill aborts a cache fill that raced with an invalidation.
var errStaleFill = errors.New("product changed while loading")

// productCache keeps product detail responses (stock levels and their
// warehouses included) in Redis. A nil client turns every method into a
// no-op. Cache failures are never surfaced to callers.
//
// Each product has a generation counter bumped by invalidate. Readers take
// the generation before loading from the database and fill the cache only
// if it is unchanged, so a response read before a concurrent write is never
// stored after that write invalidated the entry.
type productCache struct{ rdb *redis.Client }

func productCacheKey(id uuid.UUID) string { return "product:" + id.String() }
func productGenKey(id uuid.UUID) string   { return "product:" + id.String() + ":gen" }

func (c productCache) get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, bool) {
	if c.rdb == nil {
		return nil, false
	}
	cached, err := c.rdb.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.ProductResponse
	if err := json.Unmarshal(cached, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// generation returns the current generation of id; "" when none exists yet.
func (c productCache) generation(ctx context.Context, id uuid.UUID) string {
	if c.rdb == nil {
		return ""
	}
	gen, err := c.rdb.Get(ctx, productGenKey(id)).Result()
	if err != nil {
		return ""
	}
	return gen
}

// set stores resp unless the product's generation moved past gen.
func (c productCache) set(ctx context.Context, id uuid.UUID, resp *dto.ProductResponse, gen string) {
	if c.rdb == nil {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	genKey := productGenKey(id)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, productCacheKey(id), b, productCacheTTL)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		log.Debug().Str("product_id", id.String()).Msg("product cache: fill skipped, product changed")
	default:
		log.Debug().Err(err).Str("product_id", id.String()).Msg("product cache: set failed")
	}
}

func (c productCache) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if c.rdb == nil || len(ids) == 0 {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, id := range ids {
			p.Incr(ctx, productGenKey(id))
			p.Expire(ctx, productGenKey(id), productGenTTL)
			p.Del(ctx, productCacheKey(id))
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("products", len(ids)).Msg("product cache: invalidate failed")
	}
}
