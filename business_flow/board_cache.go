package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/amirphl/orochi-admin/config"
	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
	"github.com/redis/go-redis/v9"
)

// redisKey namespaces a cache key with the configured prefix
func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}

// BoardCache keeps the unfiltered campaign list in redis between board reads.
// Any campaign mutation invalidates it. A nil client disables caching.
type BoardCache struct {
	rc  *redis.Client
	key string
	ttl time.Duration
}

// NewBoardCache creates the board cache
func NewBoardCache(rc *redis.Client, cfg config.CacheConfig) *BoardCache {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &BoardCache{rc: rc, key: redisKey(cfg, utils.CampaignBoardCacheKey), ttl: ttl}
}

// Get returns the cached records; ok is false on a miss or when caching is off
func (b *BoardCache) Get(ctx context.Context) ([]*models.Campaign, bool) {
	if b == nil || b.rc == nil {
		return nil, false
	}
	bs, err := b.rc.Get(ctx, b.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("board cache: get failed: %v", err)
		}
		return nil, false
	}
	var records []*models.Campaign
	if err := json.Unmarshal(bs, &records); err != nil {
		log.Printf("board cache: dropping undecodable entry: %v", err)
		return nil, false
	}
	return records, true
}

// Set stores the records
func (b *BoardCache) Set(ctx context.Context, records []*models.Campaign) {
	if b == nil || b.rc == nil {
		return
	}
	bs, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := b.rc.Set(ctx, b.key, bs, b.ttl).Err(); err != nil {
		log.Printf("board cache: set failed: %v", err)
	}
}

// Invalidate drops the cached records
func (b *BoardCache) Invalidate(ctx context.Context) {
	if b == nil || b.rc == nil {
		return
	}
	if err := b.rc.Del(ctx, b.key).Err(); err != nil {
		log.Printf("board cache: invalidate failed: %v", err)
	}
}
