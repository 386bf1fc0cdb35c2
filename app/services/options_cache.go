package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
)

var optionsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "options_cache_lookups_total",
		Help: "Option list cache lookups partitioned by result",
	},
	[]string{"result"},
)

// maxConcurrentOptionFetches bounds the parallel option requests of one schema
const maxConcurrentOptionFetches = 4

// OptionsProvider resolves option lists of api-sourced fields
type OptionsProvider interface {
	Options(ctx context.Context, endpoint string) ([]string, error)
	Resolve(ctx context.Context, params []models.ParameterDefinition) ([]models.ParameterDefinition, error)
}

// OptionsCache serves option lists from redis, falling back to the remote data service.
// A nil redis client disables caching.
type OptionsCache struct {
	rc     *redis.Client
	remote RemoteDataClient
	prefix string
	ttl    time.Duration
}

// NewOptionsCache creates an options provider
func NewOptionsCache(rc *redis.Client, remote RemoteDataClient, prefix string, ttl time.Duration) *OptionsCache {
	return &OptionsCache{rc: rc, remote: remote, prefix: prefix, ttl: ttl}
}

func (c *OptionsCache) key(endpoint string) string {
	return c.prefix + utils.OptionsCacheKeyPrefix + endpoint
}

// Options returns the option list behind endpoint
func (c *OptionsCache) Options(ctx context.Context, endpoint string) ([]string, error) {
	if c.rc != nil {
		bs, err := c.rc.Get(ctx, c.key(endpoint)).Bytes()
		switch {
		case err == nil:
			var cached []string
			if jsonErr := json.Unmarshal(bs, &cached); jsonErr == nil {
				optionsCacheTotal.WithLabelValues("hit").Inc()
				return cached, nil
			}
		case !errors.Is(err, redis.Nil):
			log.Printf("options cache: redis get failed for %s: %v", endpoint, err)
		}
		optionsCacheTotal.WithLabelValues("miss").Inc()
	}

	options, err := c.remote.FetchOptions(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if c.rc != nil {
		if bs, err := json.Marshal(options); err == nil {
			if err := c.rc.Set(ctx, c.key(endpoint), bs, c.ttl).Err(); err != nil {
				log.Printf("options cache: redis set failed for %s: %v", endpoint, err)
			}
		}
	}
	return options, nil
}

// Resolve returns a copy of params with the options of every api-sourced field filled in.
// Fields are fetched concurrently; the first failure aborts the rest.
func (c *OptionsCache) Resolve(ctx context.Context, params []models.ParameterDefinition) ([]models.ParameterDefinition, error) {
	resolved := append([]models.ParameterDefinition(nil), params...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOptionFetches)
	for i := range resolved {
		p := resolved[i]
		if !p.IsRemote() || !p.Type.NeedsOptions() {
			continue
		}
		g.Go(func() error {
			options, err := c.Options(gctx, p.APIEndpoint)
			if err != nil {
				return err
			}
			resolved[i].Options = models.OptionList(options)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}
