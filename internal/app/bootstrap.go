package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/vcdash/internal/adapters/colors"
	"github.com/okian/vcdash/internal/adapters/usageapi"
	"github.com/okian/vcdash/internal/config"
	"github.com/okian/vcdash/internal/domain/weekly"
	"github.com/okian/vcdash/pkg/logger"
)

// FromConfig builds a Service whose client, palette and engine follow cfg.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	oow, err := weekly.ParseOutOfWindowPolicy(cfg.OutOfWindow)
	if err != nil {
		return nil, err
	}
	dup, err := weekly.ParseDuplicatePolicy(cfg.Duplicates)
	if err != nil {
		return nil, err
	}

	palette, err := colors.Load(ctx, cfg.ColorConfigPath)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "channel colors loaded",
		logger.String("path", cfg.ColorConfigPath),
		logger.Int("colors", palette.Len()),
	)

	clientOpts := []usageapi.Option{
		usageapi.WithBaseURL(cfg.UpstreamBaseURL),
		usageapi.WithTimeout(cfg.UpstreamTimeout()),
		usageapi.WithCache(cfg.CacheSize, cfg.CacheTTL()),
		usageapi.WithLogger(log),
	}
	var extra []Option
	switch {
	case cfg.CacheTTLSeconds == 0 || (cfg.CacheSize == 0 && cfg.CacheBackend == config.CacheMemory):
		log.Info(ctx, "upstream response cache disabled",
			logger.String("backend", cfg.CacheBackend),
			logger.Int("size", cfg.CacheSize),
			logger.Int("ttlSeconds", cfg.CacheTTLSeconds),
		)
	case cfg.CacheBackend == config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		shared := usageapi.NewRedisCache(rdb, cfg.CacheTTL(), cfg.RedisKeyPrefix).
			OnError(func(err error) {
				log.Warn(ctx, "redis cache unavailable", logger.Error(err))
			})
		clientOpts = append(clientOpts, usageapi.WithResponseCache(shared))
		extra = append(extra, WithCloser(rdb))
		log.Info(ctx, "using redis response cache",
			logger.String("addr", cfg.RedisAddr),
			logger.String("prefix", cfg.RedisKeyPrefix),
		)
	}
	client := usageapi.New(clientOpts...)
	engine := weekly.New(
		weekly.WithLocation(loc),
		weekly.WithColors(palette),
		weekly.WithFallbackColor(cfg.FallbackColor),
		weekly.WithOutOfWindow(oow),
		weekly.WithDuplicates(dup),
	)

	opts := append([]Option{
		WithSource(client),
		WithEngine(engine),
		WithRefreshInterval(cfg.RefreshInterval()),
		WithLogger(log),
	}, extra...)
	return New(opts...), nil
}
