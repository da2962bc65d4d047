package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/config"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
)

const (
	forecastReportKeyPrefix = "forecast:report"
	forecastScanBatchSize   = 100

	filterKeyPrefix   = "filter:"
	snapshotKeyPrefix = "snapshot:"

	defaultFilterTTL   = 5 * time.Minute
	defaultSnapshotTTL = time.Hour
)

// ForecastCache stores finished forecast reports. Keys come from
// FilterKey or SnapshotKey so one store serves both lookups.
type ForecastCache interface {
	GetReport(ctx context.Context, key string) (*domain.ForecastReport, bool, error)
	SetReport(ctx context.Context, key string, report *domain.ForecastReport) error
	InvalidateAll(ctx context.Context) error
}

// redisForecastCache keeps filter reports briefly, since the rows behind a
// filter change with every import, and snapshot reports longer, since their
// key is a hash of the full input.
type redisForecastCache struct {
	client      *redis.Client
	filterTTL   time.Duration
	snapshotTTL time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newRedisForecastCache(client, cfg), nil
}

func newRedisForecastCache(client *redis.Client, cfg config.CacheConfig) *redisForecastCache {
	return &redisForecastCache{
		client:      client,
		filterTTL:   secondsOr(cfg.ForecastTTLSeconds, defaultFilterTTL),
		snapshotTTL: secondsOr(cfg.SnapshotTTLSeconds, defaultSnapshotTTL),
	}
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// redisOptions prefers REDIS_URL and falls back to host and port.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetReport(ctx context.Context, key string) (*domain.ForecastReport, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastReportKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.ForecastReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode forecast report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisForecastCache) SetReport(ctx context.Context, key string, report *domain.ForecastReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode forecast report cache: %w", err)
	}

	if err := c.client.Set(ctx, buildForecastReportKey(key), payload, c.ttlFor(key)).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) ttlFor(key string) time.Duration {
	if strings.HasPrefix(key, snapshotKeyPrefix) {
		return c.snapshotTTL
	}
	return c.filterTTL
}

// InvalidateAll unlinks every report key, scanning in batches.
func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	pattern := forecastReportKeyPrefix + ":*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, forecastScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis unlink failed: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (n *noopForecastCache) GetReport(ctx context.Context, key string) (*domain.ForecastReport, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetReport(ctx context.Context, key string, report *domain.ForecastReport) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastReportKey(key string) string {
	return fmt.Sprintf("%s:%s", forecastReportKeyPrefix, key)
}

// SnapshotKey namespaces a content hash of an inline snapshot.
func SnapshotKey(hash string) string {
	return snapshotKeyPrefix + hash
}

// FilterKey hashes a repository filter into a stable cache key.
func FilterKey(filter domain.ForecastFilter) string {
	return filterKeyPrefix + forecastFilterHash(filter)
}

func forecastFilterHash(filter domain.ForecastFilter) string {
	parts := []string{}

	if filter.WarehouseID != nil {
		parts = append(parts, fmt.Sprintf("warehouse_id=%d", *filter.WarehouseID))
	}
	if filter.Since != nil {
		parts = append(parts, "since="+filter.Since.UTC().Format("2006-01-02"))
	}
	if filter.AsOf != nil {
		parts = append(parts, "as_of="+filter.AsOf.UTC().Format("2006-01-02"))
	}
	if filter.TopN > 0 {
		parts = append(parts, fmt.Sprintf("top_n=%d", filter.TopN))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
