package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/church-agenda/agenda-client/config"
	"github.com/church-agenda/agenda-client/internal/adapters/filestore"
	"github.com/church-agenda/agenda-client/internal/adapters/memory"
	redisadapter "github.com/church-agenda/agenda-client/internal/adapters/redis"
	"github.com/church-agenda/agenda-client/internal/ports"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// Storage is the persisted key-value backend plus its release hook.
type Storage struct {
	KV      ports.KVStore
	Backend config.StorageBackend
	// Location describes where state lives, without credentials.
	Location string
	close    func() error
}

// Close releases connections held by the backend.
func (s *Storage) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// BuildStorage opens the configured backend.
func BuildStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case config.StorageBackendMemory:
		return &Storage{KV: memory.NewStore(), Backend: cfg.Backend, Location: "memory"}, nil

	case config.StorageBackendRedis:
		client, desc, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return &Storage{
			KV:       redisadapter.NewKVStoreWithPrefix(client, cfg.KeyPrefix),
			Backend:  cfg.Backend,
			Location: desc,
			close:    client.Close,
		}, nil

	case config.StorageBackendFile, "":
		store, err := filestore.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open state file: %w", err)
		}
		return &Storage{KV: store, Backend: config.StorageBackendFile, Location: store.Path()}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ConnectRedis establishes a connection to Redis and returns it with a
// credential-free description of the target.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single, sentinel, or cluster clients at runtime.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, string, error) {
	opts, desc, err := redisOptions(cfg)
	if err != nil {
		return nil, "", err
	}
	var client redis.UniversalClient
	switch {
	case cfg.UseCluster:
		client = redis.NewClusterClient(opts.Cluster())
	case cfg.UseSentinel:
		client = redis.NewFailoverClient(opts.Failover())
	default:
		client = redis.NewClient(opts.Simple())
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, "", fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", desc)
	}
	return client, desc, nil
}

// redisOptions maps RedisConfig onto UniversalOptions. A redis:// or rediss://
// URI is parsed for credentials, database and TLS.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	opts := &redis.UniversalOptions{Password: cfg.Password, DB: cfg.DB}

	switch {
	case cfg.UseCluster:
		opts.Addrs = normalizeAddrs(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 {
			if err := applyURI(opts, cfg.URI); err != nil {
				return nil, "", err
			}
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis cluster configuration requires at least one address")
		}
		opts.DB = 0
		return opts, "cluster:" + strings.Join(opts.Addrs, ","), nil

	case cfg.UseSentinel:
		opts.Addrs = normalizeAddrs(cfg.SentinelNodes)
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		opts.MasterName = cfg.SentinelMasterName
		opts.SentinelPassword = cfg.SentinelPassword
		return opts, "sentinel:" + cfg.SentinelMasterName, nil

	default:
		if err := applyURI(opts, cfg.URI); err != nil {
			return nil, "", err
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis direct configuration requires a URI")
		}
		return opts, opts.Addrs[0], nil
	}
}

func applyURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	if !isRedisURL(uri) {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	opts.DB = parsed.DB
	opts.TLSConfig = parsed.TLSConfig
	return nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}
