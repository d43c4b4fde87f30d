package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nightbite/internal/config"
	"nightbite/internal/logging"
	"nightbite/internal/resolver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		endpoint  string
		timeout   time.Duration
		redisAddr string
		cacheTTL  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "resolve <query>...",
		Short: "Resolve a restaurant search phrase into a structured intent",
		Long: `resolve posts each query to the search-intent endpoint and prints the
resulting intent as JSON, one object per line. When the endpoint cannot be
reached the local heuristic extractor answers instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if !cmd.Flags().Changed("endpoint") {
				endpoint = cfg.Resolver.Endpoint
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = cfg.Resolver.Timeout
			}
			if !cmd.Flags().Changed("redis") {
				redisAddr = cfg.Resolver.RedisAddr
			}
			if !cmd.Flags().Changed("cache-ttl") {
				cacheTTL = cfg.Resolver.CacheTTL
			}

			var cache resolver.Cache
			if redisAddr != "" {
				client := redis.NewClient(&redis.Options{Addr: redisAddr})
				defer client.Close()
				cache = resolver.NewRedisCache(client, cacheTTL, logger)
				logger.Debug("using redis cache", zap.String("addr", redisAddr))
			} else {
				lruCache, err := resolver.NewLRUCache(cfg.Resolver.CacheSize)
				if err != nil {
					return err
				}
				cache = lruCache
			}

			r, err := resolver.New(endpoint, &http.Client{Timeout: timeout}, cache, logger)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, query := range args {
				intent := r.Resolve(cmd.Context(), query)
				if err := enc.Encode(intent); err != nil {
					return fmt.Errorf("failed to write intent: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", config.DefaultEndpoint, "search-intent endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "request timeout")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for a shared cache (host:port)")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 0, "redis cache entry lifetime, 0 keeps entries forever")

	return cmd
}
