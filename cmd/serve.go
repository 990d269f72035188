package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo-api.com/todo-api/internal/cache"
	config "todo-api.com/todo-api/internal/configs"
	httpapi "todo-api.com/todo-api/internal/http"
	middleware "todo-api.com/todo-api/internal/http/middlewares"
	repository "todo-api.com/todo-api/internal/repositories"
	"todo-api.com/todo-api/internal/services"
)

var serveOpts struct {
	configPath string
	addr       string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Migrates the todos table and serves the todo HTTP API until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveOpts.configPath)
		if err != nil {
			return err
		}

		database, err := config.NewDatabaseClient(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := config.CloseDatabase(database); err != nil {
				log.Printf("failed to close database: %v", err)
			}
		}()

		if err := config.Migrate(database); err != nil {
			return err
		}

		todoRepo := repository.NewTodoRepository(database)

		var (
			todoCache    services.TodoCache
			limiterStore middleware.LimiterStore = middleware.NewMemoryLimiterStore()
		)
		if cfg.RedisEnabled {
			redisClient, err := config.NewRedisClient(cfg.RedisAddr())
			if err != nil {
				return err
			}
			defer redisClient.Close()

			ttl := time.Duration(cfg.RedisCacheTTLSeconds) * time.Second
			todoCache = cache.NewRedisTodoCache(redisClient, cfg.RedisKeyPrefix, ttl)
			limiterStore = middleware.NewRedisLimiterStore(redisClient, cfg.RedisKeyPrefix)
			log.Printf("redis cache and rate limiter enabled at %s", cfg.RedisAddr())
		}

		todoService := services.NewTodoService(todoRepo, todoCache)

		e := httpapi.NewServer(httpapi.NewHandler(todoService, todoRepo), httpapi.ServerOptions{
			APIPrefix:          cfg.APIPrefix,
			RateLimitPerMinute: cfg.RateLimit,
			LimiterStore:       limiterStore,
		})

		addr := cfg.AppURL()
		if serveOpts.addr != "" {
			addr = serveOpts.addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			log.Printf("HTTP server listening on %s", addr)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}

		log.Println("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	addConfigFlag(serveCmd.Flags(), &serveOpts.configPath)
	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "", "listen address, overrides APP_HOST and APP_PORT")
	rootCmd.AddCommand(serveCmd)
}
