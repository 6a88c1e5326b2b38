// Command catalog runs the catalog REST API, its web front-end and database maintenance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/catalog/internal/config"
	"anoa.com/catalog/pkg/database"
	"anoa.com/catalog/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Catalog of categories and products",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log, err = logger.New(logger.Config{
			Development:       cfg.IsDevelopment(),
			Level:             cfg.Logger.Level,
			Encoding:          cfg.Logger.Encoding,
			DisableCaller:     cfg.Logger.DisableCaller,
			DisableStacktrace: cfg.Logger.DisableStacktrace,
		})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		zap.ReplaceGlobals(log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file (defaults to $CONFIG_FILE)")

	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openDatabase() (*database.DB, error) {
	return database.Connect(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Debug:           cfg.IsDevelopment(),
	})
}

// openRedis returns a nil client when REDIS_URL is not configured.
func openRedis(ctx context.Context) (redis.UniversalClient, error) {
	if cfg.Redis.URL == "" {
		log.Info("redis not configured")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	log.Info("connected to redis", zap.String("addr", opts.Addr))
	return rdb, nil
}
