package main

import (
	"fmt"

	"anoa.com/catalog/internal/bootstrap"
	"anoa.com/catalog/internal/server"
	"anoa.com/catalog/internal/web"
	"anoa.com/catalog/internal/web/apiclient"
	"anoa.com/catalog/internal/web/session"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the REST API (migrates and seeds on start)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		if !cfg.IsDevelopment() {
			gin.SetMode(gin.ReleaseMode)
		}
		if err := validator.Register(); err != nil {
			return err
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := bootstrap.Run(db.Gorm, cfg.Seed.Enabled, cfg.Seed.Password, log); err != nil {
			return err
		}

		rdb, err := openRedis(ctx)
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
		}

		srv := server.NewServer(cfg, db, rdb, log)
		return srv.Run(ctx, ":"+cfg.App.APIPort)
	},
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the web front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		if !cfg.IsDevelopment() {
			gin.SetMode(gin.ReleaseMode)
		}

		store := session.NewMemoryStore()
		rdb, err := openRedis(ctx)
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
			store = session.NewRedisStore(rdb, "catalog")
		}

		router, err := web.NewRouter(web.Options{
			API:          apiclient.New(cfg.Web.APIBaseURL, log),
			Sessions:     session.NewManager(store, cfg.Web.SessionTTL, cfg.Web.CookieSecure, log),
			CookieSecure: cfg.Web.CookieSecure,
			Logger:       log,
		})
		if err != nil {
			return fmt.Errorf("build web router: %w", err)
		}

		log.Info("web front-end using api", zap.String("api_base_url", cfg.Web.APIBaseURL))
		return server.Serve(ctx, ":"+cfg.App.WebPort, router, log)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema, seed sample data and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := bootstrap.Run(db.Gorm, cfg.Seed.Enabled, cfg.Seed.Password, log); err != nil {
			return err
		}
		log.Info("migration completed", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
