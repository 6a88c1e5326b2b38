package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/catalog/internal/config"
	"anoa.com/catalog/internal/middleware"
	"anoa.com/catalog/pkg/database"
	"anoa.com/catalog/pkg/ratelimit"
	"anoa.com/catalog/pkg/token"

	categoryHttp "anoa.com/catalog/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/catalog/internal/modules/category/repository"
	categoryService "anoa.com/catalog/internal/modules/category/service"
	categoryUsecase "anoa.com/catalog/internal/modules/category/usecase"

	productHttp "anoa.com/catalog/internal/modules/product/delivery/http"
	productRepo "anoa.com/catalog/internal/modules/product/repository"
	productService "anoa.com/catalog/internal/modules/product/service"
	productUsecase "anoa.com/catalog/internal/modules/product/usecase"

	userHttp "anoa.com/catalog/internal/modules/user/delivery/http"
	userRepo "anoa.com/catalog/internal/modules/user/repository"
	userService "anoa.com/catalog/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	engine *gin.Engine
	db     *database.DB
	log    *zap.Logger
}

// NewServer wires the REST API. rdb may be nil, which disables the login lockout.
func NewServer(cfg *config.Config, db *database.DB, rdb redis.UniversalClient, log *zap.Logger) *Server {
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL())
	limiter := ratelimit.New(rdb, "catalog")

	userRepo := userRepo.NewUserRepository(db.Gorm)
	authSvc := userService.NewAuthService(userRepo, tokens, limiter, userService.LoginPolicy{
		MaxAttempts: cfg.Auth.LoginMaxAttempts,
		Window:      cfg.Auth.LoginLockWindow,
	}, log)
	authHandler := userHttp.NewAuthHandler(authSvc)

	categoryRepo := categoryRepo.NewCategoryRepository(db.SQL)
	categorySvc := categoryService.NewCategoryService(categoryRepo, log)
	categoryHandler := categoryHttp.NewCategoryHandler(categoryUsecase.New(categorySvc, log))

	productRepo := productRepo.NewProductRepository(db.SQL)
	productSvc := productService.NewProductService(productRepo, categoryRepo, log)
	productHandler := productHttp.NewProductHandler(productUsecase.New(productSvc, log))

	router := gin.New()

	router.Use(middleware.RequestID(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	if cfg.CORS.Enabled {
		router.Use(cors.New(corsConfig(cfg.CORS.Origins)))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	api := router.Group("/api")

	// Public routes (no auth required)
	authHandler.Register(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	categoryHandler.Register(protected)
	productHandler.Register(protected)

	return &Server{
		engine: router,
		db:     db,
		log:    log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(ctx context.Context, addr string) error {
	return Serve(ctx, addr, s.engine, s.log)
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server", zap.String("addr", addr))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// corsConfig allows any origin without credentials for "*", otherwise the
// listed origins with credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Location", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
