package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/crystalafinch/authentication/config"
	"github.com/crystalafinch/authentication/db"
	"github.com/crystalafinch/authentication/internal/auth/domain"
	"github.com/crystalafinch/authentication/internal/auth/handler"
	"github.com/crystalafinch/authentication/internal/auth/repository/memory"
	"github.com/crystalafinch/authentication/internal/auth/repository/postgres"
	"github.com/crystalafinch/authentication/internal/auth/service"
	"github.com/crystalafinch/authentication/internal/logging"
	"github.com/crystalafinch/authentication/internal/report"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.NewForEnv("development").Error(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.NewForEnv(cfg.Env)
	reporter := report.NewLogReporter(log)

	var store domain.UserStore
	if cfg.DBURL != "" {
		if err := db.Migrate(cfg.DBURL); err != nil {
			log.Error(ctx, "failed to migrate database", "error", err)
			os.Exit(1)
		}
		pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
		if err != nil {
			log.Error(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = postgres.NewPostgresRepository(pool)
	} else {
		log.Warn(ctx, "DB_URL not set, using in-memory user store")
		store = memory.NewRepository()
	}

	tokenService := service.NewTokenService(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(),
	)
	userService := service.NewUserService(store, tokenService, reporter, log)

	cookieDomain := ""
	if cfg.IsProduction() {
		cookieDomain = cfg.CookieDomain
	}
	cookies := handler.NewCookieManager(cfg.IsProduction(), cookieDomain,
		cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	authHandler := handler.NewAuthHandler(userService, cookies, log)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendOrigin,
		AllowCredentials: true,
	}))
	handler.RegisterRoutes(app, authHandler)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Error(ctx, "server stopped", "error", err)
			os.Exit(1)
		}
	}()
	log.Info(ctx, "server ready", "addr", cfg.Addr(), "env", cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error(ctx, "shutdown failed", "error", err)
	}
}
