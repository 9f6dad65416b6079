package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/quadra-imoveis/quadra/internal/admin"
	"github.com/quadra-imoveis/quadra/internal/app"
	"github.com/quadra-imoveis/quadra/internal/articles"
	"github.com/quadra-imoveis/quadra/internal/auth"
	"github.com/quadra-imoveis/quadra/internal/authz"
	"github.com/quadra-imoveis/quadra/internal/favorites"
	"github.com/quadra-imoveis/quadra/internal/finance"
	"github.com/quadra-imoveis/quadra/internal/listings"
	"github.com/quadra-imoveis/quadra/internal/observability"
	"github.com/quadra-imoveis/quadra/internal/platform/cache"
	"github.com/quadra-imoveis/quadra/internal/platform/db"
	"github.com/quadra-imoveis/quadra/internal/shared"
	"github.com/quadra-imoveis/quadra/internal/users"
	"github.com/quadra-imoveis/quadra/internal/visits"
	"github.com/quadra-imoveis/quadra/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	securityLogger := shared.NewSecurityLogger(pool)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	issuer := auth.NewTokenIssuer("quadra", cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	blacklist := auth.NewBlacklist(redisClient)
	google := auth.NewGoogleOIDC(cfg.GoogleClientID)
	mailer := jobs.NewQueueMailer(jobClient)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, hasher, issuer, blacklist, google, mailer, logger, auth.ServiceConfig{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		VerifyTTL:  cfg.VerifyTokenTTL,
		ResetTTL:   cfg.ResetTokenTTL,
		LogoutAll:  cfg.AuthLogoutAll,
	})
	gate := auth.NewGate(issuer, authRepo, blacklist, logger)
	authHandler := auth.NewHandler(logger, authService, gate)

	registry := authz.NewRegistry()
	policy := authz.NewPolicy(authz.NewPGStore(pool), registry, logger)

	usersRepo := users.NewPGRepository(pool)
	usersService := users.NewService(usersRepo, logger)
	usersHandler := users.NewHandler(logger, usersService)

	listingsRepo := listings.NewPGRepository(pool)
	listings.RegisterOwnership(registry, listingsRepo)
	listingsService := listings.NewService(listingsRepo, logger)
	listingsHandler := listings.NewHandler(logger, listingsService, gate.Require, policy)

	visitsRepo := visits.NewPGRepository(pool)
	visits.RegisterOwnership(registry, visitsRepo)
	visitsService := visits.NewService(visitsRepo, listingsRepo, logger)
	visitsHandler := visits.NewHandler(logger, visitsService, gate.Require, policy)

	articlesRepo := articles.NewPGRepository(pool)
	articles.RegisterOwnership(registry, articlesRepo)
	articlesService := articles.NewService(articlesRepo, logger)
	articlesHandler := articles.NewHandler(logger, articlesService, gate.Require, gate.Optional, policy)

	favoritesRepo := favorites.NewPGRepository(pool)
	favoritesService := favorites.NewService(favoritesRepo, listingsRepo, logger)
	favoritesHandler := favorites.NewHandler(logger, favoritesService, gate.Require)

	financeRepo := finance.NewPGRepository(pool)
	financeService := finance.NewService(financeRepo, logger)
	financeHandler := finance.NewHandler(logger, financeService, gate.Require, policy)

	adminRepo := admin.NewPGRepository(pool)
	adminService := admin.NewService(adminRepo, logger)
	adminHandler := admin.NewHandler(logger, adminService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SecurityLogger:   securityLogger,
		AuthHandler:      authHandler,
		AuthGate:         gate,
		Policy:           policy,
		UsersHandler:     usersHandler,
		ListingsHandler:  listingsHandler,
		VisitsHandler:    visitsHandler,
		ArticlesHandler:  articlesHandler,
		FavoritesHandler: favoritesHandler,
		FinanceHandler:   financeHandler,
		AdminHandler:     adminHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
