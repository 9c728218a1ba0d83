package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpilot/stockpilot/internal/activity"
	"github.com/stockpilot/stockpilot/internal/app"
	"github.com/stockpilot/stockpilot/internal/auth"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/history"
	"github.com/stockpilot/stockpilot/internal/orders"
	"github.com/stockpilot/stockpilot/internal/products"
	"github.com/stockpilot/stockpilot/internal/profile"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/users"
	"github.com/stockpilot/stockpilot/internal/view"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "stockpilot_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	client := backend.NewClient(cfg.BackendURL)
	guardMiddleware := guard.Middleware{Logger: logger, Templates: templates}

	authHandler := auth.NewHandler(logger, client, templates, sessionManager, csrfManager, app.LoginRateLimiter(cfg))
	productsHandler := products.NewHandler(logger, client, templates, csrfManager, sessionManager, guardMiddleware)
	ordersHandler := orders.NewHandler(logger, client, templates, csrfManager, sessionManager, guardMiddleware)
	usersHandler := users.NewHandler(logger, client, templates, csrfManager, sessionManager, guardMiddleware)
	activityHandler := activity.NewHandler(logger, client, templates, csrfManager, sessionManager, guardMiddleware)
	historyHandler := history.NewHandler(logger, client, templates, csrfManager, sessionManager, guardMiddleware)
	profileHandler := profile.NewHandler(logger, client, templates, csrfManager, sessionManager, guardMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Templates:       templates,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AuthHandler:     authHandler,
		ProductsHandler: productsHandler,
		OrdersHandler:   ordersHandler,
		UsersHandler:    usersHandler,
		ActivityHandler: activityHandler,
		HistoryHandler:  historyHandler,
		ProfileHandler:  profileHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
