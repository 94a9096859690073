package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mileusna/crontab"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pingchain/analysis"
	"pingchain/analytics"
	"pingchain/config"
	"pingchain/handlers"
	"pingchain/llm"
	"pingchain/middleware"
	"pingchain/notify"
	"pingchain/platforms"
	"pingchain/reminders"
	"pingchain/routes"
	"pingchain/store"
	fsstore "pingchain/store/firestore"
	"pingchain/store/memory"
	sbstore "pingchain/store/supabase"
)

const dispatchTimeout = time.Minute

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StorageBackend {
	case "firestore":
		s, err := fsstore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "supabase":
		s, err := sbstore.NewStore(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}

func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.ResendAPIKey == "" || len(cfg.NotifyRecipients) == 0 {
		return notify.LogNotifier{}
	}
	return notify.NewResendNotifier(cfg.ResendAPIKey, cfg.NotifyFrom, cfg.NotifyRecipients)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Logger.Fatal("Invalid configuration: ", err)
	}
	config.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		config.Logger.Fatal("Failed to open store: ", err)
	}
	defer closeStore()
	config.Logger.Infof("Using %s storage backend", cfg.StorageBackend)

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		config.Logger.Warn("AI provider unavailable, suggestions will use templates: ", err)
	}

	contexts, err := analysis.NewContextCache(cfg.ContextCacheSize, cfg.ContextCacheTTL)
	if err != nil {
		config.Logger.Fatal(err)
	}

	scheduler := reminders.NewScheduler(st, newNotifier(cfg))
	syncs := platforms.NewManager(st, cfg.PlatformPollMinutes)
	defer syncs.Shutdown()

	ctab := crontab.New()
	defer ctab.Shutdown()
	if err := ctab.AddJob(cfg.ReminderDispatchSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		n, err := scheduler.DispatchDue(jobCtx)
		if err != nil {
			config.Logger.Error("Reminder dispatch failed: ", err)
			return
		}
		if n > 0 {
			config.Logger.Infof("Dispatched %d reminder(s)", n)
		}
	}); err != nil {
		config.Logger.Fatal("Failed to schedule reminder dispatch: ", err)
	}

	h := handlers.New(handlers.Dependencies{
		Store:       st,
		Reminders:   scheduler,
		Suggestions: llm.NewGenerator(provider, nil),
		Analytics:   analytics.NewService(st),
		Platforms:   syncs,
		Contexts:    contexts,
	})

	if cfg.JWTSecret == "" {
		config.Logger.Warn("AUTH_JWT_SECRET is not set, bearer tokens are not verified")
	}
	auth := middleware.NewAuthenticator(cfg.JWTSecret)

	mux := http.NewServeMux()
	routes.RegisterAllRoutes(mux, h, auth.Middleware)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Chain(middleware.CORSMiddleware, middleware.LoggingMiddleware)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		config.Logger.Infof("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	config.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Error("Graceful shutdown failed: ", err)
	}
}
