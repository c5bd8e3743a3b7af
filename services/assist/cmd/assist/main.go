package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"studymate/internal/ratelimit"
	"studymate/internal/util"
	"studymate/pkg/ai"
	"studymate/services/assist/internal/app"
	"studymate/services/assist/internal/config"
	"studymate/services/assist/internal/server"
)

func main() {
	cfgPath := config.ConfigPath
	if v := os.Getenv("ASSIST_CONFIG"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel, "assist")

	client, err := ai.NewOpenAICompatClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey)
	if err != nil {
		util.Fatal("failed to init completion client", "err", err)
	}
	relay, err := app.New(app.Config{
		Client:     client,
		Model:      cfg.Model,
		Timeout:    cfg.GenerationTimeout(),
		StrictQuiz: cfg.StrictQuizJSON,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		util.Fatal("failed to parse trusted proxies", "err", err)
	}
	srvCfg := server.Config{
		App:                relay,
		TrustedProxies:     trusted,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "studymate:assist:generate", cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init rate limiter", "err", err)
		}
		srvCfg.Limiter = limiter
	}
	httpServer, err := server.New(srvCfg)
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Leave room for the provider call plus encoding the response.
		WriteTimeout: cfg.GenerationTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("assist server listening", "addr", addr, "model", relay.Model(), "rate_limit_per_minute", cfg.RateLimitPerMinute)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("assist server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()
	if limiter != nil {
		if cerr := limiter.Close(); cerr != nil {
			slog.Warn("rate limiter close failed", "err", cerr)
		}
	}
	if err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
