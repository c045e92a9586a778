package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shehryarbajwa/scenegate/internal/api"
	"github.com/shehryarbajwa/scenegate/internal/config"
	"github.com/shehryarbajwa/scenegate/internal/ratelimit"
)

const (
	pruneInterval = 5 * time.Minute
	clientMaxIdle = 2 * time.Hour
)

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the capability decision HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv file with SCENEGATE_* settings")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log.Println("Starting scenegate...")

	rateLimiter := ratelimit.NewLimiter(cfg.RatePerHour, cfg.RateBurst)
	log.Printf("✓ Rate limiter initialized (%d req/hour per client, burst %d)", cfg.RatePerHour, cfg.RateBurst)

	handler := api.NewHandler()
	router := handler.SetupRoutes(rateLimiter, cfg.RatePerHour, cfg.TrustedProxies)
	log.Println("✓ HTTP routes configured")
	if len(cfg.TrustedProxies) > 0 {
		log.Printf("✓ Trusting X-Forwarded-For from %v", cfg.TrustedProxies)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🚀 Server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("⏳ Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := rateLimiter.Prune(clientMaxIdle); n > 0 {
					log.Printf("🧹 Pruned %d idle rate-limit buckets", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("✅ Server stopped cleanly")
	return nil
}
