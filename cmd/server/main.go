package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-records/internal/api"
	"github.com/p-n-ai/pai-records/internal/grading"
	"github.com/p-n-ai/pai-records/internal/navigation"
	"github.com/p-n-ai/pai-records/internal/platform/cache"
	"github.com/p-n-ai/pai-records/internal/platform/config"
	"github.com/p-n-ai/pai-records/internal/platform/database"
	"github.com/p-n-ai/pai-records/internal/schedule"
	"github.com/p-n-ai/pai-records/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	policy, err := cfg.Policy()
	if err != nil {
		slog.Error("failed to load grading policy", "error", err)
		os.Exit(1)
	}
	loc, err := cfg.Schedule.TimeLocation()
	if err != nil {
		slog.Error("failed to load schedule location", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var checks []namedChecker

	var src source.Source
	switch {
	case cfg.Database.URL != "":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		pg, err := source.NewPostgresSource(db.Pool, policy)
		if err != nil {
			slog.Error("failed to create postgres source", "error", err)
			os.Exit(1)
		}
		src = pg
		checks = append(checks, namedChecker{"database", db})
		slog.Info("using postgres source")
	case cfg.Seed.Dir != "":
		mem, err := source.LoadDir(cfg.Seed.Dir, policy)
		if err != nil {
			slog.Error("failed to load seed data", "error", err)
			os.Exit(1)
		}
		src = mem
	default:
		slog.Warn("no database or seed directory configured, serving empty listings")
		src = source.NewMemorySource(nil, nil, nil)
	}

	var store navigation.Store = navigation.NewMemoryStore()
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		rs, err := navigation.NewRedisStore(c, time.Duration(cfg.Cache.NavTTLDays)*24*time.Hour)
		if err != nil {
			slog.Error("failed to create navigation store", "error", err)
			os.Exit(1)
		}
		store = rs
		checks = append(checks, namedChecker{"cache", c})
	}

	resolver := schedule.NewResolver(nil, func() time.Time { return time.Now().In(loc) })
	server := api.NewServer(src, grading.NewAggregator(policy), navigation.NewNavigator(store, resolver))
	for _, c := range checks {
		server.AddCheck(c.name, c.checker)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(server),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"approval_threshold", policy.ApprovalThreshold,
			"location", loc.String(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

type namedChecker struct {
	name    string
	checker api.Checker
}

// newMux creates the HTTP router with health checks and the API routes.
func newMux(server *api.Server) *http.ServeMux {
	mux := http.NewServeMux()
	server.Register(mux)
	return mux
}

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.SlogLevel(),
		AddSource: cfg.AddSource,
	}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
