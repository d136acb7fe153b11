// Command batserve serves the bat scene to remote renderers over websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	configPath := flag.String("config", os.Getenv("NIGHTBATS_CONFIG"), "Path to config file (empty = use embedded defaults)")
	addr := flag.String("addr", os.Getenv("NIGHTBATS_ADDR"), "Listen address (empty = use config)")
	origins := flag.String("origins", os.Getenv("NIGHTBATS_ORIGINS"), "Comma-separated allowed origins (empty = any)")
	seed := flag.Int64("seed", 0, "Base RNG seed for rooms (0 = wall clock)")
	debug := flag.Bool("debug", os.Getenv("NIGHTBATS_DEBUG") != "", "Log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr == "" {
		*addr = cfg.Server.Addr
	}

	s := server.New(cfg, server.Options{
		AllowedOrigins: splitList(*origins),
		Seed:           *seed,
	})
	srv := &http.Server{
		Addr:              *addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server_started", "addr", *addr, "tick", cfg.Derived.ServerTick.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.Error("room shutdown", "error", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
