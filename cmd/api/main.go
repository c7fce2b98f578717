package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/grand-tour/internal/config"
	"github.com/jwebster45206/grand-tour/internal/handlers"
	"github.com/jwebster45206/grand-tour/internal/logger"
	"github.com/jwebster45206/grand-tour/internal/storage"
	"github.com/jwebster45206/grand-tour/pkg/content"
	"github.com/jwebster45206/grand-tour/pkg/game"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.Setup(cfg)
	logg.Info("Starting Grand Tour API",
		"port", cfg.Port,
		"environment", cfg.Environment)

	registry, err := content.Load()
	if err != nil {
		return fmt.Errorf("loading content tables: %w", err)
	}
	logg.Info("Content tables loaded",
		"cities", registry.CityCount(),
		"characters", len(registry.Characters()),
		"events", len(registry.Events()))

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := game.NewEngine(registry, game.DefaultRules(), game.NewLockedRand(seed), logg)

	store := storage.NewRedisStorage(
		cfg.RedisURL,
		time.Duration(cfg.SessionTTLMinutes)*time.Minute,
		cfg.LeaderboardCap,
		logg,
	)
	storageCtx, storageCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		return fmt.Errorf("connecting to storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error("Error closing storage connection", "error", err)
		}
	}()

	gameHandler := handlers.NewGameHandler(engine, store, logg)
	leaderboardHandler := handlers.NewLeaderboardHandler(store, logg)
	contentHandler := handlers.NewContentHandler(registry, logg)
	healthHandler := handlers.NewHealthHandler(store, logg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/health", healthHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/game", func(r chi.Router) {
			r.Post("/", gameHandler.Create)
			r.Get("/{id}", gameHandler.Get)
			r.Delete("/{id}", gameHandler.Delete)
			r.Post("/{id}/move", gameHandler.Move)
			r.Post("/{id}/riddle", gameHandler.Riddle)
			r.Post("/{id}/event", gameHandler.Event)
			r.Post("/{id}/complete", gameHandler.Complete)
			r.Get("/{id}/location", gameHandler.CheckLocation)
		})
		r.Get("/leaderboard", leaderboardHandler.Top)
		r.Route("/content", func(r chi.Router) {
			r.Get("/cities", contentHandler.Cities)
			r.Get("/characters", contentHandler.Characters)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logg.Info("Server is shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logg.Info("Server exited")
	return nil
}
