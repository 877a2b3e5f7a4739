package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/blackjack-duel/internal/api"
	"github.com/calvinwijaya/blackjack-duel/internal/config"
	"github.com/calvinwijaya/blackjack-duel/internal/db"
	"github.com/calvinwijaya/blackjack-duel/internal/hub"
	"github.com/calvinwijaya/blackjack-duel/internal/store"
	"github.com/calvinwijaya/blackjack-duel/internal/table"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	history, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open round history")
	}
	defer history.Close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("round history ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.New(log)
	opts := table.DefaultOptions()
	opts.StartingChips = cfg.StartingChips
	opts.DealerDelay = cfg.DealerDelay
	opts.NextRoundDelay = cfg.NextRoundDelay
	tb := table.New(ctx, h, history, opts, log)
	defer tb.Close()

	lines := api.NewLineServer(h, tb, log)
	tcpDone := make(chan error, 1)
	go func() { tcpDone <- lines.ListenAndServe(ctx, cfg.TCPAddr) }()

	// Set up router
	r := mux.NewRouter()
	ws := api.NewWebSocketHandler(h, tb, []string{cfg.FrontendURL}, log)
	api.NewHandlers(tb, history, ws, log).RegisterRoutes(r)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     c.Handler(r),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	tcpStopped := false
	select {
	case <-ctx.Done():
	case err := <-tcpDone:
		tcpStopped = true
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.TCPAddr).Msg("line server error")
		}
		stop()
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if !tcpStopped {
		<-tcpDone
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		return store.NewMemoryStore(), nil
	}
	database, err := db.NewDatabase(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}
	return store.NewDatabaseStore(database), nil
}
