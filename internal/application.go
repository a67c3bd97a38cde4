package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/scrabble-backend/internal/config"
	"github.com/rocketscienceinc/scrabble-backend/internal/dictionary"
	"github.com/rocketscienceinc/scrabble-backend/internal/repository"
	"github.com/rocketscienceinc/scrabble-backend/internal/repository/storage"
	"github.com/rocketscienceinc/scrabble-backend/internal/usecase"
	"github.com/rocketscienceinc/scrabble-backend/transport/rest"
	"github.com/rocketscienceinc/scrabble-backend/transport/websocket"
)

// RunApp - runs the application. seed 0 seeds the tile bags from the clock.
func RunApp(logger *slog.Logger, conf *config.Config, seed int64) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	var (
		matchRepo repository.MatchRepository
		wordCache dictionary.Cache
	)

	if conf.Redis.Enabled {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		matchRepo = repository.NewMatchRepository(redisStorage.Connection, conf.Redis.MatchTTL)
		if conf.Dictionary.Provider == config.ProviderAPI {
			wordCache = repository.NewWordCache(redisStorage.Connection, conf.Dictionary.CacheTTL)
		}
	}

	source, err := newWordSource(conf.Dictionary)
	if err != nil {
		return err
	}

	validator := dictionary.New(logger, source, wordCache)

	opts := usecase.Options{
		RackSize:        conf.Game.RackSize,
		MinPlayers:      conf.Game.MinPlayers,
		MaxPlayers:      conf.Game.MaxPlayers,
		DefaultDuration: conf.Game.Duration(),
		ReconnectGrace:  conf.Game.ReconnectGrace,
		ChatHistory:     conf.Game.ChatHistory,
	}
	if seed != 0 {
		seeds := rand.New(rand.NewSource(seed)) //nolint: gosec // reproducible games
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(seeds.Int63())) //nolint: gosec // reproducible games
		}
	}

	hub := websocket.NewHub(logger)

	roomManager := usecase.NewRoomManager(logger, opts, hub, validator, matchRepo, nil)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, roomManager, matchRepo)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager, hub)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func newWordSource(conf config.Dictionary) (dictionary.Source, error) {
	switch conf.Provider {
	case config.ProviderWordList:
		words, err := dictionary.NewWordList(conf.WordListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list: %w", err)
		}
		return words, nil
	case config.ProviderAllowAll:
		return dictionary.AllowAll(), nil
	default:
		return dictionary.NewAPI(conf.APIURL, conf.Timeout), nil
	}
}
