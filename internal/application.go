package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/kalah-backend/internal/config"
	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
	"github.com/rocketscienceinc/kalah-backend/internal/repository"
	"github.com/rocketscienceinc/kalah-backend/internal/repository/storage"
	"github.com/rocketscienceinc/kalah-backend/internal/service"
	"github.com/rocketscienceinc/kalah-backend/transport/rest"
	"github.com/rocketscienceinc/kalah-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	if _, err := kalah.NewBoard(conf.Game.PitsPerSide, conf.Game.InitialSeeds); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	if err := entity.ValidateDifficulty(conf.Game.BotDifficulty); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage, conf.Game.PlayerTTL)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Game.TTL)

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo, conf.Game.PitsPerSide, conf.Game.InitialSeeds)
	botService := service.NewBotService(uint64(time.Now().UnixNano()))
	gamePlayService := service.NewGamePlayService(logger, playerService, gameService, botService, conf.Game.BotDifficulty)

	socket := websocket.New(logger, playerService, gamePlayService)
	defer socket.Close()

	router := rest.NewRouter(
		rest.NewPingHandler(logger, func(ctx context.Context) error {
			return redisStorage.Ping(ctx).Err()
		}),
		rest.NewGameHandler(logger, playerService, gamePlayService),
		socket,
	)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
