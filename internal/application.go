package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/hasami-backend/internal/config"
	"github.com/rocketscienceinc/hasami-backend/internal/repository"
	"github.com/rocketscienceinc/hasami-backend/internal/repository/storage"
	"github.com/rocketscienceinc/hasami-backend/internal/usecase"
	"github.com/rocketscienceinc/hasami-backend/transport/commands"
	"github.com/rocketscienceinc/hasami-backend/transport/mcp"
)

// RunApp - runs the command given in args against the configured save store.
func RunApp(logger *slog.Logger, conf *config.Config, args []string) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	gameRepo, closeRepo, err := openRepository(ctx, conf)
	if err != nil {
		return fmt.Errorf("could not open %s storage: %w", conf.Storage.Driver, err)
	}

	defer func() {
		if err := closeRepo(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	log.Debug("storage opened", "driver", conf.Storage.Driver)

	manager := usecase.NewGameManager(logger, gameRepo)
	mcpServer := mcp.New(logger, manager)

	return commands.New(logger, manager, os.Stdout, mcpServer.Serve).Run(ctx, args)
}

// openRepository - the save store picked by storage.driver and a func releasing its connection.
func openRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, func() error, error) {
	switch conf.Storage.Driver {
	case config.DriverFile:
		return repository.NewFileStore(conf.Storage.Dir), func() error { return nil }, nil

	case config.DriverRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, err
		}

		return repository.NewRedisStore(redisStorage.Connection), redisStorage.Close, nil

	case config.DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, err
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, err
		}

		return repository.NewSQLiteStore(sqliteStorage.Connection), sqliteStorage.Close, nil

	case config.DriverMongo:
		mongoStorage, err := storage.NewMongoStorage(ctx, conf.Mongo.URI, conf.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}

		closeMongo := func() error {
			return mongoStorage.Close(context.Background())
		}

		return repository.NewMongoStore(mongoStorage.Database), closeMongo, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, conf.Storage.Driver)
	}
}
