package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/app"
	"github.com/KeremKalyoncu/vidgate/internal/config"
	"github.com/KeremKalyoncu/vidgate/internal/logger"
	"github.com/KeremKalyoncu/vidgate/internal/shutdown"
)

func main() {
	// -h prints every supported environment variable
	var usageCfg config.Config
	flag.Usage = cleanenv.FUsage(os.Stdout, &usageCfg, nil, flag.Usage)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:         cfg.Logger.Level,
		FileName:      cfg.Logger.File,
		MaxSize:       cfg.Logger.MaxSizeMB,
		MaxBackups:    cfg.Logger.MaxBackups,
		MaxAge:        cfg.Logger.MaxAgeDays,
		Compress:      true,
		Format:        cfg.Logger.Format,
		ConsoleOutput: true,
	})
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	container, err := app.NewContainer(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}

	server := app.NewServer(container)

	gs := shutdown.NewGracefulShutdown(zapLogger, cfg.API.ShutdownTimeout)
	gs.Register("http server", server.ShutdownWithContext)
	gs.Register("container", func(ctx context.Context) error {
		return container.Close()
	})
	gs.Register("logger", func(ctx context.Context) error {
		// Sync on stdout returns EINVAL on some platforms
		_ = zapLogger.Sync()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listenFailed := make(chan struct{})
	go func() {
		addr := cfg.ListenAddr()
		zapLogger.Info("Starting API server", zap.String("addr", addr))

		if err := server.Listen(addr); err != nil {
			zapLogger.Error("Server stopped listening", zap.Error(err))
			close(listenFailed)
			cancel()
		}
	}()

	gs.Wait(ctx)

	select {
	case <-listenFailed:
		os.Exit(1)
	default:
	}
}
