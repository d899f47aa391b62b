package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/logger"
	"task-tracker/internal/manager"
	"task-tracker/internal/server"
	"task-tracker/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.Server.LogLevel, os.Stdout); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Запуск Task Tracker API", "driver", cfg.Storage.Driver, "port", cfg.Server.Port)

	store, err := storage.New(cfg.Storage.Driver)
	if err != nil {
		return fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}
	defer store.Close()

	if err := storage.Seed(ctx, store, time.Now().UTC()); err != nil {
		return fmt.Errorf("ошибка заполнения хранилища: %w", err)
	}

	tm := manager.NewTaskManager(store)
	if err := server.ListenAndServe(ctx, cfg.Server.Addr(), server.NewRouter(tm)); err != nil {
		return err
	}

	logger.Info(context.Background(), "Сервер остановлен")
	return nil
}
