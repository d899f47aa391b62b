package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"task-tracker/internal/client"
	"task-tracker/internal/config"
	"task-tracker/internal/logger"
	"task-tracker/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфигурации")
		os.Exit(1)
	}
	if err := logger.Setup(cfg.Server.LogLevel, os.Stdout); err != nil {
		logger.Error(ctx, err, "Ошибка настройки логгера")
		os.Exit(1)
	}

	if cfg.Telegram.Token == "" {
		logger.Error(ctx, errors.New("telegram.token не задан"), "Укажите TASKTRACKER_TELEGRAM_TOKEN")
		os.Exit(1)
	}

	logger.Info(ctx, "Запуск Telegram-бота...", "api_url", cfg.Client.APIURL)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error(ctx, err, "Ошибка создания бота")
		os.Exit(1)
	}
	logger.Info(ctx, "Авторизован", "username", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		logger.Error(ctx, err, "Ошибка получения updates")
		os.Exit(1)
	}

	tasks := client.New(cfg.Client.APIURL, nil)
	bot := NewBot(api, func() *ui.Board { return ui.NewBoard(tasks) })

	logger.Info(ctx, "Бот запущен и слушает сообщения...")
	bot.Run(ctx, updates)

	api.StopReceivingUpdates()
	logger.Info(context.Background(), "Бот остановлен")
}
