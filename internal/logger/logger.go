// Package logger - структурированный логгер приложения поверх log/slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level   = new(slog.LevelVar)
	current atomic.Pointer[slog.Logger]
)

func init() {
	SetOutput(os.Stdout)
}

// Setup выставляет уровень по имени из конфигурации и направляет JSON-логи в w.
func Setup(levelName string, w io.Writer) error {
	lvl, err := ParseLevel(levelName)
	if err != nil {
		return err
	}
	SetLevel(lvl)
	SetOutput(w)
	slog.SetDefault(L())
	return nil
}

func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("неизвестный уровень логирования: %q", name)
	}
}

func SetLevel(l Level) {
	level.Set(l)
}

func SetOutput(w io.Writer) {
	current.Store(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// L возвращает текущий *slog.Logger, например для logger.L().With("component", ...)
func L() *slog.Logger {
	return current.Load()
}

func Debug(ctx context.Context, msg string, args ...any) {
	L().DebugContext(ctx, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	L().InfoContext(ctx, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	L().WarnContext(ctx, msg, args...)
}

func Error(ctx context.Context, err error, msg string, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	L().ErrorContext(ctx, msg, args...)
}
