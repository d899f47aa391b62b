// Package config - настройки приложения: значения по умолчанию,
// необязательный tasktracker.yaml и переменные окружения TASKTRACKER_*.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "TASKTRACKER"
	configName = "tasktracker"
)

// Config - вся конфигурация приложения
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Client   ClientConfig   `mapstructure:"client" validate:"required"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// ServerConfig - настройки HTTP API
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig выбирает реализацию хранилища в памяти
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite"`
}

// ClientConfig - адрес API для CLI и Telegram-бота
type ClientConfig struct {
	APIURL string `mapstructure:"api_url" validate:"required,url"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load читает конфигурацию. Приоритет: окружение, затем файл, затем значения по умолчанию.
// paths - каталоги для поиска tasktracker.yaml, по умолчанию текущий.
func Load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("client.api_url", "http://localhost:5000/api/tasks")
	v.SetDefault("telegram.token", "")

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return &cfg, nil
}
