// Package config содержит логику чтения конфигурации сервиса парковки.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса парковки.
type Config struct {
	RunAddress        string `env:"RUN_ADDRESS"`
	DatabaseURI       string `env:"DATABASE_URI"`
	RedisAddress      string `env:"REDIS_ADDRESS"`
	RecognizerAddress string `env:"RECOGNIZER_ADDRESS"`
	OperatorSecret    string `env:"OPERATOR_SECRET"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envRedisAddress := cfg.RedisAddress
	envRecognizerAddress := cfg.RecognizerAddress
	envOperatorSecret := cfg.OperatorSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddress, "c", "", "redis cache address")
	flag.StringVar(&cfg.RecognizerAddress, "r", "", "plate recognition service address")
	flag.StringVar(&cfg.OperatorSecret, "s", "", "operator session secret")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envRedisAddress != "" {
		cfg.RedisAddress = envRedisAddress
	}
	if envRecognizerAddress != "" {
		cfg.RecognizerAddress = envRecognizerAddress
	}
	if envOperatorSecret != "" {
		cfg.OperatorSecret = envOperatorSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
