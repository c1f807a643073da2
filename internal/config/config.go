// Package config собирает конфигурацию ядра из четырех слоев
// с приоритетом CLI > env > file > defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// Config — все параметры запуска ядра. Один keyed-файл покрывает
// все ключи; флаги и переменные окружения перекрывают его точечно.
type Config struct {
	// Мир
	Seed          int64 `json:"seed" env:"WORLD_SEED"`
	WorldSize     int   `json:"worldSize"`     // D_max, гексов от начала координат
	ChunkSide     int   `json:"chunkSide"`     // C, сторона чанка в гексах
	LoadingRadius int   `json:"loadingRadius"` // R_load, радиус Чебышёва
	MaxResident   int   `json:"maxResidentTiles"`

	// Движок ужаса
	Hysteresis float64    `json:"dreadHysteresis"` // H
	DwellUp    float64    `json:"dwellUpSeconds"`
	DwellDown  float64    `json:"dwellDownSeconds"`
	Thresholds [4]float64 `json:"dreadThresholds"` // T1..T4 на нормализованной шкале

	// Ресурсы
	Workers       int     `json:"workers"`    // пул генерации чанков
	QueueDepth    int     `json:"queueDepth"` // глубина очереди подписчика
	GenTimeoutSec float64 `json:"genTimeoutSeconds"`

	// Хост
	Port    string `json:"port" env:"DL_PORT"`
	SaveDir string `json:"saveDir" env:"SAVE_DIR"`

	// LogLevel дублируется здесь, чтобы попасть в keyed-файл;
	// сам логгер читает LOG_LEVEL напрямую при Init.
	LogLevel string `json:"logLevel" env:"LOG_LEVEL"`
}

// Default возвращает конфиг по умолчанию.
// Сид 0 означает "сгенерировать случайный" (решается в main).
func Default() Config {
	return Config{
		Seed:          0,
		WorldSize:     180,
		ChunkSide:     16,
		LoadingRadius: 3,
		MaxResident:   2000,
		Hysteresis:    0.05,
		DwellUp:       2.0,
		DwellDown:     10.0,
		Thresholds:    [4]float64{0.25, 0.45, 0.65, 0.85},
		Workers:       maxInt(1, runtime.NumCPU()-1),
		QueueDepth:    1024,
		GenTimeoutSec: 5.0,
		Port:          "8080",
		SaveDir:       "saves",
		LogLevel:      "info",
	}
}

// Load строит конфиг: defaults <- file <- env. CLI-слой накладывает main
// (только явно переданные флаги, см. cmd/server).
func Load(filePath string) (Config, error) {
	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return cfg, fmt.Errorf("config file: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", filePath, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}

	return cfg, nil
}

// Validate проверяет согласованность. Ошибка здесь — invalid config,
// процесс выходит с кодом 2.
func (c Config) Validate() error {
	if c.WorldSize <= 0 {
		return fmt.Errorf("world-size must be positive, got %d", c.WorldSize)
	}
	if c.ChunkSide <= 0 {
		return fmt.Errorf("chunk side must be positive, got %d", c.ChunkSide)
	}
	if c.LoadingRadius <= 0 {
		return fmt.Errorf("loading-radius must be positive, got %d", c.LoadingRadius)
	}
	if c.MaxResident < c.ChunkSide*c.ChunkSide {
		return fmt.Errorf("max-resident-tiles %d is below a single chunk (%d tiles)",
			c.MaxResident, c.ChunkSide*c.ChunkSide)
	}
	if c.Hysteresis < 0 || c.Hysteresis >= 0.25 {
		return fmt.Errorf("dread-hysteresis must be in [0, 0.25), got %g", c.Hysteresis)
	}
	if c.DwellUp < 0 || c.DwellDown < 0 {
		return fmt.Errorf("dwell times must be non-negative")
	}
	prev := 0.0
	for i, t := range c.Thresholds {
		if t <= prev || t >= 1 {
			return fmt.Errorf("dread thresholds must be ascending in (0,1), T%d=%g", i+1, t)
		}
		prev = t
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.QueueDepth <= 0 {
		return fmt.Errorf("queue depth must be positive, got %d", c.QueueDepth)
	}
	if c.GenTimeoutSec <= 0 {
		return fmt.Errorf("generation timeout must be positive, got %g", c.GenTimeoutSec)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
