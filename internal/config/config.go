// Package config загружает конфигурацию itemserver: YAML-файл поверх
// значений по умолчанию, затем переопределения из окружения (ITEMCORE_*).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix — префикс переменных окружения.
const EnvPrefix = "ITEMCORE_"

// Server holds all configuration for the item server.
type Server struct {
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH"` // пусто — встроенный каталог

	Decay    DecayConfig    `yaml:"decay" envPrefix:"DECAY_"`
	Transfer TransferConfig `yaml:"transfer" envPrefix:"TRANSFER_"`
	Loop     LoopConfig     `yaml:"loop" envPrefix:"LOOP_"`
	Snapshot SnapshotConfig `yaml:"snapshot" envPrefix:"SNAPSHOT_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
}

// DecayConfig задаёт кольцо decay bucket'ов.
type DecayConfig struct {
	Buckets  int           `yaml:"buckets" env:"BUCKETS"`
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

// TransferConfig задаёт ограничения holder'ов и движка.
type TransferConfig struct {
	MaxRedirectDepth int   `yaml:"max_redirect_depth" env:"MAX_REDIRECT_DEPTH"`
	MaxDepotItems    int   `yaml:"max_depot_items" env:"MAX_DEPOT_ITEMS"`
	TileItemLimit    int   `yaml:"tile_item_limit" env:"TILE_ITEM_LIMIT"` // 0 — без лимита
	InventoryCap     int32 `yaml:"inventory_capacity" env:"INVENTORY_CAPACITY"`
}

// LoopConfig — параметры simulation loop.
type LoopConfig struct {
	QueueSize int `yaml:"queue_size" env:"QUEUE_SIZE"`
}

// SnapshotConfig настраивает периодическое сохранение мира.
type SnapshotConfig struct {
	Path     string        `yaml:"path" env:"PATH"` // пусто — snapshot выключен
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Server config with sensible defaults.
func Default() Server {
	return Server{
		LogLevel: "info",
		Decay: DecayConfig{
			Buckets:  12,
			Interval: 5 * time.Second,
		},
		Transfer: TransferConfig{
			MaxRedirectDepth: 16,
			MaxDepotItems:    2000,
			InventoryCap:     4_000_000,
		},
		Loop: LoopConfig{
			QueueSize: 1024,
		},
		Snapshot: SnapshotConfig{
			Interval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "itemcore",
			Password: "itemcore",
			DBName:   "itemcore",
			SSLMode:  "disable",
		},
	}
}

// Load loads config from a YAML file and applies ITEMCORE_* overrides.
// If the file doesn't exist, defaults are used.
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых сервер не стартует.
func (c Server) Validate() error {
	var errs []error
	if c.Decay.Buckets <= 0 {
		errs = append(errs, fmt.Errorf("decay.buckets must be positive, got %d", c.Decay.Buckets))
	}
	if c.Decay.Interval <= 0 {
		errs = append(errs, fmt.Errorf("decay.interval must be positive, got %s", c.Decay.Interval))
	}
	if c.Transfer.MaxRedirectDepth <= 0 {
		errs = append(errs, fmt.Errorf("transfer.max_redirect_depth must be positive, got %d", c.Transfer.MaxRedirectDepth))
	}
	if c.Transfer.TileItemLimit < 0 {
		errs = append(errs, fmt.Errorf("transfer.tile_item_limit must not be negative, got %d", c.Transfer.TileItemLimit))
	}
	if c.Snapshot.Path != "" && c.Snapshot.Interval <= 0 {
		errs = append(errs, fmt.Errorf("snapshot.interval must be positive, got %s", c.Snapshot.Interval))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
