package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/dungeon-gen/internal/cache"
	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения
type Config struct {
	Dungeon   dungeon.Config  `yaml:"dungeon"`
	Templates dungeon.Catalog `yaml:"templates"`
	Server    ServerConfig    `yaml:"server"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     cache.Config    `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EventBusConfig пустой URL означает шину в памяти
type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type ServerConfig struct {
	RESTPort      int `yaml:"rest_port"`
	DefaultBudget int `yaml:"default_budget"`
	MaxBudget     int `yaml:"max_budget"`
}

// StorageConfig пустой DataPath означает хранилище в памяти
type StorageConfig struct {
	DataPath string `yaml:"data_path"`
}

// TelemetryConfig пустой Endpoint отключает экспорт трейсов
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
	Service  string `yaml:"service"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	// Components уровни отдельных компонентов (dungeon, pathfinding, graph, server, storage)
	Components map[string]string `yaml:"components"`
}

// ConsoleLevel уровень из конфигурации; INFO, если не задан
func (l LoggingConfig) ConsoleLevel() logging.LogLevel {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return logging.INFO
	}
	return level
}

// Default конфигурация без файла
func Default() *Config {
	return &Config{
		Dungeon:   dungeon.DefaultConfig(),
		Templates: dungeon.DefaultCatalog(),
		Server: ServerConfig{
			DefaultBudget: 30,
			MaxBudget:     500,
		},
		EventBus: EventBusConfig{Retention: 24},
		Cache:    cache.Config{MemoryEntries: 128},
		Telemetry: TelemetryConfig{
			Service:  "dungeon-gen",
			Insecure: true,
		},
		Logging: LoggingConfig{Level: "info", Dir: "logs"},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "DUNGEON_REST_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх Default().
// Если path == "", берётся ENV DUNGEON_CONFIG; если и он пуст, возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("DUNGEON_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: чтение %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: разбор %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет разделы, которые нельзя проверить позже
func (c *Config) Validate() error {
	if err := c.Dungeon.Validate(); err != nil {
		return err
	}
	if err := c.Templates.Validate(c.Dungeon.ProceduralRooms); err != nil {
		return err
	}
	if c.Server.MaxBudget > 0 && c.Server.DefaultBudget > c.Server.MaxBudget {
		return fmt.Errorf("config: default_budget %d больше max_budget %d",
			c.Server.DefaultBudget, c.Server.MaxBudget)
	}
	if c.Logging.Level != "" {
		if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("config: logging.level: %w", err)
		}
	}
	for component, level := range c.Logging.Components {
		if !logging.IsComponent(component) {
			return fmt.Errorf("config: logging.components: неизвестный компонент %q", component)
		}
		if _, err := logging.ParseLevel(level); err != nil {
			return fmt.Errorf("config: logging.components.%s: %w", component, err)
		}
	}
	return nil
}
