package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/dungeon-gen/internal/api"
	"github.com/annel0/dungeon-gen/internal/cache"
	"github.com/annel0/dungeon-gen/internal/config"
	"github.com/annel0/dungeon-gen/internal/eventbus"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/metrics"
	"github.com/annel0/dungeon-gen/internal/observability"
	"github.com/annel0/dungeon-gen/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или ENV DUNGEON_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// === ЛОГИРОВАНИЕ ===
	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	loggers := logging.GetLoggerManager()
	if err := loggers.Configure(cfg.Logging.ConsoleLevel(), cfg.Logging.Components); err != nil {
		log.Fatalf("❌ Ошибка настройки уровней логирования: %v", err)
	}
	defer func() {
		if err := loggers.CloseAll(); err != nil {
			log.Printf("⚠️ Ошибка закрытия логов компонентов: %v", err)
		}
	}()

	logging.Info("🏰 Запуск генератора подземелий...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ТРАССИРОВКА ===
	if cfg.Telemetry.Endpoint != "" {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.Service, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure)
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry недоступен: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	genMetrics := metrics.NewGeneration(registry)

	// === ШИНА СОБЫТИЙ ===
	bus, err := newEventBus(cfg.EventBus)
	if err != nil {
		log.Fatalf("❌ Ошибка подключения к шине событий: %v", err)
	}
	defer bus.Close()

	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		logging.Warn("⚠️ Не удалось запустить слушатель событий: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, registry)
	exporter.Start()
	defer exporter.Stop()

	// === ХРАНИЛИЩЕ ===
	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища: %v", err)
	}
	defer store.Close()

	// === REST API ===
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server := api.NewRestServer(api.Config{
		Port:          restPort,
		Dungeon:       cfg.Dungeon,
		Catalog:       cfg.Templates,
		Store:         store,
		Replicator:    eventbus.NewReplicator(bus, "dungeon-gen"),
		Metrics:       genMetrics,
		Registry:      registry,
		DefaultBudget: cfg.Server.DefaultBudget,
		MaxBudget:     cfg.Server.MaxBudget,
	})

	go func() {
		if err := server.Start(); err != nil {
			logging.Error("❌ REST API остановлен с ошибкой: %v", err)
			cancel()
		}
	}()

	logging.Info("✅ Сервис запущен")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("💡 curl -X POST http://localhost%s/api/dungeons -d '{\"seed\":42,\"budget\":30}'", restPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case <-ctx.Done():
	}

	// === GRACEFUL SHUTDOWN ===
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := server.Stop(stopCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("📨 Шина событий в памяти")
		return eventbus.NewMemoryBus(1024), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, err
	}
	logging.Info("📨 JetStream шина подключена: %s", cfg.URL)
	return bus, nil
}

// newStore хранилище с кешем перед ним: Redis, если задан URL, иначе LRU в памяти
func newStore(cfg *config.Config) (storage.LayoutStore, error) {
	var base storage.LayoutStore
	if cfg.Storage.DataPath == "" {
		logging.Warn("⚠️ storage.data_path не задан, подземелья хранятся в памяти")
		base = storage.NewMemoryStore()
	} else {
		bs, err := storage.NewBadgerStore(cfg.Storage.DataPath)
		if err != nil {
			return nil, err
		}
		base = bs
	}

	var c cache.Cache
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.Cache)
		if err != nil {
			logging.Warn("⚠️ Redis недоступен (%v), используется кеш в памяти", err)
		} else {
			c = rc
		}
	}
	if c == nil {
		c = cache.NewMemoryCache(cfg.Cache.MemoryEntries)
	}
	return cache.NewCachedStore(base, c, cfg.Cache.DefaultTTL), nil
}
