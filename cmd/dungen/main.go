package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/annel0/dungeon-gen/internal/config"
	"github.com/annel0/dungeon-gen/internal/debugviz"
	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/vec"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML конфигурация (или ENV DUNGEON_CONFIG)")
		seed       = flag.Int64("seed", 0, "зерно генерации (0: из конфигурации)")
		budget     = flag.Int("budget", 30, "число попыток размещения комнат")
		origin     = flag.String("origin", "10,10,10", "точка входа x,y,z в мировых единицах")
		floorBased = flag.Bool("floors", false, "поэтажная генерация")
		out        = flag.String("out", "", "записать снимок подземелья в JSON файл")
		debugHTML  = flag.String("debug", "", "записать HTML визуализацию сетки (включает debug режим)")
		verbose    = flag.Bool("v", false, "подробный лог")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, overrides := logging.WARN, cfg.Logging.Components
	if *verbose {
		level, overrides = logging.DEBUG, nil
	}
	loggers := logging.GetLoggerManager()
	if err := loggers.Configure(level, overrides); err != nil {
		log.Fatalf("❌ Ошибка настройки уровней логирования: %v", err)
	}
	defer loggers.CloseAll()

	dcfg := cfg.Dungeon
	if *seed != 0 {
		dcfg.Seed = *seed
	}
	if *floorBased {
		dcfg.FloorBased = true
	}

	at, err := parseOrigin(*origin)
	if err != nil {
		log.Fatalf("❌ Некорректный origin: %v", err)
	}

	var opts []dungeon.Option
	var sink *debugviz.Sink
	if *debugHTML != "" {
		dcfg.DebugMode = true
		sink = debugviz.NewSink()
		opts = append(opts, dungeon.WithDebugSink(sink))
	}

	gen, err := dungeon.NewGenerator(dcfg, cfg.Templates, opts...)
	if err != nil {
		log.Fatalf("❌ Ошибка создания генератора: %v", err)
	}

	res, err := gen.GenerateDungeon(context.Background(), at, *budget)
	if err != nil {
		log.Fatalf("❌ Ошибка генерации: %v", err)
	}

	fmt.Printf("🏰 Подземелье %s (seed %d) за %s\n", res.ID, res.Seed, res.Duration)
	fmt.Printf("   комнаты: %d, коридоры: %d, лестницы: %d, двери: %d, структуры: %d\n",
		len(res.Rooms), len(res.Hallways), len(res.Staircases), len(res.Doors), len(res.Structures))
	if dcfg.FloorBased {
		fmt.Printf("   этаж: %d\n", res.Floor.Current)
	}

	if *out != "" {
		data, err := json.MarshalIndent(res.Snapshot(), "", "  ")
		if err != nil {
			log.Fatalf("❌ Ошибка сериализации: %v", err)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatalf("❌ Ошибка записи %s: %v", *out, err)
		}
		fmt.Printf("💾 Снимок записан в %s\n", *out)
	}

	if sink != nil {
		if err := sink.WriteFile(*debugHTML); err != nil {
			log.Fatalf("❌ Ошибка записи %s: %v", *debugHTML, err)
		}
		fmt.Printf("📊 Визуализация записана в %s\n", *debugHTML)
	}
}

// parseOrigin парсит строку "x,y,z"
func parseOrigin(s string) (vec.Vec3Float, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vec.Vec3Float{}, fmt.Errorf("ожидается x,y,z, получено %q", s)
	}
	var coords [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return vec.Vec3Float{}, err
		}
		coords[i] = v
	}
	return vec.Vec3Float{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
