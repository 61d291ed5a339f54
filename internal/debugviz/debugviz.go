// Package debugviz отладочный вывод генератора: журнал и HTML-срезы этажей.
package debugviz

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var stateColors = map[grid.CellState]string{
	grid.Blocked:  "#6e6e6e",
	grid.Room:     "#35b779",
	grid.Corridor: "#3e4989",
	grid.Stairs:   "#fde725",
}

// Sink накапливает классификацию ячеек и пути последнего прогона
type Sink struct {
	mu    sync.Mutex
	log   *logging.Logger
	cells map[int][]cell // по высоте этажа
	paths [][]vec.Vec3
}

type cell struct {
	pos   vec.Vec3
	state grid.CellState
}

// NewSink создаёт пустой приёмник
func NewSink() *Sink {
	return &Sink{log: logging.GetDungeonLogger(), cells: make(map[int][]cell)}
}

// Cells запоминает все непустые ячейки сетки
func (s *Sink) Cells(g *grid.Grid) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cells = make(map[int][]cell)
	counts := make(map[grid.CellState]int)
	g.ForEach(func(pos vec.Vec3, st grid.CellState) {
		if st == grid.Empty {
			return
		}
		s.cells[pos.Z] = append(s.cells[pos.Z], cell{pos: pos, state: st})
		counts[st]++
	})
	s.log.Debug("🔍 Ячейки: room=%d corridor=%d stairs=%d blocked=%d",
		counts[grid.Room], counts[grid.Corridor], counts[grid.Stairs], counts[grid.Blocked])
}

// Path запоминает вырезанный путь
func (s *Sink) Path(path []vec.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paths = append(s.paths, append([]vec.Vec3(nil), path...))
	if len(path) > 0 {
		s.log.Debug("🔍 Путь %v -> %v, длина %d", path[0], path[len(path)-1], len(path))
	}
}

// Paths копия накопленных путей
func (s *Sink) Paths() [][]vec.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]vec.Vec3(nil), s.paths...)
}

// Floors высоты этажей, на которых есть непустые ячейки, по возрастанию
func (s *Sink) Floors() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	floors := make([]int, 0, len(s.cells))
	for z := range s.cells {
		floors = append(floors, z)
	}
	sort.Ints(floors)
	return floors
}

// Render пишет HTML-страницу: по одному графику рассеяния на этаж
func (s *Sink) Render(w io.Writer) error {
	floors := s.Floors()

	s.mu.Lock()
	page := components.NewPage()
	page.PageTitle = "Dungeon debug"
	for _, z := range floors {
		page.AddCharts(s.floorChart(z))
	}
	s.mu.Unlock()

	return page.Render(w)
}

// WriteFile сохраняет страницу в файл
func (s *Sink) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("debugviz: %w", err)
	}
	defer f.Close()

	if err := s.Render(f); err != nil {
		return fmt.Errorf("debugviz: render: %w", err)
	}
	s.log.Info("🗺️ Отладочная карта записана в %s", path)
	return nil
}

func (s *Sink) floorChart(z int) *charts.Scatter {
	series := make(map[grid.CellState][]opts.ScatterData)
	for _, c := range s.cells[z] {
		series[c.state] = append(series[c.state], opts.ScatterData{
			Value: []interface{}{c.pos.X, c.pos.Y},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("z=%d", z), Subtitle: fmt.Sprintf("cells=%d", len(s.cells[z]))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y", NameLocation: "middle", NameGap: 30}),
	)

	for _, st := range []grid.CellState{grid.Blocked, grid.Room, grid.Corridor, grid.Stairs} {
		data, ok := series[st]
		if !ok {
			continue
		}
		scatter.AddSeries(st.String(), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: stateColors[st]}),
		)
	}
	return scatter
}
