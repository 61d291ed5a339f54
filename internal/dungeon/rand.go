package dungeon

import (
	"math/rand"
	"time"
)

// Rand явный источник случайности генератора.
// Удовлетворяет graph.Rand.
type Rand struct {
	r    *rand.Rand
	seed int64
}

// NewRand создаёт генератор. seed == 0 означает зерно от текущего времени;
// фактическое зерно доступно через Seed().
func NewRand(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Rand{r: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed зерно, которым инициализирован генератор
func (r *Rand) Seed() int64 { return r.seed }

// RandRange случайное целое из [min, max] включительно
func (r *Rand) RandRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.r.Intn(max-min+1)
}

// Intn случайное целое из [0, n)
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.Intn(n)
}

func (r *Rand) Float64() float64 { return r.r.Float64() }

func (r *Rand) Shuffle(n int, swap func(i, j int)) { r.r.Shuffle(n, swap) }

// IntervalStep случайное значение min + k*step, не превышающее max
func (r *Rand) IntervalStep(min, max, step int) int {
	if step <= 0 {
		step = 1
	}
	return min + r.RandRange(0, (max-min)/step)*step
}
