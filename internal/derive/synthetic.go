package derive

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// SyntheticMetrics produces placeholder vendor KPIs for records whose
// upstream row has none. The values are demo data, not measurements, and
// every view using them must say so.
type SyntheticMetrics struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticMetrics seeds the generator; seed 0 uses the current time.
func NewSyntheticMetrics(seed int64) *SyntheticMetrics {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SyntheticMetrics{rng: rand.New(rand.NewSource(seed))}
}

// OnTimePercentage returns a random integer percentage in [85, 100].
func (s *SyntheticMetrics) OnTimePercentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 85 + s.rng.Intn(16)
}

// JobsPerMonth spreads total jobs evenly over a year, rounded to the nearest
// integer.
func JobsPerMonth(totalJobs int) int {
	return int(math.Round(float64(NonNegative(totalJobs)) / 12))
}
