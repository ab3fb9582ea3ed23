package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines   int
	Iterations   int // Budget
	Episodes     int // Completed iterations
	Duration     time.Duration
	MaxDepth     int
	RolloutMoves int
	TreeSize     int
	IsTreeReset  bool
	Fallback     bool // Move was not chosen by the search
}

type MoveMetric struct {
	Step   int
	Player string
	Move   string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer string
	Result         string
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(goroutines, iterations int)
	SetTreeReset(value bool)
	SetTreeSize(size int)
	AddEpisode(depth, rolloutMoves int)
	Complete() SearchMetric
}

type collector struct {
	goroutines   int
	iterations   int
	startTime    time.Time
	episodes     atomic.Int32
	maxDepth     atomic.Int32
	rolloutMoves atomic.Int64
	treeSize     atomic.Int32
	isTreeReset  atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines, iterations int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.iterations = iterations
	m.episodes.Store(0)
	m.maxDepth.Store(0)
	m.rolloutMoves.Store(0)
	m.treeSize.Store(0)
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) SetTreeSize(size int) {
	m.treeSize.Store(int32(size))
}

func (m *collector) AddEpisode(depth, rolloutMoves int) {
	m.episodes.Add(1)
	m.rolloutMoves.Add(int64(rolloutMoves))
	for {
		current := m.maxDepth.Load()
		if int32(depth) <= current || m.maxDepth.CompareAndSwap(current, int32(depth)) {
			return
		}
	}
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:   m.goroutines,
		Iterations:   m.iterations,
		Episodes:     int(m.episodes.Load()),
		Duration:     time.Since(m.startTime),
		MaxDepth:     int(m.maxDepth.Load()),
		RolloutMoves: int(m.rolloutMoves.Load()),
		TreeSize:     int(m.treeSize.Load()),
		IsTreeReset:  m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, iterations int)   {}
func (m *dummyCollector) SetTreeReset(value bool)            {}
func (m *dummyCollector) SetTreeSize(size int)               {}
func (m *dummyCollector) AddEpisode(depth, rolloutMoves int) {}
func (m *dummyCollector) Complete() SearchMetric             { return SearchMetric{} }
