package sim

import (
	"sync"
	"time"
)

// TickSource delivers the fixed cadence that drives a Session. Each tick
// advances exactly one step; missed ticks are never caught up.
type TickSource interface {
	C() <-chan time.Time
	Stop()
}

// WallTicker ticks on wall-clock time.
type WallTicker struct {
	ticker *time.Ticker
}

func NewWallTicker(period time.Duration) *WallTicker {
	return &WallTicker{ticker: time.NewTicker(period)}
}

func (w *WallTicker) C() <-chan time.Time { return w.ticker.C }
func (w *WallTicker) Stop()               { w.ticker.Stop() }

// ManualTicker ticks only when Tick is called.
type ManualTicker struct {
	ch       chan time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		ch:   make(chan time.Time),
		done: make(chan struct{}),
	}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

// Tick blocks until the consumer receives the tick. It reports false once
// the ticker is stopped.
func (m *ManualTicker) Tick() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-m.done:
		return false
	}
}

func (m *ManualTicker) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}
