package gpio

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer drops activations of a pin that follow the previous accepted
// one within the settle time.
type Debouncer struct {
	settle time.Duration
	clk    clock.Clock

	mu   sync.Mutex
	last map[int]time.Time
}

func NewDebouncer(settle time.Duration, clk clock.Clock) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{
		settle: settle,
		clk:    clk,
		last:   make(map[int]time.Time),
	}
}

// Allow reports whether an activation of pin seen now should count.
func (d *Debouncer) Allow(pin int) bool {
	now := d.clk.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.last[pin]; ok && now.Sub(last) < d.settle {
		return false
	}
	d.last[pin] = now
	return true
}
