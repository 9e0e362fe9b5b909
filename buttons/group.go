// Package buttons turns raw, already debounced button presses from several
// GPIO lines into an ordered stream of single and double press events.
//
// A double press shows up as two raw presses a few milliseconds apart. Each
// raw press is held back for a flush delay so that a second press arriving
// inside the coincidence window can upgrade it to a double before anything
// is emitted:
//
//	group := buttons.NewGroup(buttons.Config{})
//	defer group.Close()
//	board.Watch(ctx, lines, group.Trigger)
//
//	for press := range group.Events() {
//		if press.Double {
//			// reset
//		}
//	}
package buttons

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultWindow = 30 * time.Millisecond
	DefaultDelay  = 50 * time.Millisecond
)

var ErrClosed = errors.New("button group closed")

type Config struct {
	// Window is the longest gap between two raw presses that still counts
	// as one double press.
	Window time.Duration
	// Delay is how long a resolved press is held before it is emitted.
	// It must be longer than Window.
	Delay  time.Duration

	Clock clock.Clock
	Log   log.FieldLogger
}

type pending struct {
	press Press
	seq   uint64
}

// Group disambiguates the presses of one set of buttons.
type Group struct {
	clk    clock.Clock
	window time.Duration
	delay  time.Duration
	log    log.FieldLogger

	// mu guards slot, last, seq and queue as one unit.
	mu    sync.Mutex
	slot  *pending
	last  time.Time
	seq   uint64
	queue []Press

	wake      chan struct{}
	events    chan Press
	done      chan struct{}
	closeOnce sync.Once
}

func NewGroup(cfg Config) *Group {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Log == nil {
		cfg.Log = log.StandardLogger()
	}

	g := &Group{
		clk:    cfg.Clock,
		window: cfg.Window,
		delay:  cfg.Delay,
		log:    cfg.Log,
		wake:   make(chan struct{}, 1),
		events: make(chan Press, 1),
		done:   make(chan struct{}),
	}
	go g.emitLoop()
	return g
}

// Trigger records a raw press of pin. It never blocks and may be called
// concurrently from any number of edge handlers.
func (g *Group) Trigger(pin int) {
	select {
	case <-g.done:
		return
	default:
	}

	g.mu.Lock()
	now := g.clk.Now()
	elapsed := now.Sub(g.last)
	double := !g.last.IsZero() && elapsed < g.window

	if double {
		if g.slot == nil {
			g.seq++
			g.slot = &pending{seq: g.seq}
		}
		g.slot.press = DoublePress
	} else {
		// nothing can upgrade the held press anymore
		if g.slot != nil {
			g.push(g.slot.press)
		}
		g.seq++
		g.slot = &pending{press: Single(pin), seq: g.seq}
	}
	seq := g.slot.seq
	resolved := g.slot.press

	if now.After(g.last) {
		g.last = now
	}
	g.mu.Unlock()

	g.log.WithFields(log.Fields{
		"Pin":      pin,
		"Elapsed":  elapsed.String(),
		"Resolved": resolved.String(),
	}).Debugln("raw press")

	g.clk.AfterFunc(g.delay, func() { g.flush(seq) })
}

// flush emits the held press if it still belongs to the event seq.
// A flush that lost the race to an earlier one is a no-op.
func (g *Group) flush(seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.slot == nil || g.slot.seq != seq {
		return
	}
	g.push(g.slot.press)
	g.slot = nil
}

// push must be called with mu held.
func (g *Group) push(p Press) {
	g.queue = append(g.queue, p)
	select {
	case g.wake <- struct{}{}:
	default:
	}
}

func (g *Group) emitLoop() {
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			g.mu.Unlock()
			select {
			case <-g.wake:
				continue
			case <-g.done:
				return
			}
		}
		p := g.queue[0]
		g.queue = g.queue[1:]
		g.mu.Unlock()

		select {
		case g.events <- p:
		case <-g.done:
			return
		}
	}
}

// Next blocks until the next press is available.
func (g *Group) Next(ctx context.Context) (Press, error) {
	select {
	case p := <-g.events:
		return p, nil
	case <-ctx.Done():
		return Press{}, ctx.Err()
	case <-g.done:
		return Press{}, ErrClosed
	}
}

// Events returns the press stream. It is never closed; use Next to observe
// Close.
func (g *Group) Events() <-chan Press {
	return g.events
}

// Close stops emitting. Presses still held or queued are dropped.
func (g *Group) Close() {
	g.closeOnce.Do(func() {
		close(g.done)
	})
}
