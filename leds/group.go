// Package leds blinks a fixed set of LEDs in the background.
package leds

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Writer sets an output line. gpio boards implement it.
type Writer interface {
	Write(pin int, on bool) error
}

// Group owns a set of LEDs. Every LED runs at most one blink at a time; a
// new command for an LED cancels whatever it was doing.
type Group struct {
	w    Writer
	pins []int
	log  log.FieldLogger

	mu      sync.Mutex
	running map[int]*blinker
	wg      sync.WaitGroup
	closed  bool
}

type blinker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewGroup takes ownership of pins and turns them all off.
func NewGroup(w Writer, pins []int, logger log.FieldLogger) *Group {
	if logger == nil {
		logger = log.StandardLogger()
	}
	g := &Group{
		w:       w,
		pins:    append([]int(nil), pins...),
		log:     logger,
		running: make(map[int]*blinker, len(pins)),
	}
	for _, pin := range g.pins {
		g.set(pin, false)
	}
	return g
}

// Blink flashes pin count times, on for on and off for off. A count of 0
// blinks until the LED gets another command or the group is closed.
func (g *Group) Blink(pin, count int, on, off time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.stop(pin)

	ctx, cancel := context.WithCancel(context.Background())
	b := &blinker{cancel: cancel, done: make(chan struct{})}
	g.running[pin] = b
	g.wg.Add(1)
	go g.blink(ctx, b, pin, count, on, off)
}

func (g *Group) BlinkAll(pins []int, count int, on, off time.Duration) {
	for _, pin := range pins {
		g.Blink(pin, count, on, off)
	}
}

// TurnOff cancels any blink on pin and switches it off.
func (g *Group) TurnOff(pin int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stop(pin)
	g.set(pin, false)
}

// Wait blocks until every finite blink has finished.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Close stops all blinks and turns every LED off. The group ignores further
// commands.
func (g *Group) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true

	var firstErr error
	for _, pin := range g.pins {
		g.stop(pin)
		if err := g.w.Write(pin, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	g.log.Debugln("lights off")
	return firstErr
}

// stop must be called with mu held. It returns once the blinker has
// released the line.
func (g *Group) stop(pin int) {
	b, ok := g.running[pin]
	if !ok {
		return
	}
	delete(g.running, pin)
	b.cancel()
	<-b.done
}

func (g *Group) blink(ctx context.Context, b *blinker, pin, count int, on, off time.Duration) {
	defer g.wg.Done()
	defer close(b.done)

	for i := 0; count == 0 || i < count; i++ {
		if !g.set(pin, true) {
			return
		}
		if !wait(ctx, on) {
			g.set(pin, false)
			return
		}
		if !g.set(pin, false) || !wait(ctx, off) {
			return
		}
	}
}

func (g *Group) set(pin int, on bool) bool {
	err := g.w.Write(pin, on)
	if err != nil {
		g.log.WithFields(log.Fields{
			"Pin":   pin,
			"State": on,
		}).Warnln("set light:", err)
		return false
	}
	return true
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
