package gpio

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	periph "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgeTimeout bounds each WaitForEdge so Watch notices cancellation.
const edgeTimeout = 100 * time.Millisecond

// Periph waits for edge interrupts through periph.io, one goroutine per
// button line.
type Periph struct {
	opts     Options
	debounce *Debouncer
	outputs  map[int]Line

	mu   sync.Mutex
	pins map[int]periph.PinIO
}

func OpenPeriph(opts Options) (*Periph, error) {
	opts.setDefaults()
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	p := &Periph{
		opts:     opts,
		debounce: NewDebouncer(opts.Settle, opts.Clock),
		outputs:  lineIndex(opts.Outputs),
		pins:     make(map[int]periph.PinIO, len(opts.Outputs)),
	}
	for _, l := range opts.Outputs {
		pin, err := p.pin(l.Pin)
		if err != nil {
			return nil, err
		}
		if err := pin.Out(periphLevel(l, false)); err != nil {
			return nil, fmt.Errorf("configure light (GPIO%d): %w", l.Pin, err)
		}
	}
	return p, nil
}

func (p *Periph) pin(n int) (periph.PinIO, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pin, ok := p.pins[n]; ok {
		return pin, nil
	}
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if pin == nil {
		return nil, unknownPin(n)
	}
	p.pins[n] = pin
	return pin, nil
}

func (p *Periph) Watch(ctx context.Context, lines []Line, pressed func(pin int)) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range lines {
		pin, err := p.pin(l.Pin)
		if err != nil {
			return err
		}
		pull, edge := periph.PullUp, periph.FallingEdge
		if l.Invert {
			pull, edge = periph.PullDown, periph.RisingEdge
		}
		if err := pin.In(pull, edge); err != nil {
			return fmt.Errorf("configure button (GPIO%d): %w", l.Pin, err)
		}

		l := l
		g.Go(func() error {
			for ctx.Err() == nil {
				if !pin.WaitForEdge(edgeTimeout) {
					continue
				}
				if !p.debounce.Allow(l.Pin) {
					continue
				}
				p.opts.Log.WithFields(log.Fields{
					"Pin":   l.Pin,
					"Level": pin.Read().String(),
				}).Debugln("button pressed")
				pressed(l.Pin)
			}
			return ctx.Err()
		})
	}
	return g.Wait()
}

func (p *Periph) Write(pin int, on bool) error {
	l, ok := p.outputs[pin]
	if !ok {
		return unknownPin(pin)
	}
	io, err := p.pin(pin)
	if err != nil {
		return err
	}
	return io.Out(periphLevel(l, on))
}

func (p *Periph) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, pin := range p.pins {
		if err := pin.Halt(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func periphLevel(l Line, on bool) periph.Level {
	return level(l, on) == HIGH
}
