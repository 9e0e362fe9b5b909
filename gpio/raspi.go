package gpio

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gobot.io/x/gobot/v2/platforms/raspi"
)

// DigitalIO is the part of a gobot adaptor the polled backend needs. Pins
// are physical header pin names.
type DigitalIO interface {
	DigitalRead(pin string) (int, error)
	DigitalWrite(pin string, val byte) error
}

// Raspi polls button lines through gobot's raspi adaptor. It has no edge
// detection, so every line is read once per poll interval.
type Raspi struct {
	io      DigitalIO
	closer  func() error
	opts    Options
	outputs map[int]Line
}

type pollState struct {
	pressed bool
	changed time.Time
}

func OpenRaspi(opts Options) (*Raspi, error) {
	a := raspi.NewAdaptor()
	if err := a.Connect(); err != nil {
		return nil, fmt.Errorf("connect raspi: %w", err)
	}
	return NewPolled(a, a.Finalize, opts)
}

// NewPolled builds the polled backend on top of any gobot style adaptor.
// closer may be nil.
func NewPolled(io DigitalIO, closer func() error, opts Options) (*Raspi, error) {
	opts.setDefaults()
	for _, l := range opts.Outputs {
		if _, err := HeaderPin(l.Pin); err != nil {
			return nil, err
		}
	}
	return &Raspi{
		io:      io,
		closer:  closer,
		opts:    opts,
		outputs: lineIndex(opts.Outputs),
	}, nil
}

func (r *Raspi) Watch(ctx context.Context, lines []Line, pressed func(pin int)) error {
	for _, l := range lines {
		if _, err := HeaderPin(l.Pin); err != nil {
			return err
		}
	}

	states := make(map[int]*pollState, len(lines))
	for _, l := range lines {
		states[l.Pin] = &pollState{}
	}

	t := r.opts.Clock.Ticker(r.opts.PollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-t.C:
			if err := r.scan(n, lines, states, pressed); err != nil {
				return err
			}
		}
	}
}

func (r *Raspi) scan(n time.Time, lines []Line, states map[int]*pollState, pressed func(pin int)) error {
	for _, l := range lines {
		name, _ := HeaderPin(l.Pin)
		val, err := r.io.DigitalRead(name)
		if err != nil {
			return fmt.Errorf("read button (GPIO%d): %w", l.Pin, err)
		}

		st := states[l.Pin]
		state := active(l, val)
		if state == st.pressed {
			continue
		}
		duration := n.Sub(st.changed)
		if duration < r.opts.Settle {
			continue
		}
		st.pressed = state
		st.changed = n

		if !state {
			r.opts.Log.WithFields(log.Fields{
				"Pin":      l.Pin,
				"Duration": duration.String(),
			}).Debugln("button released")
			continue
		}
		r.opts.Log.WithField("Pin", l.Pin).Debugln("button pressed")
		pressed(l.Pin)
	}
	return nil
}

func (r *Raspi) Write(pin int, on bool) error {
	l, ok := r.outputs[pin]
	if !ok {
		return unknownPin(pin)
	}
	name, err := HeaderPin(pin)
	if err != nil {
		return err
	}
	return r.io.DigitalWrite(name, level(l, on))
}

func (r *Raspi) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
