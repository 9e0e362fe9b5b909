// Package gpio reads buttons and drives LEDs through one of several
// backends. Pins are always BCM GPIO numbers.
package gpio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

const (
	LOW  = 0
	HIGH = 1
)

var ErrUnknownPin = errors.New("unknown pin")

// Line is one GPIO line. Inputs read active low unless Invert is set,
// outputs drive high for "on" unless Invert is set.
type Line struct {
	Pin    int
	Invert bool
}

// Board is a set of button inputs and LED outputs.
type Board interface {
	// Watch calls pressed once per debounced activation of any of the
	// lines until ctx is done. pressed may be called concurrently.
	Watch(ctx context.Context, lines []Line, pressed func(pin int)) error
	// Write switches an output line configured at Open.
	Write(pin int, on bool) error
	Close() error
}

// Options are shared by all backends.
type Options struct {
	Outputs      []Line
	// Settle is the time a line must stay quiet after an activation
	// before another one counts.
	Settle       time.Duration
	// PollInterval is only used by backends without edge detection.
	PollInterval time.Duration

	Clock clock.Clock
	Log   log.FieldLogger
}

func (o *Options) setDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Millisecond
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Log == nil {
		o.Log = log.StandardLogger()
	}
}

func lineIndex(lines []Line) map[int]Line {
	idx := make(map[int]Line, len(lines))
	for _, l := range lines {
		idx[l.Pin] = l
	}
	return idx
}

// level returns the output level for the on state of l.
func level(l Line, on bool) byte {
	if l.Invert != on {
		// no invert and on
		// or invert and off
		return HIGH
	}
	return LOW
}

// active reports whether val read from l means pressed.
func active(l Line, val int) bool {
	return (val == LOW) != l.Invert
}

func unknownPin(pin int) error {
	return fmt.Errorf("%w: %d", ErrUnknownPin, pin)
}
