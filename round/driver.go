package round

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mastercactapus/simonsays/buttons"
)

type Outcome int

const (
	Won Outcome = iota + 1
	Lost
	// Reset means the player abandoned the round with a double press.
	Reset
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// EventSource is the ordered press stream, usually a *buttons.Group.
type EventSource interface {
	Next(ctx context.Context) (buttons.Press, error)
}

// Lights drives the LEDs. A count of 0 blinks until the LED gets another
// command.
type Lights interface {
	Blink(pin, count int, on, off time.Duration)
	BlinkAll(pins []int, count int, on, off time.Duration)
	TurnOff(pin int)
}

type Timing struct {
	// ShowOn and ShowOff are used for each element while the prefix is
	// replayed, ShowGap separates elements.
	ShowOn, ShowOff, ShowGap time.Duration

	// EchoOn and EchoOff confirm a player's press.
	EchoOn, EchoOff time.Duration

	// TurnGap is the pause after a completed turn, RoundGap the pause after
	// outcome feedback.
	TurnGap, RoundGap time.Duration
}

var DefaultTiming = Timing{
	ShowOn:   400 * time.Millisecond,
	ShowOff:  400 * time.Millisecond,
	ShowGap:  time.Second,
	EchoOn:   400 * time.Millisecond,
	EchoOff:  300 * time.Millisecond,
	TurnGap:  time.Second,
	RoundGap: 2 * time.Second,
}

// Driver plays rounds: it replays the revealed prefix on the LEDs, then
// collects one press per element and judges the answer.
type Driver struct {
	Events   EventSource
	Lights   Lights
	// LightFor maps button pins to LED pins.
	LightFor map[int]int

	WinLight  int
	LoseLight int

	Timing Timing
	Log    log.FieldLogger
}

func NewDriver(events EventSource, lights Lights, lightFor map[int]int) *Driver {
	return &Driver{
		Events:   events,
		Lights:   lights,
		LightFor: lightFor,
		Timing:   DefaultTiming,
		Log:      log.StandardLogger(),
	}
}

// Play runs r until the player wins, loses or resets. It only returns an
// error if ctx is done or the event source fails.
func (d *Driver) Play(ctx context.Context, r *Round) (Outcome, error) {
	lg := d.Log.WithField("Round", r.ID().String())
	lg.WithField("Length", r.Len()).Infoln("round started")

	for {
		lg.WithField("Turn", r.Turn()).Debugln("presenting")
		for _, pin := range r.Prefix() {
			d.Lights.Blink(d.light(pin), 1, d.Timing.ShowOn, d.Timing.ShowOff)
			if err := sleep(ctx, d.Timing.ShowGap); err != nil {
				return 0, err
			}
		}

		lg.WithField("Turn", r.Turn()).Infoln("waiting for presses")
		outcome, err := d.await(ctx, r, lg)
		if err != nil {
			return 0, err
		}
		if outcome != 0 {
			lg.WithField("Outcome", outcome.String()).Infoln("round over")
			return outcome, nil
		}
		if r.Finished() {
			lg.WithField("Outcome", Won.String()).Infoln("round over")
			return Won, nil
		}

		r.Advance()
		if err := sleep(ctx, d.Timing.TurnGap); err != nil {
			return 0, err
		}
	}
}

// await collects the answer for the current turn. A zero Outcome means the
// whole prefix was reproduced.
func (d *Driver) await(ctx context.Context, r *Round, lg log.FieldLogger) (Outcome, error) {
	answer := make([]int, 0, r.Turn())
	for len(answer) < r.Turn() {
		p, err := d.Events.Next(ctx)
		if err != nil {
			return 0, err
		}
		if p.Double {
			lg.Infoln("double press")
			d.darken()
			return Reset, nil
		}

		light, ok := d.LightFor[p.Pin]
		if !ok {
			lg.WithField("Pin", p.Pin).Warnln("press from unmapped button ignored")
			continue
		}
		lg.WithFields(log.Fields{
			"Pin":   p.Pin,
			"Light": light,
		}).Debugln("press")

		answer = append(answer, p.Pin)
		d.Lights.Blink(light, 1, d.Timing.EchoOn, d.Timing.EchoOff)
		if !r.Matches(answer) {
			return Lost, nil
		}
	}
	return 0, nil
}

// Feedback shows the outcome of a round on the LEDs and waits RoundGap.
func (d *Driver) Feedback(ctx context.Context, o Outcome) error {
	switch o {
	case Won:
		d.Lights.Blink(d.WinLight, 5, 200*time.Millisecond, 150*time.Millisecond)
	case Lost:
		d.Lights.Blink(d.LoseLight, 3, 150*time.Millisecond, 150*time.Millisecond)
	case Reset:
		d.Lights.BlinkAll(d.lights(), 2, 300*time.Millisecond, 300*time.Millisecond)
	}
	return sleep(ctx, d.Timing.RoundGap)
}

func (d *Driver) light(pin int) int {
	light, ok := d.LightFor[pin]
	if !ok {
		panic(fmt.Sprintf("no light mapped to button pin %d", pin))
	}
	return light
}

func (d *Driver) lights() []int {
	seen := make(map[int]bool, len(d.LightFor))
	pins := make([]int, 0, len(d.LightFor))
	for _, light := range d.LightFor {
		if seen[light] {
			continue
		}
		seen[light] = true
		pins = append(pins, light)
	}
	sort.Ints(pins)
	return pins
}

// darken turns off every mapped light so a reset never leaves an echo
// blinking.
func (d *Driver) darken() {
	for _, light := range d.lights() {
		d.Lights.TurnOff(light)
	}
}

func sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
