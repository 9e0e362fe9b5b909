package gpio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nsf/termbox-go"
)

// ErrQuit is returned by Terminal.Watch when the player leaves the simulator.
var ErrQuit = errors.New("simulator closed")

// Lamp is an LED drawn by the terminal simulator.
type Lamp struct {
	Pin   int
	Name  string
	Color string
	// Key is the key of the button paired with the lamp, if any.
	Key   rune
}

var lampColors = map[string]termbox.Attribute{
	"red":     termbox.ColorRed,
	"green":   termbox.ColorGreen,
	"blue":    termbox.ColorBlue,
	"yellow":  termbox.ColorYellow,
	"magenta": termbox.ColorMagenta,
	"cyan":    termbox.ColorCyan,
	"white":   termbox.ColorWhite,
}

// Terminal simulates the board in a terminal: keys press buttons, the
// space bar presses two buttons at once and lamps are drawn as blocks.
type Terminal struct {
	opts     Options
	debounce *Debouncer
	lamps    []Lamp
	keys     map[rune]int

	mu  sync.Mutex
	lit map[int]bool
}

// OpenTerminal takes over the terminal until Close. keys maps keyboard
// runes to button pins.
func OpenTerminal(lamps []Lamp, keys map[rune]int, opts Options) (*Terminal, error) {
	opts.setDefaults()
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	t := &Terminal{
		opts:     opts,
		debounce: NewDebouncer(opts.Settle, opts.Clock),
		lamps:    lamps,
		keys:     keys,
		lit:      make(map[int]bool, len(lamps)),
	}
	t.mu.Lock()
	t.draw()
	t.mu.Unlock()
	return t, nil
}

func (t *Terminal) Watch(ctx context.Context, lines []Line, pressed func(pin int)) error {
	watched := make(map[int]bool, len(lines))
	var double []int
	for _, l := range lines {
		watched[l.Pin] = true
		if len(double) < 2 {
			double = append(double, l.Pin)
		}
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			termbox.Interrupt()
		case <-stop:
		}
	}()

	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return err
			}
		case termbox.EventError:
			return fmt.Errorf("read terminal: %w", ev.Err)
		case termbox.EventResize:
			t.mu.Lock()
			t.draw()
			t.mu.Unlock()
		case termbox.EventKey:
			switch {
			case ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC:
				return ErrQuit
			case ev.Key == termbox.KeySpace:
				for _, pin := range double {
					pressed(pin)
				}
			default:
				pin, ok := t.keys[ev.Ch]
				if !ok || !watched[pin] || !t.debounce.Allow(pin) {
					continue
				}
				t.opts.Log.WithField("Pin", pin).Debugln("button pressed")
				pressed(pin)
			}
		}
	}
}

func (t *Terminal) Write(pin int, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, l := range t.lamps {
		if l.Pin == pin {
			t.lit[pin] = on
			t.draw()
			return nil
		}
	}
	return unknownPin(pin)
}

func (t *Terminal) Close() error {
	termbox.Close()
	return nil
}

// draw must be called with mu held.
func (t *Terminal) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	printAt(0, 0, termbox.ColorDefault, "simonsays: press the lamp keys, space for a double press, esc to quit")

	for i, l := range t.lamps {
		y := 2 + i*2
		bg := termbox.ColorDefault
		if t.lit[l.Pin] {
			bg = lampColors[l.Color]
			if bg == termbox.ColorDefault {
				bg = termbox.ColorWhite
			}
		}
		for x := 2; x < 8; x++ {
			termbox.SetCell(x, y, ' ', termbox.ColorDefault, bg)
		}
		label := l.Name
		if l.Key != 0 {
			label = fmt.Sprintf("%s [%c]", l.Name, l.Key)
		}
		printAt(10, y, termbox.ColorDefault, label)
	}
	termbox.Flush()
}

func printAt(x, y int, fg termbox.Attribute, s string) {
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x++
	}
}
