package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mastercactapus/simonsays/buttons"
	"github.com/mastercactapus/simonsays/gpio"
)

var ErrInvalidName = errors.New("invalid name")

const (
	BackendRaspi    = "raspi"
	BackendPeriph   = "periph"
	BackendTerminal = "terminal"
)

type Config struct {
	Backend        string
	DebounceMs     int64
	PollIntervalMs int64
	DoublePressMs  int64
	FlushDelayMs   int64
	Length         int

	WinLight  string
	LoseLight string

	Button []Button
	Light  []Light
}

type Button struct {
	Name   string
	Pin    int
	Light  string
	Invert bool
	// Key presses the button in the terminal simulator.
	Key    string
}

type Light struct {
	Name   string
	Pin    int
	Invert bool
	// Color is used by the terminal simulator.
	Color  string
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
func (c *Config) DoublePress() time.Duration {
	return time.Duration(c.DoublePressMs) * time.Millisecond
}
func (c *Config) FlushDelay() time.Duration {
	return time.Duration(c.FlushDelayMs) * time.Millisecond
}

func (c *Config) setDefaults() {
	if c.Backend == "" {
		c.Backend = BackendRaspi
	}
	if c.DebounceMs == 0 {
		c.DebounceMs = DefaultDebounceMs
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.DoublePressMs == 0 {
		c.DoublePressMs = buttons.DefaultWindow.Milliseconds()
	}
	if c.FlushDelayMs == 0 {
		c.FlushDelayMs = buttons.DefaultDelay.Milliseconds()
	}
	if c.Length == 0 {
		c.Length = DefaultLength
	}
	if len(c.Light) > 0 {
		if c.LoseLight == "" {
			c.LoseLight = c.Light[0].Name
		}
		if c.WinLight == "" {
			c.WinLight = c.Light[len(c.Light)-1].Name
		}
	}
}

// Validate applies defaults and checks that every name and pin resolves.
func (c *Config) Validate() error {
	c.setDefaults()

	switch c.Backend {
	case BackendRaspi, BackendPeriph, BackendTerminal:
	default:
		return fmt.Errorf("unknown backend '%s'", c.Backend)
	}
	if len(c.Button) == 0 {
		return errors.New("no buttons configured")
	}
	if len(c.Light) == 0 {
		return errors.New("no lights configured")
	}
	if c.Length < 1 {
		return fmt.Errorf("invalid length %d", c.Length)
	}
	if c.DebounceMs < 0 || c.PollIntervalMs < 0 || c.DoublePressMs < 0 {
		return errors.New("durations must not be negative")
	}
	if c.FlushDelayMs <= c.DoublePressMs {
		return fmt.Errorf("FlushDelayMs (%d) must be longer than DoublePressMs (%d)", c.FlushDelayMs, c.DoublePressMs)
	}

	pins := make(map[int]string, len(c.Button)+len(c.Light))
	claim := func(pin int, name string) error {
		if other, ok := pins[pin]; ok {
			return fmt.Errorf("pin %d used by both '%s' and '%s'", pin, other, name)
		}
		pins[pin] = name
		return nil
	}

	lights := make(map[string]bool, len(c.Light))
	for _, l := range c.Light {
		if l.Name == "" || lights[l.Name] {
			return fmt.Errorf("%w: light '%s'", ErrInvalidName, l.Name)
		}
		lights[l.Name] = true
		if err := claim(l.Pin, l.Name); err != nil {
			return err
		}
	}

	keys := make(map[string]string, len(c.Button))
	names := make(map[string]bool, len(c.Button))
	for _, b := range c.Button {
		if b.Name == "" || names[b.Name] || lights[b.Name] {
			return fmt.Errorf("%w: button '%s'", ErrInvalidName, b.Name)
		}
		names[b.Name] = true
		if !lights[b.Light] {
			return fmt.Errorf("unknown light identifier '%s' for button '%s'", b.Light, b.Name)
		}
		if err := claim(b.Pin, b.Name); err != nil {
			return err
		}
		if b.Key == "" {
			continue
		}
		if utf8.RuneCountInString(b.Key) != 1 {
			return fmt.Errorf("key '%s' for button '%s' must be a single character", b.Key, b.Name)
		}
		if other, ok := keys[b.Key]; ok {
			return fmt.Errorf("key '%s' used by both '%s' and '%s'", b.Key, other, b.Name)
		}
		keys[b.Key] = b.Name
	}

	for field, name := range map[string]string{"WinLight": c.WinLight, "LoseLight": c.LoseLight} {
		if !lights[name] {
			return fmt.Errorf("unknown light identifier '%s' in %s", name, field)
		}
	}

	return nil
}

func (c *Config) light(name string) (Light, error) {
	for _, l := range c.Light {
		if l.Name == name {
			return l, nil
		}
	}
	return Light{}, fmt.Errorf("%w: %s", ErrInvalidName, name)
}

// LightFor maps button pins to the pins of their lights.
func (c *Config) LightFor() (map[int]int, error) {
	m := make(map[int]int, len(c.Button))
	for _, b := range c.Button {
		l, err := c.light(b.Light)
		if err != nil {
			return nil, err
		}
		m[b.Pin] = l.Pin
	}
	return m, nil
}

func (c *Config) ButtonPins() []int {
	pins := make([]int, len(c.Button))
	for i, b := range c.Button {
		pins[i] = b.Pin
	}
	return pins
}

func (c *Config) ButtonLines() []gpio.Line {
	lines := make([]gpio.Line, len(c.Button))
	for i, b := range c.Button {
		lines[i] = gpio.Line{Pin: b.Pin, Invert: b.Invert}
	}
	return lines
}

func (c *Config) LightLines() []gpio.Line {
	lines := make([]gpio.Line, len(c.Light))
	for i, l := range c.Light {
		lines[i] = gpio.Line{Pin: l.Pin, Invert: l.Invert}
	}
	return lines
}

func (c *Config) LightPins() []int {
	pins := make([]int, len(c.Light))
	for i, l := range c.Light {
		pins[i] = l.Pin
	}
	return pins
}

// Keys maps simulator keys to button pins. Buttons without a Key get the
// first free letter of their name.
func (c *Config) Keys() map[rune]int {
	keys := make(map[rune]int, len(c.Button))
	for _, b := range c.Button {
		if b.Key != "" {
			r, _ := utf8.DecodeRuneInString(b.Key)
			keys[r] = b.Pin
		}
	}
	for _, b := range c.Button {
		if b.Key != "" {
			continue
		}
		for _, r := range strings.ToLower(b.Name) {
			if _, taken := keys[r]; !taken {
				keys[r] = b.Pin
				break
			}
		}
	}
	return keys
}

// Lamps describes the lights for the terminal simulator, in config order,
// with the key of the button that lights each one.
func (c *Config) Lamps() []gpio.Lamp {
	keyFor := make(map[int]rune)
	for r, pin := range c.Keys() {
		keyFor[pin] = r
	}

	lamps := make([]gpio.Lamp, len(c.Light))
	for i, l := range c.Light {
		lamps[i] = gpio.Lamp{Pin: l.Pin, Name: l.Name, Color: strings.ToLower(l.Color)}
		for _, b := range c.Button {
			if b.Light == l.Name && lamps[i].Key == 0 {
				lamps[i].Key = keyFor[b.Pin]
			}
		}
	}
	return lamps
}
