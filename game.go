package main

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mastercactapus/simonsays/buttons"
	"github.com/mastercactapus/simonsays/gpio"
	"github.com/mastercactapus/simonsays/leds"
	"github.com/mastercactapus/simonsays/round"
)

func openBoard(c *Config) (gpio.Board, error) {
	opts := gpio.Options{
		Outputs:      c.LightLines(),
		Settle:       c.Debounce(),
		PollInterval: c.PollInterval(),
	}
	switch c.Backend {
	case BackendRaspi:
		return gpio.OpenRaspi(opts)
	case BackendPeriph:
		return gpio.OpenPeriph(opts)
	case BackendTerminal:
		return gpio.OpenTerminal(c.Lamps(), c.Keys(), opts)
	}
	return nil, fmt.Errorf("unknown backend '%s'", c.Backend)
}

// play runs rounds of length on board until ctx is done. Every light is
// off when it returns.
func play(ctx context.Context, c *Config, board gpio.Board, length int) error {
	lightFor, err := c.LightFor()
	if err != nil {
		return err
	}
	win, err := c.light(c.WinLight)
	if err != nil {
		return err
	}
	lose, err := c.light(c.LoseLight)
	if err != nil {
		return err
	}

	lights := leds.NewGroup(board, c.LightPins(), log.StandardLogger())
	defer func() {
		if err := lights.Close(); err != nil {
			log.Warnln("turn lights off:", err)
		}
	}()

	group := buttons.NewGroup(buttons.Config{
		Window: c.DoublePress(),
		Delay:  c.FlushDelay(),
	})
	defer group.Close()

	driver := round.NewDriver(group, lights, lightFor)
	driver.WinLight = win.Pin
	driver.LoseLight = lose.Pin

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return board.Watch(ctx, c.ButtonLines(), group.Trigger)
	})
	g.Go(func() error {
		return loop(ctx, driver, c.ButtonPins(), length)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, gpio.ErrQuit) {
		return nil
	}
	return err
}

func loop(ctx context.Context, d *round.Driver, pins []int, length int) error {
	for {
		r, err := round.New(length, pins)
		if err != nil {
			return err
		}
		outcome, err := d.Play(ctx, r)
		if err != nil {
			return err
		}

		lg := log.WithFields(log.Fields{
			"Round":   r.ID().String(),
			"Outcome": outcome.String(),
		})
		switch outcome {
		case round.Won:
			lg.Infoln("you won!")
		case round.Lost:
			lg.Infoln("you lost!")
		case round.Reset:
			lg.Infoln("starting over")
		}

		if err := d.Feedback(ctx, outcome); err != nil {
			return err
		}
	}
}
