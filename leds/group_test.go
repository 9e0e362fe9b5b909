package leds

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	Pin int
	On  bool
}

type fakeWriter struct {
	mu     sync.Mutex
	writes []write
	fail   map[int]bool
}

func (f *fakeWriter) Write(pin int, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[pin] {
		return errors.New("line busy")
	}
	f.writes = append(f.writes, write{pin, on})
	return nil
}

func (f *fakeWriter) take() []write {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.writes
	f.writes = nil
	return w
}

func (f *fakeWriter) last(pin int) (write, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.writes) - 1; i >= 0; i-- {
		if f.writes[i].Pin == pin {
			return f.writes[i], true
		}
	}
	return write{}, false
}

func newTestGroup(t *testing.T, pins ...int) (*Group, *fakeWriter, *test.Hook) {
	t.Helper()
	w := &fakeWriter{}
	logger, hook := test.NewNullLogger()
	g := NewGroup(w, pins, logger)
	require.Equal(t, len(pins), len(w.take()), "lights not switched off on start")
	return g, w, hook
}

func TestGroup_Blink(t *testing.T) {
	g, w, _ := newTestGroup(t, 17, 12)
	defer g.Close()

	g.Blink(17, 2, time.Millisecond, time.Millisecond)
	g.Wait()

	assert.Equal(t, []write{
		{17, true}, {17, false},
		{17, true}, {17, false},
	}, w.take())
}

func TestGroup_BlinkAll(t *testing.T) {
	g, w, _ := newTestGroup(t, 17, 12, 18)
	defer g.Close()

	g.BlinkAll([]int{17, 18}, 1, time.Millisecond, time.Millisecond)
	g.Wait()

	writes := w.take()
	assert.Len(t, writes, 4)
	assert.ElementsMatch(t, []write{{17, true}, {17, false}, {18, true}, {18, false}}, writes)
}

func TestGroup_Forever(t *testing.T) {
	g, w, _ := newTestGroup(t, 17)

	g.Blink(17, 0, time.Millisecond, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	g.TurnOff(17)

	writes := w.take()
	assert.Greater(t, len(writes), 4, "indefinite blink stopped early")
	assert.Equal(t, write{17, false}, writes[len(writes)-1])

	require.NoError(t, g.Close())
}

func TestGroup_BlinkReplaces(t *testing.T) {
	g, w, _ := newTestGroup(t, 17)
	defer g.Close()

	g.Blink(17, 1, time.Hour, time.Hour)
	g.Blink(17, 1, time.Millisecond, time.Millisecond)

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first blink was not canceled")
	}

	assert.Equal(t, []write{
		{17, true}, {17, false},
		{17, true}, {17, false},
	}, w.take())
}

func TestGroup_Close(t *testing.T) {
	g, w, _ := newTestGroup(t, 17, 12)

	g.Blink(17, 0, time.Hour, time.Hour)
	g.Blink(12, 0, time.Hour, time.Hour)
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())

	for _, pin := range []int{17, 12} {
		last, ok := w.last(pin)
		require.True(t, ok)
		assert.False(t, last.On, "pin %d left on", pin)
	}

	w.take()
	g.Blink(17, 1, time.Millisecond, time.Millisecond)
	g.Wait()
	assert.Empty(t, w.take(), "closed group kept blinking")
}

func TestGroup_WriteError(t *testing.T) {
	g, w, hook := newTestGroup(t, 17)
	defer g.Close()

	w.fail = map[int]bool{17: true}
	g.Blink(17, 0, time.Millisecond, time.Millisecond)
	g.Wait()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 17, entry.Data["Pin"])
}
