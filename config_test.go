package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/simonsays/gpio"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	var c Config
	_, err := toml.Decode(configFile, &c)
	require.NoError(t, err)
	return &c
}

func TestDefaultConfig(t *testing.T) {
	c := defaultConfig(t)
	require.NoError(t, c.Validate())

	assert.Equal(t, BackendRaspi, c.Backend)
	assert.Equal(t, 8, c.Length)
	assert.Equal(t, int64(30), c.DoublePressMs)
	assert.Equal(t, int64(50), c.FlushDelayMs)
	assert.Equal(t, []int{4, 16, 27}, c.ButtonPins())
	assert.Equal(t, []int{17, 12, 18}, c.LightPins())

	lightFor, err := c.LightFor()
	require.NoError(t, err)
	assert.Equal(t, map[int]int{4: 17, 16: 12, 27: 18}, lightFor)

	assert.Equal(t, map[rune]int{'r': 4, 'g': 16, 'b': 27}, c.Keys())
	assert.Equal(t, []gpio.Lamp{
		{Pin: 17, Name: "LED_RED", Color: "red", Key: 'r'},
		{Pin: 12, Name: "LED_GREEN", Color: "green", Key: 'g'},
		{Pin: 18, Name: "LED_BLUE", Color: "blue", Key: 'b'},
	}, c.Lamps())
}

func TestConfig_Defaults(t *testing.T) {
	c := &Config{
		Button: []Button{{Name: "A", Pin: 4, Light: "LA"}},
		Light:  []Light{{Name: "LA", Pin: 17}, {Name: "LB", Pin: 12}},
	}
	require.NoError(t, c.Validate())

	assert.Equal(t, BackendRaspi, c.Backend)
	assert.Equal(t, int64(DefaultDebounceMs), c.DebounceMs)
	assert.Equal(t, DefaultLength, c.Length)
	assert.Equal(t, "LA", c.LoseLight)
	assert.Equal(t, "LB", c.WinLight)
	assert.Equal(t, []gpio.Line{{Pin: 4}}, c.ButtonLines())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{"no buttons", func(c *Config) { c.Button = nil }, "no buttons"},
		{"no lights", func(c *Config) { c.Light = nil }, "no lights"},
		{"unknown light", func(c *Config) { c.Button[1].Light = "LED_PINK" }, "unknown light identifier 'LED_PINK'"},
		{"duplicate pin", func(c *Config) { c.Button[2].Pin = 4 }, "pin 4 used by both"},
		{"button on light pin", func(c *Config) { c.Button[0].Pin = 17 }, "pin 17 used by both"},
		{"duplicate button", func(c *Config) { c.Button[1].Name = "RED" }, "invalid name"},
		{"duplicate key", func(c *Config) { c.Button[1].Key = "r" }, "key 'r' used by both"},
		{"long key", func(c *Config) { c.Button[1].Key = "gg" }, "single character"},
		{"unknown backend", func(c *Config) { c.Backend = "serial" }, "unknown backend"},
		{"bad length", func(c *Config) { c.Length = -1 }, "invalid length"},
		{"delay inside window", func(c *Config) { c.FlushDelayMs = 20 }, "must be longer than DoublePressMs"},
		{"unknown win light", func(c *Config) { c.WinLight = "LED_GOLD" }, "LED_GOLD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaultConfig(t)
			tt.modify(c)
			assert.ErrorContains(t, c.Validate(), tt.errMsg)
		})
	}
}

func TestConfig_KeysFromNames(t *testing.T) {
	c := &Config{Button: []Button{
		{Name: "Red", Pin: 4},
		{Name: "Rose", Pin: 5, Key: "x"},
		{Name: "Ruby", Pin: 6},
	}}
	assert.Equal(t, map[rune]int{'r': 4, 'x': 5, 'u': 6}, c.Keys())
}

func TestParseLength(t *testing.T) {
	n, err := parseLength(nil, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = parseLength([]string{"3"}, 8)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, arg := range []string{"0", "-2", "five", ""} {
		_, err := parseLength([]string{arg}, 8)
		assert.Error(t, err, "length %q", arg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simonsays.conf")
	require.NoError(t, os.WriteFile(path, []byte(`
Backend = "periph"
Length = 4
[[Button]]
	Name = "A"
	Pin = 4
	Light = "LA"
[[Light]]
	Name = "LA"
	Pin = 17
`), 0644))

	c, err := loadConfig(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, BackendPeriph, c.Backend)
	assert.Equal(t, 4, c.Length)

	c, err = loadConfig(filepath.Join(t.TempDir(), "missing.conf"))
	require.NoError(t, err)
	assert.Len(t, c.Button, 3, "missing file did not fall back to defaults")

	require.NoError(t, os.WriteFile(path, []byte("Length = ["), 0644))
	_, err = loadConfig(path)
	assert.Error(t, err)
}

func TestOpenBoard_UnknownBackend(t *testing.T) {
	_, err := openBoard(&Config{Backend: "serial"})
	assert.ErrorContains(t, err, "unknown backend")
}

func TestInstall(t *testing.T) {
	prefix := t.TempDir()
	configPath = "/etc/simonsays.conf"

	require.NoError(t, install(prefix, false))

	info, err := os.Stat(filepath.Join(prefix, "usr/bin/simonsays"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "binary not executable")

	unit, err := os.ReadFile(filepath.Join(prefix, "usr/lib/systemd/system/simonsays.service"))
	require.NoError(t, err)
	assert.Contains(t, string(unit), "run -c /etc/simonsays.conf")

	conf := filepath.Join(prefix, configPath)
	data, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, configFile, string(data))

	// existing config is kept unless reset
	require.NoError(t, os.WriteFile(conf, []byte("Length = 3\n"), 0644))
	require.NoError(t, install(prefix, false))
	data, err = os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, "Length = 3\n", string(data))

	require.NoError(t, install(prefix, true))
	data, err = os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, configFile, string(data))
}
