package main

const (
	DefaultDebounceMs     = 100
	DefaultPollIntervalMs = 5
	DefaultLength         = 8
)

const configFile = `
# NOTE: Pins are BCM GPIO numbers, not physical header pins

# raspi reads buttons by polling through gobot, periph waits for edge
# interrupts, terminal simulates the board in the console
Backend = "raspi"

# Debounce will ignore subsequent presses of the same button for a duration
DebounceMs = 100
# How often the raspi backend reads the buttons
PollIntervalMs = 5

# Presses of two buttons closer together than this count as a double press,
# which abandons the current round
DoublePressMs = 30
# A press is held back this long so a second press can turn it into a double.
# Must be longer than DoublePressMs
FlushDelayMs = 50

# Sequence length of a round, can be overridden on the command line
Length = 8

WinLight = "LED_GREEN"
LoseLight = "LED_RED"

[[Button]]
	Name = "RED"
	Pin = 4
	Light = "LED_RED"
	Key = "r"
	# Uncomment to interpret pin HIGH as pressed instead of LOW (the default)
	# Invert = true
[[Button]]
	Name = "GREEN"
	Pin = 16
	Light = "LED_GREEN"
	Key = "g"
[[Button]]
	Name = "BLUE"
	Pin = 27
	Light = "LED_BLUE"
	Key = "b"

[[Light]]
	Name = "LED_RED"
	Pin = 17
	Color = "red"
	# Uncomment to output LOW when on instead of HIGH
	# Invert = true
[[Light]]
	Name = "LED_GREEN"
	Pin = 12
	Color = "green"
[[Light]]
	Name = "LED_BLUE"
	Pin = 18
	Color = "blue"
`
