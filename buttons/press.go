package buttons

import "strconv"

// Press is a resolved button event. It is either a single press of one pin
// or a double press, for which no pin is kept.
type Press struct {
	Pin    int
	Double bool
}

// DoublePress is emitted when two or more raw presses land inside the
// coincidence window.
var DoublePress = Press{Double: true}

// Single returns the event for pin pressed on its own.
func Single(pin int) Press {
	return Press{Pin: pin}
}

func (p Press) String() string {
	if p.Double {
		return "double"
	}
	return "single(" + strconv.Itoa(p.Pin) + ")"
}
