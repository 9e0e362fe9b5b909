package gpio

import "strconv"

// headerPins maps BCM GPIO numbers to physical pins of the 40 pin header,
// which is how gobot addresses them.
var headerPins = map[int]int{
	2: 3, 3: 5, 4: 7, 17: 11, 27: 13, 22: 15, 10: 19, 9: 21, 11: 23,
	0: 27, 5: 29, 6: 31, 13: 33, 19: 35, 26: 37,
	14: 8, 15: 10, 18: 12, 23: 16, 24: 18, 25: 22, 8: 24, 7: 26,
	1: 28, 12: 32, 16: 36, 20: 38, 21: 40,
}

// HeaderPin returns the physical header pin name for a BCM GPIO number.
func HeaderPin(bcm int) (string, error) {
	p, ok := headerPins[bcm]
	if !ok {
		return "", unknownPin(bcm)
	}
	return strconv.Itoa(p), nil
}
