// Package round holds the state of one Simon Says round and the driver that
// plays it against a stream of button presses.
package round

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

var (
	ErrNoPins = errors.New("no button pins to choose from")
	ErrLength = errors.New("round length must be at least 1")
)

// Round is a randomly generated sequence of button pins and the number of
// elements revealed so far.
type Round struct {
	id       uuid.UUID
	sequence []int
	cursor   int
}

// New draws a sequence of length pins, uniformly and with replacement.
func New(length int, pins []int) (*Round, error) {
	return NewWithRand(length, pins, nil)
}

// NewWithRand is like New but draws from r. A nil r uses the global source.
func NewWithRand(length int, pins []int, r *rand.Rand) (*Round, error) {
	if len(pins) == 0 {
		return nil, ErrNoPins
	}
	if length < 1 {
		return nil, ErrLength
	}

	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}

	seq := make([]int, length)
	for i := range seq {
		seq[i] = pins[intN(len(pins))]
	}
	return &Round{id: uuid.New(), sequence: seq}, nil
}

// FromSequence builds a round that plays seq.
func FromSequence(seq []int) (*Round, error) {
	if len(seq) == 0 {
		return nil, ErrLength
	}
	return &Round{id: uuid.New(), sequence: append([]int(nil), seq...)}, nil
}

func (r *Round) ID() uuid.UUID { return r.id }

func (r *Round) Len() int { return len(r.sequence) }

// Turn is the length of the current prefix.
func (r *Round) Turn() int { return r.cursor + 1 }

// Prefix returns the part of the sequence the player has to reproduce this
// turn.
func (r *Round) Prefix() []int {
	return append([]int(nil), r.sequence[:r.cursor+1]...)
}

// Matches reports whether answer agrees with the sequence at every position
// it covers. A partial answer can match.
func (r *Round) Matches(answer []int) bool {
	if len(answer) > len(r.sequence) {
		return false
	}
	for i, pin := range answer {
		if pin != r.sequence[i] {
			return false
		}
	}
	return true
}

// Advance reveals one more element. It does nothing once the round is
// finished.
func (r *Round) Advance() {
	if r.Finished() {
		return
	}
	r.cursor++
}

func (r *Round) Finished() bool {
	return r.cursor == len(r.sequence)-1
}

func (r *Round) String() string {
	return fmt.Sprintf("round %s turn %d/%d", r.id, r.Turn(), r.Len())
}
