package interpreter

import (
	"fmt"
	"math"
	"strings"
)

// TapeSize is the number of byte cells on the tape
const TapeSize = 1024

// Tape is the mutable runtime state of one execution.
// The pointer wraps at the width of uint, not at TapeSize; any access with
// a pointer of TapeSize or more is an out-of-range fault.
type Tape struct {
	cells   [TapeSize]byte
	pointer uint
}

// NewTape returns a zeroed tape with the pointer at cell 0
func NewTape() *Tape {
	return &Tape{}
}

// Reset zeroes every cell and rewinds the pointer
func (t *Tape) Reset() {
	t.cells = [TapeSize]byte{}
	t.pointer = 0
}

// Pointer returns the current pointer value
func (t *Tape) Pointer() uint { return t.pointer }

// Cells returns a copy of the tape contents
func (t *Tape) Cells() []byte {
	out := make([]byte, TapeSize)
	copy(out, t.cells[:])
	return out
}

// InRange reports whether the pointer addresses a cell
func (t *Tape) InRange() bool {
	return t.pointer < TapeSize
}

// MoveRight advances the pointer by one with wraparound at uint width
func (t *Tape) MoveRight() error {
	t.pointer++
	return t.check()
}

// MoveLeft retreats the pointer by one with wraparound at uint width
func (t *Tape) MoveLeft() error {
	t.pointer--
	return t.check()
}

func (t *Tape) check() error {
	if !t.InRange() {
		return ErrPointerOutOfRange
	}
	return nil
}

// Get returns the current cell
func (t *Tape) Get() (byte, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	return t.cells[t.pointer], nil
}

// Set stores b in the current cell
func (t *Tape) Set(b byte) error {
	if err := t.check(); err != nil {
		return err
	}
	t.cells[t.pointer] = b
	return nil
}

// Increment adds one to the current cell modulo 256
func (t *Tape) Increment() error {
	if err := t.check(); err != nil {
		return err
	}
	t.cells[t.pointer]++
	return nil
}

// Decrement subtracts one from the current cell modulo 256
func (t *Tape) Decrement() error {
	if err := t.check(); err != nil {
		return err
	}
	t.cells[t.pointer]--
	return nil
}

// Window returns the cells around the pointer, clamped to the tape.
func (t *Tape) Window(radius int) (start int, cells []byte) {
	center := 0
	if t.InRange() {
		center = int(t.pointer)
	}
	start = max(center-radius, 0)
	end := min(center+radius+1, TapeSize)
	return start, t.cells[start:end]
}

// String dumps a window of 8 cells either side of the pointer,
// marking the current cell with brackets.
func (t *Tape) String() string {
	var sb strings.Builder
	if !t.InRange() {
		if t.pointer > math.MaxUint-TapeSize {
			fmt.Fprintf(&sb, "ptr=-%d (out of range) ", math.MaxUint-t.pointer+1)
		} else {
			fmt.Fprintf(&sb, "ptr=%d (out of range) ", t.pointer)
		}
	} else {
		fmt.Fprintf(&sb, "ptr=%d ", t.pointer)
	}
	start, cells := t.Window(8)
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if uint(start+i) == t.pointer {
			fmt.Fprintf(&sb, "[%d]", c)
		} else {
			fmt.Fprintf(&sb, "%d", c)
		}
	}
	return sb.String()
}
