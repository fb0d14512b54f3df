// Package interpreter provides the Brainfuck execution engine.
// It walks the operation tree against a Tape and the bound I/O streams.
package interpreter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/psilLang/bf/pkg/types"
)

// Interpreter is the Brainfuck execution engine
type Interpreter struct {
	// Tape is the cell buffer and pointer
	Tape *Tape

	// Input is read one byte per ReadByte
	Input io.Reader

	// Output receives one byte per WriteByte
	Output io.Writer

	// Logger traces each executed operation at debug level (nil = off)
	Logger *slog.Logger

	// Steps counts executed operations, including loop tests
	Steps int

	buf [1]byte
}

// New creates an Interpreter with a fresh tape bound to the given streams
func New(input io.Reader, output io.Writer) *Interpreter {
	return &Interpreter{
		Tape:   NewTape(),
		Input:  input,
		Output: output,
	}
}

// Reset zeroes the tape and step counter, keeps the streams
func (i *Interpreter) Reset() {
	i.Tape.Reset()
	i.Steps = 0
}

// Run executes a program (or loop body) in order.
// The first fault aborts the whole run.
func (i *Interpreter) Run(prog types.Program) error {
	for _, op := range prog {
		if err := i.Execute(op); err != nil {
			return err
		}
	}
	return nil
}

// Execute executes a single operation
func (i *Interpreter) Execute(op types.Operation) error {
	i.Steps++
	if i.Logger != nil {
		i.trace(op)
	}

	var err error
	switch o := op.(type) {
	case types.Instruction:
		err = i.step(o)

	case *types.Loop:
		for {
			var c byte
			c, err = i.Tape.Get()
			if err != nil || c == 0 {
				break
			}
			// Faults inside the body are already wrapped
			if err := i.Run(o.Body); err != nil {
				return err
			}
			i.Steps++
		}

	default:
		err = fmt.Errorf("unknown operation %T", op)
	}

	if err != nil {
		return &FaultError{Op: op, Pointer: i.Tape.Pointer(), Err: err}
	}
	return nil
}

func (i *Interpreter) step(instr types.Instruction) error {
	switch instr {
	case types.MoveRight:
		return i.Tape.MoveRight()
	case types.MoveLeft:
		return i.Tape.MoveLeft()
	case types.IncrementCell:
		return i.Tape.Increment()
	case types.DecrementCell:
		return i.Tape.Decrement()
	case types.WriteByte:
		return i.writeByte()
	case types.ReadByte:
		return i.readByte()
	}
	return fmt.Errorf("unknown instruction %d", uint8(instr))
}

func (i *Interpreter) writeByte() error {
	c, err := i.Tape.Get()
	if err != nil {
		return err
	}
	i.buf[0] = c
	n, err := i.Output.Write(i.buf[:])
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func (i *Interpreter) readByte() error {
	if !i.Tape.InRange() {
		return ErrPointerOutOfRange
	}
	// EOF is a failure like any other: the cell is never left unchanged
	if _, err := io.ReadFull(i.Input, i.buf[:]); err != nil {
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	return i.Tape.Set(i.buf[0])
}

func (i *Interpreter) trace(op types.Operation) {
	attrs := []slog.Attr{
		slog.String("op", op.Type()),
		slog.Uint64("ptr", uint64(i.Tape.Pointer())),
	}
	if c, err := i.Tape.Get(); err == nil {
		attrs = append(attrs, slog.Int("cell", int(c)))
	}
	i.Logger.LogAttrs(context.Background(), slog.LevelDebug, "exec", attrs...)
}
