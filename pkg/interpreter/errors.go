package interpreter

import (
	"errors"
	"fmt"

	"github.com/psilLang/bf/pkg/types"
)

// Run-time faults. Every one of them aborts execution.
var (
	ErrPointerOutOfRange = errors.New("pointer out of range")
	ErrRead              = errors.New("read failed")
	ErrWrite             = errors.New("write failed")
)

// FaultError reports the operation and pointer at which execution aborted.
type FaultError struct {
	Op      types.Operation
	Pointer uint
	Err     error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s at ptr=%d: %v", e.Op.Type(), e.Pointer, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }
