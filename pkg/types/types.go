// Package types defines the operation tree produced by the parser.
// Every node implements the Operation interface; loops nest recursively.
package types

import (
	"fmt"
	"strings"
)

// Operation is the interface all parsed nodes implement.
type Operation interface {
	// String returns the node in source form
	String() string
	// Type returns the node name for error messages and traces
	Type() string
	// Equal checks structural equality with another node
	Equal(other Operation) bool
}

// Instruction is one of the six leaf operations.
type Instruction uint8

const (
	MoveRight Instruction = iota
	MoveLeft
	IncrementCell
	DecrementCell
	WriteByte
	ReadByte
)

var symbols = [...]byte{
	MoveRight:     '>',
	MoveLeft:      '<',
	IncrementCell: '+',
	DecrementCell: '-',
	WriteByte:     '.',
	ReadByte:      ',',
}

var names = [...]string{
	MoveRight:     "MoveRight",
	MoveLeft:      "MoveLeft",
	IncrementCell: "IncrementCell",
	DecrementCell: "DecrementCell",
	WriteByte:     "WriteByte",
	ReadByte:      "ReadByte",
}

// InstructionFor maps a source character to its instruction.
// Brackets are not instructions; they are handled by the grammar.
func InstructionFor(c byte) (Instruction, bool) {
	for i, s := range symbols {
		if s == c {
			return Instruction(i), true
		}
	}
	return 0, false
}

// Symbol returns the source character of the instruction
func (i Instruction) Symbol() byte {
	if int(i) < len(symbols) {
		return symbols[i]
	}
	return '?'
}

func (i Instruction) String() string { return string(i.Symbol()) }

func (i Instruction) Type() string {
	if int(i) < len(names) {
		return names[i]
	}
	return fmt.Sprintf("Instruction(%d)", uint8(i))
}

func (i Instruction) Equal(other Operation) bool {
	if o, ok := other.(Instruction); ok {
		return i == o
	}
	return false
}

// Loop is a bracketed group. Body runs while the current cell is nonzero,
// tested before every iteration including the first.
type Loop struct {
	Body Program
}

func (l *Loop) String() string { return "[" + l.Body.String() + "]" }
func (l *Loop) Type() string   { return "Loop" }

func (l *Loop) Equal(other Operation) bool {
	if o, ok := other.(*Loop); ok {
		return l.Body.Equal(o.Body)
	}
	return false
}

// Program is the root of the tree: an ordered sequence of operations.
type Program []Operation

// String renders the program back to source text. Parsing the result
// yields an equal Program.
func (p Program) String() string {
	var sb strings.Builder
	p.write(&sb)
	return sb.String()
}

func (p Program) write(sb *strings.Builder) {
	for _, op := range p {
		switch o := op.(type) {
		case Instruction:
			sb.WriteByte(o.Symbol())
		case *Loop:
			sb.WriteByte('[')
			o.Body.write(sb)
			sb.WriteByte(']')
		}
	}
}

func (p Program) Equal(other Program) bool {
	if len(p) != len(other) {
		return false
	}
	for i, op := range p {
		if !op.Equal(other[i]) {
			return false
		}
	}
	return true
}

// Tree returns an indented, one-node-per-line dump of the program.
func (p Program) Tree() string {
	var sb strings.Builder
	p.tree(&sb, 0)
	return sb.String()
}

func (p Program) tree(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, op := range p {
		sb.WriteString(indent)
		sb.WriteString(op.Type())
		sb.WriteByte('\n')
		if l, ok := op.(*Loop); ok {
			l.Body.tree(sb, depth+1)
		}
	}
}

// Depth returns the maximum loop nesting depth.
func (p Program) Depth() int {
	deepest := 0
	for _, op := range p {
		if l, ok := op.(*Loop); ok {
			if d := l.Body.Depth() + 1; d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}
