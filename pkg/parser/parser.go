// Package parser provides Brainfuck parsing using Participle v2.
// Grammar is defined as Go structs with tags; bracket groups are matched
// by the grammar, so unbalanced input never produces a tree.
package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/psilLang/bf/pkg/types"
)

// AST Node types - parsed from source, converted to types.Operation for execution

// Source is the top-level AST node
type Source struct {
	Nodes []*Node `@@*`
}

// Node is either a single instruction character or a bracket group
type Node struct {
	Pos lexer.Position

	Instr *string `  @Instr`
	Group *Group  `| @@`
}

// Group: [ node* ]
type Group struct {
	Pos lexer.Position

	Body []*Node `"[" @@* "]"`
}

// No whitespace or comment rule: anything outside the eight symbols
// is a lexer error.
var bfLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Instr", Pattern: `[<>+\-.,]`},
	{Name: "Bracket", Pattern: `[\[\]]`},
})

// Parser is the Brainfuck grammar
var Parser = participle.MustBuild[Source](
	participle.Lexer(bfLexer),
)

// SyntaxError is returned for unrecognised characters and unbalanced brackets.
type SyntaxError struct {
	Pos lexer.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Parse parses Brainfuck source into a Program.
// On error the returned Program is always nil.
func Parse(source string) (types.Program, error) {
	src, err := Parser.ParseString("", source)
	return convert(src, err)
}

// ParseBytes parses source read from a named file
func ParseBytes(filename string, data []byte) (types.Program, error) {
	src, err := Parser.ParseBytes(filename, data)
	return convert(src, err)
}

// ParseReader parses source from r
func ParseReader(filename string, r io.Reader) (types.Program, error) {
	src, err := Parser.Parse(filename, r)
	return convert(src, err)
}

func convert(src *Source, err error) (types.Program, error) {
	if err != nil {
		return nil, toSyntaxError(err)
	}
	return src.ToProgram()
}

func toSyntaxError(err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		return &SyntaxError{Pos: perr.Position(), Msg: perr.Message()}
	}
	// I/O failure from ParseReader
	return err
}

// ToProgram converts the AST into the operation tree
func (s *Source) ToProgram() (types.Program, error) {
	return toProgram(s.Nodes)
}

func toProgram(nodes []*Node) (types.Program, error) {
	prog := make(types.Program, 0, len(nodes))
	for _, n := range nodes {
		op, err := n.ToOperation()
		if err != nil {
			return nil, err
		}
		prog = append(prog, op)
	}
	return prog, nil
}

// ToOperation converts a single AST node to an Operation
func (n *Node) ToOperation() (types.Operation, error) {
	switch {
	case n.Instr != nil:
		s := *n.Instr
		if len(s) == 1 {
			if instr, ok := types.InstructionFor(s[0]); ok {
				return instr, nil
			}
		}
		return nil, &SyntaxError{Pos: n.Pos, Msg: fmt.Sprintf("invalid instruction %q", s)}
	case n.Group != nil:
		body, err := toProgram(n.Group.Body)
		if err != nil {
			return nil, err
		}
		return &types.Loop{Body: body}, nil
	}
	return nil, &SyntaxError{Pos: n.Pos, Msg: "empty node"}
}
