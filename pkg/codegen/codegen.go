// Package codegen emits Go source equivalent to interpreting a Program.
//
// The generated function has the same tape size, the same pointer and cell
// wraparound and the same fatal faults as pkg/interpreter:
//
//	func Run(in io.Reader, out io.Writer) error
//
// For package main a main function is added that binds os.Stdin/os.Stdout
// and exits with status 1 on the first fault.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strings"
	"text/template"

	"github.com/psilLang/bf/pkg/interpreter"
	"github.com/psilLang/bf/pkg/types"
)

// Options controls the shape of the generated file
type Options struct {
	// Package name (default "main")
	Package string
	// Func is the name of the generated entry point (default "Run")
	Func string
	// Source is recorded in the header comment when non-empty
	Source string
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "main"
	}
	if o.Func == "" {
		o.Func = "Run"
	}
	return o
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by bf build{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.

package {{.Package}}

import (
	"errors"
	"fmt"
	"io"
{{- if .Main}}
	"os"
{{- end}}
)

const tapeSize = {{.TapeSize}}

var (
	errPointerOutOfRange = errors.New({{printf "%q" .ErrRange}})
	errRead              = errors.New({{printf "%q" .ErrRead}})
	errWrite             = errors.New({{printf "%q" .ErrWrite}})
)

// {{.Func}} executes the program against a fresh tape.
func {{.Func}}(in io.Reader, out io.Writer) error {
	var (
		pointer uint
		cells   [tapeSize]byte
		b       [1]byte
	)
	fault := func(op string, err error) error {
		return fmt.Errorf("%s at ptr=%d: %w", op, pointer, err)
	}
	_ = fault
	_ = cells
	_ = b

{{.Body}}
	return nil
}
{{- if .Main}}

func main() {
	if err := {{.Func}}(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
{{- end}}
`))

type fileData struct {
	Options
	Main     bool
	TapeSize int
	ErrRange string
	ErrRead  string
	ErrWrite string
	Body     string
}

// Generate returns gofmt-formatted Go source for prog
func Generate(prog types.Program, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("invalid package name %q", opts.Package)
	}
	if !token.IsIdentifier(opts.Func) {
		return nil, fmt.Errorf("invalid function name %q", opts.Func)
	}
	if opts.Package == "main" && opts.Func == "main" {
		return nil, fmt.Errorf("function name %q collides with the generated main", opts.Func)
	}

	var body strings.Builder
	emit(&body, prog)

	var buf bytes.Buffer
	err := fileTemplate.Execute(&buf, fileData{
		Options:  opts,
		Main:     opts.Package == "main",
		TapeSize: interpreter.TapeSize,
		ErrRange: interpreter.ErrPointerOutOfRange.Error(),
		ErrRead:  interpreter.ErrRead.Error(),
		ErrWrite: interpreter.ErrWrite.Error(),
		Body:     body.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}

// emit writes one statement group per operation
func emit(sb *strings.Builder, prog types.Program) {
	for _, op := range prog {
		switch o := op.(type) {
		case types.Instruction:
			emitInstruction(sb, o)
		case *types.Loop:
			sb.WriteString("for cells[pointer] != 0 {\n")
			emit(sb, o.Body)
			sb.WriteString("}\n")
		}
	}
}

func emitInstruction(sb *strings.Builder, instr types.Instruction) {
	switch instr {
	case types.MoveRight:
		sb.WriteString("pointer++\n")
		emitRangeCheck(sb, instr)
	case types.MoveLeft:
		sb.WriteString("pointer--\n")
		emitRangeCheck(sb, instr)
	case types.IncrementCell:
		sb.WriteString("cells[pointer]++\n")
	case types.DecrementCell:
		sb.WriteString("cells[pointer]--\n")
	case types.WriteByte:
		sb.WriteString("b[0] = cells[pointer]\n")
		sb.WriteString("if n, err := out.Write(b[:]); err != nil || n != 1 {\nif err == nil {\nerr = io.ErrShortWrite\n}\n")
		fmt.Fprintf(sb, "return fault(%q, fmt.Errorf(\"%%w: %%w\", errWrite, err))\n}\n", instr.Type())
	case types.ReadByte:
		fmt.Fprintf(sb, "if _, err := io.ReadFull(in, b[:]); err != nil {\nreturn fault(%q, fmt.Errorf(\"%%w: %%w\", errRead, err))\n}\n", instr.Type())
		sb.WriteString("cells[pointer] = b[0]\n")
	}
}

func emitRangeCheck(sb *strings.Builder, instr types.Instruction) {
	fmt.Fprintf(sb, "if pointer >= tapeSize {\nreturn fault(%q, errPointerOutOfRange)\n}\n", instr.Type())
}
