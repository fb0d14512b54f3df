package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/psilLang/bf/pkg/codegen"
	"github.com/psilLang/bf/pkg/interpreter"
	"github.com/psilLang/bf/pkg/types"
)

// RunCmd interprets a program
type RunCmd struct {
	Path string `arg:"" optional:"" help:"Source file, - for stdin."`
	Expr string `short:"e" help:"Program text given on the command line."`
	Dump bool   `help:"Print the tape around the pointer to stderr when the run ends."`
}

func (c *RunCmd) program(e *env) (types.Program, error) {
	switch {
	case c.Expr != "" && c.Path != "":
		return nil, errors.New("give either a file or -e, not both")
	case c.Expr != "":
		return parseSource("<expr>", []byte(c.Expr))
	case c.Path != "":
		return loadProgram(c.Path, e.stdin)
	}
	return nil, errors.New("no program: give a file or -e")
}

func (c *RunCmd) Run(e *env) error {
	prog, err := c.program(e)
	if err != nil {
		return err
	}
	e.log.Info("parsed", "ops", len(prog), "depth", prog.Depth())

	interp := interpreter.New(&flushingReader{r: e.stdin, w: e.stdout}, e.stdout)
	if e.log.Enabled(context.Background(), slog.LevelDebug) {
		interp.Logger = e.log
	}

	runErr := interp.Run(prog)
	if err := e.stdout.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("%w: %w", interpreter.ErrWrite, err)
	}
	e.log.Info("finished", "steps", interp.Steps, "ptr", interp.Tape.Pointer())

	if c.Dump {
		fmt.Fprintln(e.stderr, interp.Tape)
	}
	if runErr != nil {
		return fmt.Errorf("runtime error: %w", runErr)
	}
	return nil
}

// BuildCmd emits Go source
type BuildCmd struct {
	Path    string `arg:"" help:"Source file, - for stdin."`
	Output  string `short:"o" type:"path" help:"Write the generated file here instead of stdout."`
	Package string `default:"main" help:"Package clause of the generated file."`
	Func    string `default:"Run" help:"Name of the generated entry point."`
}

func (c *BuildCmd) Run(e *env) error {
	prog, err := loadProgram(c.Path, e.stdin)
	if err != nil {
		return err
	}

	opts := codegen.Options{Package: c.Package, Func: c.Func}
	if c.Path != "-" {
		opts.Source = filepath.Base(c.Path)
	}
	src, err := codegen.Generate(prog, opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if c.Output == "" {
		if _, err := e.stdout.Write(src); err != nil {
			return err
		}
		return e.stdout.Flush()
	}
	if err := os.WriteFile(c.Output, src, 0644); err != nil {
		return fmt.Errorf("write %s: %w", c.Output, err)
	}
	e.log.Info("generated", "file", c.Output, "bytes", len(src))
	return nil
}

// FmtCmd prints the canonical form
type FmtCmd struct {
	Path string `arg:"" help:"Source file, - for stdin."`
	Tree bool   `help:"Print the operation tree instead of source text."`
}

func (c *FmtCmd) Run(e *env) error {
	prog, err := loadProgram(c.Path, e.stdin)
	if err != nil {
		return err
	}
	if c.Tree {
		fmt.Fprint(e.stdout, prog.Tree())
	} else {
		fmt.Fprintln(e.stdout, prog.String())
	}
	return e.stdout.Flush()
}
