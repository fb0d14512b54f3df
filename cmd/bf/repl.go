package main

import (
	"fmt"
	"strings"

	"github.com/psilLang/bf/pkg/interpreter"
	"github.com/psilLang/bf/pkg/parser"
	"github.com/tebeka/atexit"
)

// ReplCmd is the interactive session
type ReplCmd struct {
	Quiet bool `help:"No banner."`
}

type repl struct {
	e      *env
	interp *interpreter.Interpreter
	debug  bool
}

func (c *ReplCmd) Run(e *env) error {
	r := &repl{
		e: e,
		// ',' consumes whatever is typed after the program line
		interp: interpreter.New(&flushingReader{r: e.stdin, w: e.stdout}, e.stdout),
	}
	if !c.Quiet {
		printBanner(e)
	}

	multiLineBuffer := ""
	bracketDepth := 0

	for {
		if multiLineBuffer == "" {
			fmt.Fprint(e.stdout, "BF> ")
		} else {
			fmt.Fprint(e.stdout, "..> ")
		}
		e.stdout.Flush()

		line, err := e.stdin.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(e.stdout)
			return nil
		}
		line = strings.TrimRight(line, "\r\n")

		if multiLineBuffer == "" {
			if handled := r.handleCommand(line); handled {
				continue
			}
		}

		// Track bracket depth for multi-line input
		for _, ch := range line {
			if ch == '[' {
				bracketDepth++
			} else if ch == ']' {
				bracketDepth--
			}
		}

		multiLineBuffer += line

		// If brackets are balanced, execute
		if bracketDepth <= 0 {
			if multiLineBuffer != "" {
				r.execute(multiLineBuffer)
			}
			multiLineBuffer = ""
			bracketDepth = 0
		}
	}
}

func (r *repl) handleCommand(line string) bool {
	trimmed := strings.TrimSpace(line)
	out := r.e.stdout

	switch trimmed {
	case "":
		return true

	case ":help", ":h", ":?":
		printHelp(r.e)
		return true

	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, "Goodbye!")
		atexit.Exit(0)

	case ":tape", ":t":
		fmt.Fprintln(out, r.interp.Tape)
		return true

	case ":debug", ":d":
		r.debug = !r.debug
		if r.debug {
			r.interp.Logger = r.e.log
		} else {
			r.interp.Logger = nil
		}
		fmt.Fprintf(out, "Debug mode: %v\n", r.debug)
		return true
	}

	return false
}

// execute runs one entered program on a fresh tape
func (r *repl) execute(source string) {
	out := r.e.stdout

	prog, err := parser.Parse(source)
	if err != nil {
		out.Flush()
		fmt.Fprintf(r.e.stderr, "Parse error: %v\n", err)
		return
	}

	r.interp.Reset()
	runErr := r.interp.Run(prog)
	out.Flush()
	if runErr != nil {
		fmt.Fprintf(r.e.stderr, "Error: %v\n", runErr)
	}

	if r.debug {
		fmt.Fprintf(out, "\n  Tape:  %s\n", r.interp.Tape)
		fmt.Fprintf(out, "  Steps: %d\n", r.interp.Steps)
	} else {
		fmt.Fprintln(out)
	}
}

func printBanner(e *env) {
	fmt.Fprint(e.stdout, `
+----------------------------------------------------------+
|  bf - Brainfuck on a 1024-cell tape                      |
|  Type :help for commands, :quit to exit                  |
+----------------------------------------------------------+
`)
}

func printHelp(e *env) {
	fmt.Fprint(e.stdout, `
Commands:
  :help, :h, :?    Show this help
  :quit, :q        Exit
  :tape, :t        Show the tape around the pointer after the last run
  :debug, :d       Toggle debug mode (trace with --log-level debug)

Language:
  > <              Move the pointer right / left
  + -              Increment / decrement the current cell (mod 256)
  . ,              Write / read one byte
  [ ... ]          Repeat while the current cell is nonzero

Anything else, including spaces, is a syntax error.
Each program runs on a fresh tape; ',' reads the lines typed after it.

Example:
  ++++++++[>++++++++<-]>+.
`)
}
