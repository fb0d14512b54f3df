// bf - Brainfuck interpreter and Go code generator
// Programs run on a 1024-cell byte tape bound to stdin/stdout.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/psilLang/bf/pkg/logs"
	"github.com/tebeka/atexit"
)

// CLI is the kong command tree
type CLI struct {
	LogLevel string `help:"Log level (debug traces every operation)." default:"warn" enum:"debug,info,warn,error" env:"BF_LOG_LEVEL"`
	LogFile  string `help:"Also write JSON logs to this file." type:"path" env:"BF_LOG_FILE"`

	Run   RunCmd   `cmd:"" help:"Interpret a program with stdin/stdout as its I/O."`
	Build BuildCmd `cmd:"" help:"Emit Go source equivalent to a program."`
	Fmt   FmtCmd   `cmd:"" help:"Print a program in canonical form."`
	Repl  ReplCmd  `cmd:"" default:"1" help:"Interactive session (default)."`
}

// env carries the process streams and logger into commands
type env struct {
	log    *slog.Logger
	stdin  *bufio.Reader
	stdout *bufio.Writer
	stderr io.Writer
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bf"),
		kong.Description("Brainfuck interpreter and Go code generator."),
		kong.UsageOnError(),
	)

	logger, err := logs.New(logs.Options{Level: cli.LogLevel, File: cli.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Register(func() { logger.Close() })

	// Output produced before a fault must still reach the terminal
	stdout := bufio.NewWriter(os.Stdout)
	atexit.Register(func() { stdout.Flush() })

	e := &env{
		log:    logger.Logger,
		stdin:  bufio.NewReader(os.Stdin),
		stdout: stdout,
		stderr: os.Stderr,
	}
	if err := ctx.Run(e); err != nil {
		stdout.Flush()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
