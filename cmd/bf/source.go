package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/psilLang/bf/pkg/parser"
	"github.com/psilLang/bf/pkg/types"
)

// loadProgram reads and parses a source file; "-" reads stdin.
// A single trailing line ending, as left by editors, is not part of the program.
func loadProgram(path string, stdin io.Reader) (types.Program, error) {
	var (
		data []byte
		err  error
	)
	name := path
	if path == "-" {
		name = "<stdin>"
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return parseSource(name, data)
}

func parseSource(name string, data []byte) (types.Program, error) {
	if bytes.HasSuffix(data, []byte("\r\n")) {
		data = data[:len(data)-2]
	} else {
		data = bytes.TrimSuffix(data, []byte("\n"))
	}
	prog, err := parser.ParseBytes(name, data)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return prog, nil
}

// flushingReader flushes pending program output before every read, so a
// prompt written before ',' is visible while the read blocks.
// A failed flush is sticky in the bufio.Writer and reported when the run ends.
type flushingReader struct {
	r io.Reader
	w *bufio.Writer
}

func (f *flushingReader) Read(p []byte) (int, error) {
	f.w.Flush()
	return f.r.Read(p)
}
