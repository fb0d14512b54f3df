package codegen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	gotypes "go/types"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/psilLang/bf/pkg/interpreter"
	"github.com/psilLang/bf/pkg/parser"
	"github.com/psilLang/bf/pkg/types"
)

func mustParse(t *testing.T, code string) types.Program {
	t.Helper()
	prog, err := parser.Parse(code)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return prog
}

// parseGo checks the output is valid Go and returns its AST
func parseGo(t *testing.T, src []byte) *ast.File {
	t.Helper()
	f, err := goparser.ParseFile(token.NewFileSet(), "gen.go", src, 0)
	if err != nil {
		t.Fatalf("Generated source does not parse: %v\n%s", err, src)
	}
	return f
}

func countLoops(f *ast.File) int {
	n := 0
	ast.Inspect(f, func(node ast.Node) bool {
		if _, ok := node.(*ast.ForStmt); ok {
			n++
		}
		return true
	})
	return n
}

func funcNames(f *ast.File) []string {
	var names []string
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			names = append(names, fn.Name.Name)
		}
	}
	return names
}

func TestGenerateMain(t *testing.T) {
	data, err := os.ReadFile("../../testdata/hello.bf")
	if err != nil {
		t.Fatal(err)
	}
	prog := mustParse(t, string(data))

	src, err := Generate(prog, Options{Source: "hello.bf"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	f := parseGo(t, src)

	if f.Name.Name != "main" {
		t.Errorf("Expected package main, got %s", f.Name.Name)
	}
	if got := strings.Join(funcNames(f), ","); got != "Run,main" {
		t.Errorf("Expected Run and main, got %s", got)
	}
	if got, want := countLoops(f), strings.Count(string(data), "["); got != want {
		t.Errorf("Expected %d loops, got %d", want, got)
	}
	for _, want := range []string{
		"// Code generated by bf build from hello.bf. DO NOT EDIT.",
		"const tapeSize = 1024",
		"func Run(in io.Reader, out io.Writer) error {",
		"for cells[pointer] != 0 {",
		`return fault("MoveLeft", errPointerOutOfRange)`,
	} {
		if !strings.Contains(string(src), want) {
			t.Errorf("Generated source missing %q", want)
		}
	}
}

func TestGenerateLibrary(t *testing.T) {
	prog := mustParse(t, ",[.,]")
	src, err := Generate(prog, Options{Package: "echo", Func: "Echo"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	f := parseGo(t, src)

	if f.Name.Name != "echo" {
		t.Errorf("Expected package echo, got %s", f.Name.Name)
	}
	if got := strings.Join(funcNames(f), ","); got != "Echo" {
		t.Errorf("Expected only Echo, got %s", got)
	}
	if strings.Contains(string(src), `"os"`) {
		t.Error("Library output should not import os")
	}
	if !strings.Contains(string(src), "io.ReadFull(in, b[:])") {
		t.Error("Read not emitted")
	}
	if !strings.Contains(string(src), "out.Write(b[:])") {
		t.Error("Write not emitted")
	}
}

func TestGenerateEmpty(t *testing.T) {
	src, err := Generate(types.Program{}, Options{})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	parseGo(t, src)
	if strings.Contains(string(src), "from ") {
		t.Error("Header should omit the source when none is given")
	}
}

func TestGenerateInvalidOptions(t *testing.T) {
	tests := []Options{
		{Package: "not a name"},
		{Func: "1run"},
		{Package: "main", Func: "main"},
	}

	for _, opts := range tests {
		if _, err := Generate(types.Program{}, opts); err == nil {
			t.Errorf("Expected error for %+v", opts)
		}
	}
}

func TestEmitStatements(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"+", "cells[pointer]++\n"},
		{"-", "cells[pointer]--\n"},
		{">", "pointer++\nif pointer >= tapeSize {\nreturn fault(\"MoveRight\", errPointerOutOfRange)\n}\n"},
		{"[]", "for cells[pointer] != 0 {\n}\n"},
		{"[+]", "for cells[pointer] != 0 {\ncells[pointer]++\n}\n"},
		{".", "b[0] = cells[pointer]\nif n, err := out.Write(b[:]); err != nil || n != 1 {\nif err == nil {\nerr = io.ErrShortWrite\n}\nreturn fault(\"WriteByte\", fmt.Errorf(\"%w: %w\", errWrite, err))\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			var sb strings.Builder
			emit(&sb, mustParse(t, tt.code))
			if sb.String() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, sb.String())
			}
		})
	}
}

// Programs covering every operation, the empty program and both fault kinds
var equivalenceCases = []struct {
	name   string
	source string
	input  string
}{
	{"empty", "", ""},
	{"moves only", "><", ""},
	{"moves only long", ">>><<<", ""},
	{"hello", "", ""},
	{"loop", "+++[>+<-]>.", ""},
	{"wrap", "-.", ""},
	{"add", "", "34"},
	{"echo until eof", ",[.,]", "ab"},
	{"pointer fault", "+.<.", ""},
	{"past the end", "", ""},
}

func caseSource(t *testing.T, name, source string) string {
	t.Helper()
	switch name {
	case "hello", "add":
		data, err := os.ReadFile("../../testdata/" + name + ".bf")
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	case "past the end":
		return strings.Repeat(">", interpreter.TapeSize) + "+"
	}
	return source
}

func typeCheck(t *testing.T, src []byte) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, "gen.go", src, 0)
	if err != nil {
		t.Fatalf("Generated source does not parse: %v\n%s", err, src)
	}
	conf := gotypes.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	if _, err := conf.Check("gen", fset, []*ast.File{f}, nil); err != nil {
		t.Fatalf("Generated source does not type-check: %v\n%s", err, src)
	}
}

func TestGeneratedCodeTypeChecks(t *testing.T) {
	for _, tc := range equivalenceCases {
		t.Run(tc.name, func(t *testing.T) {
			prog := mustParse(t, caseSource(t, tc.name, tc.source))
			for _, opts := range []Options{{}, {Package: "lib", Func: "Exec"}} {
				src, err := Generate(prog, opts)
				if err != nil {
					t.Fatalf("Generate error: %v", err)
				}
				typeCheck(t, src)
			}
		})
	}
}

// Builds each generated main and compares it with the interpreter
func TestGeneratedCodeMatchesInterpreter(t *testing.T) {
	if testing.Short() {
		t.Skip("builds Go programs")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not available")
	}

	for _, tc := range equivalenceCases {
		t.Run(tc.name, func(t *testing.T) {
			prog := mustParse(t, caseSource(t, tc.name, tc.source))

			var want bytes.Buffer
			runErr := interpreter.New(strings.NewReader(tc.input), &want).Run(prog)

			src, err := Generate(prog, Options{})
			if err != nil {
				t.Fatalf("Generate error: %v", err)
			}
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "main.go"), src, 0644); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module gen\n\ngo 1.21\n"), 0644); err != nil {
				t.Fatal(err)
			}
			bin := filepath.Join(dir, "gen")
			build := exec.Command(goBin, "build", "-o", bin, ".")
			build.Dir = dir
			if out, err := build.CombinedOutput(); err != nil {
				t.Fatalf("go build failed: %v\n%s\n%s", err, out, src)
			}

			var stdout, stderr bytes.Buffer
			run := exec.Command(bin)
			run.Stdin = strings.NewReader(tc.input)
			run.Stdout = &stdout
			run.Stderr = &stderr
			err = run.Run()

			if stdout.String() != want.String() {
				t.Errorf("Output differs: interpreter %q, generated %q", want.String(), stdout.String())
			}
			if runErr == nil {
				if err != nil {
					t.Errorf("Generated program failed: %v\n%s", err, stderr.String())
				}
				return
			}
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
				t.Fatalf("Expected exit status 1, got %v", err)
			}
			if got := strings.TrimSpace(stderr.String()); got != runErr.Error() {
				t.Errorf("Fault message differs: interpreter %q, generated %q", runErr.Error(), got)
			}
		})
	}
}
