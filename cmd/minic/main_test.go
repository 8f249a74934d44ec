package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetFlags clears the package-level flags struct between test cases,
// since compile reads it directly rather than through a freshly parsed
// cobra command.
func resetFlags() {
	flags.ast = false
	flags.ir = false
	flags.asm = false
	flags.llvm = false
	flags.verbose = false
	flags.out = ""
	flags.config = ""
	flags.keepGoing = false
}

func writeTempSrc(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.c")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write temp source: %s", err)
	}
	return path
}

// TestCompileDefaultEmitsAssembly checks the default (no mode flag)
// output mode is ARM32 assembly.
func TestCompileDefaultEmitsAssembly(t *testing.T) {
	resetFlags()
	path := writeTempSrc(t, "int f() { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %s (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "f:") {
		t.Errorf("expected a function label in the assembly output, got:\n%s", out.String())
	}
}

// TestCompileAstMode checks --ast dumps the syntax tree instead of
// assembly.
func TestCompileAstMode(t *testing.T) {
	resetFlags()
	flags.ast = true
	path := writeTempSrc(t, "int f() { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %s (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "CompileUnit") {
		t.Errorf("expected the AST dump to start from CompileUnit, got:\n%s", out.String())
	}
}

// TestCompileIrMode checks --ir dumps the linear IR text.
func TestCompileIrMode(t *testing.T) {
	resetFlags()
	flags.ir = true
	path := writeTempSrc(t, "int f() { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %s (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "define i32 @f()") {
		t.Errorf("expected an IR define line, got:\n%s", out.String())
	}
}

// TestCompileLlvmMode checks --llvm dumps textual LLVM IR instead of
// ARM32 assembly.
func TestCompileLlvmMode(t *testing.T) {
	resetFlags()
	flags.llvm = true
	path := writeTempSrc(t, "int f() { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %s (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "define i32 @f()") {
		t.Errorf("expected an LLVM define line, got:\n%s", out.String())
	}
}

// TestCompileMutuallyExclusiveModes checks that passing two mode
// flags at once is rejected before any file I/O happens.
func TestCompileMutuallyExclusiveModes(t *testing.T) {
	resetFlags()
	flags.ast = true
	flags.ir = true
	var out, errOut bytes.Buffer
	if err := compile("nonexistent.c", &out, &errOut); err == nil {
		t.Fatalf("expected an error for --ast combined with --ir")
	}
	if !strings.Contains(errOut.String(), "only one of") {
		t.Errorf("expected a mutually-exclusive-modes message, got:\n%s", errOut.String())
	}
}

// TestCompileVerboseAnnotatesAssembly checks --verbose interleaves
// each IR instruction's text as an '@'-comment immediately before the
// assembly it lowers to, rather than one bulk IR dump ahead of the
// whole function.
func TestCompileVerboseAnnotatesAssembly(t *testing.T) {
	resetFlags()
	flags.verbose = true
	path := writeTempSrc(t, "int f() { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %s (stderr: %s)", err, errOut.String())
	}
	s := out.String()
	exitIdx := strings.Index(s, "@ exit [%l0]")
	if exitIdx < 0 {
		t.Fatalf("expected an '@'-commented exit instruction, got:\n%s", s)
	}
	if !strings.Contains(s[exitIdx:], "bx\tlr") && !strings.Contains(s[exitIdx:], "bx lr") {
		t.Errorf("expected the exit instruction's own epilogue right after its comment, got:\n%s", s[exitIdx:])
	}
	if !strings.Contains(s, "f:") {
		t.Errorf("expected the real assembly to still be emitted, got:\n%s", s)
	}
}

// TestCompileOutputFileRedirection checks -o writes to a file instead
// of the passed writer.
func TestCompileOutputFileRedirection(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.s")
	flags.out = outPath
	path := writeTempSrc(t, "int f() { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %s (stderr: %s)", err, errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing written to the passed writer, got:\n%s", out.String())
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output file: %s", err)
	}
	if !strings.Contains(string(data), "f:") {
		t.Errorf("expected the output file to contain the assembly, got:\n%s", string(data))
	}
}

// TestCompileParseError checks a syntax error is reported on errOut
// and returned as an error rather than panicking.
func TestCompileParseError(t *testing.T) {
	resetFlags()
	path := writeTempSrc(t, "int f( { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err == nil {
		t.Fatalf("expected a parse error")
	}
	if !strings.Contains(errOut.String(), "parse error") {
		t.Errorf("expected a parse-error message on stderr, got:\n%s", errOut.String())
	}
}

// TestLoadConfigMergesUnderFlags checks a --config YAML file supplies
// defaults that CLI flags still override.
func TestLoadConfigMergesUnderFlags(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "minic.yaml")
	if err := os.WriteFile(cfgPath, []byte("mode: ir\nverbose: true\n"), 0644); err != nil {
		t.Fatalf("write config: %s", err)
	}
	flags.config = cfgPath
	flags.asm = true // CLI flag must still win over the config file's "mode: ir"

	path := writeTempSrc(t, "int f() { return 1; }")
	var out, errOut bytes.Buffer
	if err := compile(path, &out, &errOut); err != nil {
		t.Fatalf("compile: %s (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "f:") {
		t.Errorf("expected --asm to override the config file's ir mode, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "@ exit [%l0]") {
		t.Errorf("expected verbose from the config file to still apply, got:\n%s", out.String())
	}
}
