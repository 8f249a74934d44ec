package util

import "strings"

// AsmLabel renders an IR-local label name (e.g. ".L3") as a
// function-qualified, assembler-legal symbol. Lowering already mints
// function-scoped names (Function.NewLabel), so all that's left for
// the back end is to make them unique across the whole output file.
func AsmLabel(funcName, irLabel string) string {
	return funcName + "_" + strings.TrimPrefix(irLabel, ".")
}

// FuncEntry returns the global assembly symbol for a function's entry point.
func FuncEntry(funcName string) string { return funcName }

// FuncExit returns the local assembly label for a function's single exit/epilogue.
func FuncExit(funcName string) string { return funcName + "_exit" }
