package util

import (
	"fmt"
	"io"
	"strings"
)

// Writer buffers assembly or IR text output. MiniC compiles a single
// module on one goroutine, so there is no channel hand-off to a
// background flusher: callers build up the buffer directly and take
// the finished text with String (or flush it with WriteTo).
type Writer struct {
	sb strings.Builder
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Write writes a format string to the buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// WriteString writes a plain string to the buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Ins1 writes a one-operand instruction line.
func (w *Writer) Ins1(op, rs1 string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s\n", op, rs1)
}

// Ins2 writes a two-operand instruction line (destination, source).
func (w *Writer) Ins2(op, rd, rs1 string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s\n", op, rd, rs1)
}

// Ins2Imm writes a destination-register, source-register, immediate
// instruction line.
func (w *Writer) Ins2Imm(op, rd, rs1 string, imm int) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s, #%d\n", op, rd, rs1, imm)
}

// Ins3 writes a three-operand instruction line.
func (w *Writer) Ins3(op, rd, rs1, rs2 string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s, %s\n", op, rd, rs1, rs2)
}

// LoadStore writes a load or store instruction addressing reg at
// offset(pointer), e.g. "ldr r0, [fp, #-8]".
func (w *Writer) LoadStore(op, reg string, offset int, pointer string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, [%s, #%d]\n", op, reg, pointer, offset)
}

// Label writes a bare label line.
func (w *Writer) Label(name string) {
	fmt.Fprintf(&w.sb, "%s:\n", name)
}

// Comment writes a single-line '@'-prefixed ARM assembly comment.
func (w *Writer) Comment(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, "\t@ %s\n", fmt.Sprintf(format, args...))
}

// String returns the buffered text.
func (w *Writer) String() string { return w.sb.String() }

// WriteTo flushes the buffer to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := io.WriteString(out, w.sb.String())
	return int64(n), err
}
