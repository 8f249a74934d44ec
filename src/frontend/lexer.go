// This lexer follows Rob Pike's state-function scanner design. Since
// lowering and code generation here run single-threaded, there's no
// goroutine driving the state machine and no channel hand-off to the
// parser: run walks the whole state chain eagerly into a token slice,
// and the parser pulls from that slice instead of a channel.

package frontend

import (
	"fmt"
	"unicode/utf8"
)

// stateFunc defines the lexer's current state.
type stateFunc func(*lexer) stateFunc

// tokenType differentiates the tokens the lexer can emit.
type tokenType int

const (
	tokEOF tokenType = iota
	tokError
	tokIdentifier
	tokInteger
	tokKeywordInt
	tokKeywordVoid
	tokKeywordIf
	tokKeywordElse
	tokKeywordWhile
	tokKeywordBreak
	tokKeywordContinue
	tokKeywordReturn
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokSemi
	tokComma
	tokAssign
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokLt
	tokGt
	tokLe
	tokGe
	tokEq
	tokNe
	tokAndAnd
	tokOrOr
	tokNot
)

var keywords = map[string]tokenType{
	"int":      tokKeywordInt,
	"void":     tokKeywordVoid,
	"if":       tokKeywordIf,
	"else":     tokKeywordElse,
	"while":    tokKeywordWhile,
	"break":    tokKeywordBreak,
	"continue": tokKeywordContinue,
	"return":   tokKeywordReturn,
}

// token is a scanned lexeme plus its position in the source stream.
type token struct {
	typ  tokenType
	val  string
	line int
	pos  int
}

func (t token) String() string {
	if t.typ == tokEOF {
		return "EOF"
	}
	return fmt.Sprintf("%q (line %d:%d)", t.val, t.line, t.pos)
}

const eof = 0

// lexer scans MiniC source text into a slice of tokens.
type lexer struct {
	input       string
	start       int
	pos         int
	width       int
	line        int
	startOnLine int
	state       stateFunc
	tokens      []token
	err         error
}

func newLexer(src string) *lexer {
	return &lexer{
		input:       src,
		line:        1,
		startOnLine: 1,
		state:       lexGlobal,
	}
}

// run drives the state machine to completion, collecting tokens.
func (l *lexer) run() error {
	for state := l.state; state != nil; {
		state = state(l)
	}
	return l.err
}

// emit appends an item of type typ for the text scanned since start.
func (l *lexer) emit(typ tokenType) {
	l.tokens = append(l.tokens, token{
		typ:  typ,
		val:  l.input[l.start:l.pos],
		line: l.line,
		pos:  l.startOnLine,
	})
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

func (l *lexer) ignore() {
	l.startOnLine += len(l.input[l.start:l.pos])
	l.start = l.pos
}

func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// errorf records a scan error and terminates the state machine.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	l.err = fmt.Errorf("line %d: %s", l.line, fmt.Sprintf(format, args...))
	l.tokens = append(l.tokens, token{typ: tokError, val: l.err.Error(), line: l.line})
	return nil
}

// Lex tokenizes src in full and returns its token slice, or the first
// scan error encountered.
func Lex(src string) ([]token, error) {
	l := newLexer(src)
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}
