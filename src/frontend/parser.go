// parser.go implements a hand-written recursive-descent/precedence-climbing
// parser over the token slice produced by lexer.go, building the typed
// ast.Node tree the rest of the pipeline consumes. This module has no
// generated-parser build step, so the descent here plays the role
// raymyers-ralph-cc-go's hand-written Pratt expression parser plays,
// wired onto statement/declaration grammar in the same construct-then-
// attach-children node-building style.

package frontend

import (
	"fmt"
	"strconv"

	"github.com/yumety/minic/src/ast"
)

// parser walks a fixed token slice with one token of lookahead.
type parser struct {
	toks []token
	pos  int
}

// Parse tokenizes and parses src into a CompileUnit root node.
func Parse(src string) (*ast.Node, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseCompileUnit()
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) at(t tokenType) bool { return p.cur().typ == t }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(t tokenType, what string) (token, error) {
	if !p.at(t) {
		return token{}, fmt.Errorf("line %d: expected %s, got %q", p.cur().line, what, p.cur().val)
	}
	return p.advance(), nil
}

// parseCompileUnit parses the whole program: a sequence of function
// definitions and global variable/array declarations.
func (p *parser) parseCompileUnit() (*ast.Node, error) {
	line := p.cur().line
	root := ast.NewNode(ast.CompileUnit, line)
	for !p.at(tokEOF) {
		var typeTok token
		if p.at(tokKeywordVoid) {
			typeTok = p.advance()
		} else {
			var err error
			typeTok, err = p.expect(tokKeywordInt, "'int' or 'void'")
			if err != nil {
				return nil, err
			}
		}
		nameTok, err := p.expect(tokIdentifier, "identifier")
		if err != nil {
			return nil, err
		}
		if p.at(tokLParen) {
			fn, err := p.parseFuncDefTail(typeTok, nameTok)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, fn)
		} else {
			if typeTok.typ == tokKeywordVoid {
				return nil, fmt.Errorf("line %d: 'void' is not a valid variable type", typeTok.line)
			}
			decl, err := p.parseDeclStmtTail(typeTok, nameTok)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, decl)
		}
	}
	return root, nil
}

// leafType builds a LeafType node rendering the given type keyword
// ("int" or "void") at line.
func leafType(line int, name string) *ast.Node {
	n := ast.NewLeaf(ast.LeafType, line)
	n.TypeName = name
	return n
}

// parseFuncDefTail parses "(" params ")" block, given the return-type
// keyword and function name have already been consumed.
func (p *parser) parseFuncDefTail(typeTok, nameTok token) (*ast.Node, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	paramsLine := p.cur().line
	params := ast.NewNode(ast.FuncFormalParams, paramsLine)
	for !p.at(tokRParen) {
		if len(params.Children) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return nil, err
			}
		}
		param, err := p.parseFormalParam()
		if err != nil {
			return nil, err
		}
		params.Children = append(params.Children, param)
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn := ast.NewNode(ast.FuncDef, nameTok.line, leafType(typeTok.line, typeTok.val), params, body)
	fn.Name = nameTok.val
	return fn, nil
}

// parseFormalParam parses "int" name ("[" "]" | "[" expr "]")*.
func (p *parser) parseFormalParam() (*ast.Node, error) {
	typeTok, err := p.expect(tokKeywordInt, "'int'")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokIdentifier, "identifier")
	if err != nil {
		return nil, err
	}
	param := ast.NewNode(ast.FuncFormalParam, nameTok.line, leafType(typeTok.line, "int"))
	param.Name = nameTok.val
	if p.at(tokLBracket) {
		dims, err := p.parseArrayDims(true)
		if err != nil {
			return nil, err
		}
		param.Children = append(param.Children, dims)
	}
	return param, nil
}

// parseArrayDims parses one or more "[" expr? "]" groups. allowEmptyFirst
// permits the leading dimension to be omitted (formal parameters only).
func (p *parser) parseArrayDims(allowEmptyFirst bool) (*ast.Node, error) {
	line := p.cur().line
	dims := ast.NewNode(ast.ArrayDims, line)
	first := true
	for p.at(tokLBracket) {
		p.advance()
		if p.at(tokRBracket) {
			if !(first && allowEmptyFirst) {
				return nil, fmt.Errorf("line %d: array dimension must be a constant expression", line)
			}
			p.advance()
			// Erased leading dimension: keep the slot so index i of
			// ArrayDims.Children always lines up with bracket i, but
			// leave it nil (no size expression to lower).
			dims.Children = append(dims.Children, nil)
			first = false
			continue
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		dims.Children = append(dims.Children, expr)
		first = false
	}
	return dims, nil
}

// parseDeclStmtTail parses the remainder of a declaration statement
// (one or more comma-separated declarators, terminated by ';'), given
// the "int" keyword and the first declarator's name are already consumed.
func (p *parser) parseDeclStmtTail(typeTok, nameTok token) (*ast.Node, error) {
	line := typeTok.line
	varDecl := ast.NewNode(ast.VarDecl, line, leafType(typeTok.line, "int"))
	decl := ast.NewNode(ast.DeclStmt, line, varDecl)
	def, err := p.parseDeclaratorTail(nameTok)
	if err != nil {
		return nil, err
	}
	decl.Children = append(decl.Children, def)
	for p.at(tokComma) {
		p.advance()
		nt, err := p.expect(tokIdentifier, "identifier")
		if err != nil {
			return nil, err
		}
		def, err := p.parseDeclaratorTail(nt)
		if err != nil {
			return nil, err
		}
		decl.Children = append(decl.Children, def)
	}
	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseDeclaratorTail parses one VarDef or ArrayDef given its name token
// has already been consumed.
func (p *parser) parseDeclaratorTail(nameTok token) (*ast.Node, error) {
	if p.at(tokLBracket) {
		dims, err := p.parseArrayDims(false)
		if err != nil {
			return nil, err
		}
		def := ast.NewNode(ast.ArrayDef, nameTok.line, dims)
		def.Name = nameTok.val
		return def, nil
	}
	def := ast.NewLeaf(ast.VarDef, nameTok.line)
	def.Name = nameTok.val
	if p.at(tokAssign) {
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, init)
	}
	return def, nil
}

// parseBlock parses "{" stmt* "}".
func (p *parser) parseBlock() (*ast.Node, error) {
	open, err := p.expect(tokLBrace, "'{'")
	if err != nil {
		return nil, err
	}
	block := ast.NewNode(ast.Block, open.line)
	for !p.at(tokRBrace) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, stmt)
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseStmt() (*ast.Node, error) {
	switch p.cur().typ {
	case tokKeywordInt:
		typeTok := p.advance()
		nameTok, err := p.expect(tokIdentifier, "identifier")
		if err != nil {
			return nil, err
		}
		return p.parseDeclStmtTail(typeTok, nameTok)
	case tokLBrace:
		return p.parseBlock()
	case tokKeywordReturn:
		return p.parseReturn()
	case tokKeywordIf:
		return p.parseIf()
	case tokKeywordWhile:
		return p.parseWhile()
	case tokKeywordBreak:
		line := p.advance().line
		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return nil, err
		}
		return ast.NewLeaf(ast.Break, line), nil
	case tokKeywordContinue:
		line := p.advance().line
		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return nil, err
		}
		return ast.NewLeaf(ast.Continue, line), nil
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseReturn() (*ast.Node, error) {
	line := p.advance().line
	if p.at(tokSemi) {
		p.advance()
		return ast.NewNode(ast.Return, line), nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.Return, line, e), nil
}

func (p *parser) parseIf() (*ast.Node, error) {
	line := p.advance().line
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if p.at(tokKeywordElse) {
		p.advance()
		els, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.If, line, cond, then, els), nil
	}
	return ast.NewNode(ast.If, line, cond, then), nil
}

func (p *parser) parseWhile() (*ast.Node, error) {
	line := p.advance().line
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return ast.NewNode(ast.While, line, cond, body), nil
}

// parseExprOrAssignStmt parses either "lvalue = expr ;" or "expr ;"
// (a bare call used for its side effect).
func (p *parser) parseExprOrAssignStmt() (*ast.Node, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(tokAssign) {
		line := p.advance().line
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return nil, err
		}
		return ast.NewNode(ast.Assign, line, e, rhs), nil
	}
	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}
	return e, nil
}

// Operator precedence, lowest to highest: || && == != < > <= >= + - * / %
var binOpKind = map[tokenType]ast.NodeType{
	tokOrOr: ast.Or, tokAndAnd: ast.And,
	tokEq: ast.Eq, tokNe: ast.Ne,
	tokLt: ast.Lt, tokGt: ast.Gt, tokLe: ast.Le, tokGe: ast.Ge,
	tokPlus: ast.Add, tokMinus: ast.Sub,
	tokStar: ast.Mul, tokSlash: ast.Div, tokPercent: ast.Mod,
}

var precedence = map[tokenType]int{
	tokOrOr:    1,
	tokAndAnd:  2,
	tokEq:      3, tokNe: 3,
	tokLt:      4, tokGt: 4, tokLe: 4, tokGe: 4,
	tokPlus:    5, tokMinus: 5,
	tokStar:    6, tokSlash: 6, tokPercent: 6,
}

func (p *parser) parseExpr() (*ast.Node, error) {
	return p.parseBinary(1)
}

// parseBinary implements precedence climbing over the left-associative
// binary operators.
func (p *parser) parseBinary(minPrec int) (*ast.Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := precedence[p.cur().typ]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		opTok := p.advance()
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewNode(binOpKind[opTok.typ], opTok.line, lhs, rhs)
	}
}

func (p *parser) parseUnary() (*ast.Node, error) {
	switch p.cur().typ {
	case tokMinus:
		line := p.advance().line
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.Neg, line, operand), nil
	case tokNot:
		line := p.advance().line
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.Not, line, operand), nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression followed by any number of
// "[" expr "]" array-index suffixes.
func (p *parser) parsePostfix() (*ast.Node, error) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if prim.Kind != ast.LeafVarId {
		return prim, nil
	}
	if !p.at(tokLBracket) {
		return prim, nil
	}
	line := prim.Line
	access := ast.NewNode(ast.ArrayAccess, line, prim)
	dims, err := p.parseArrayDims(false)
	if err != nil {
		return nil, err
	}
	access.Children = append(access.Children, dims.Children...)
	return access, nil
}

func (p *parser) parsePrimary() (*ast.Node, error) {
	tok := p.cur()
	switch tok.typ {
	case tokInteger:
		p.advance()
		v, err := strconv.Atoi(tok.val)
		if err != nil {
			return nil, fmt.Errorf("line %d: malformed integer literal %q", tok.line, tok.val)
		}
		n := ast.NewLeaf(ast.LeafLiteralUint, tok.line)
		n.IntValue = v
		return n, nil
	case tokLParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokIdentifier:
		p.advance()
		if p.at(tokLParen) {
			return p.parseCallTail(tok)
		}
		n := ast.NewLeaf(ast.LeafVarId, tok.line)
		n.Name = tok.val
		return n, nil
	default:
		return nil, fmt.Errorf("line %d: unexpected token %q", tok.line, tok.val)
	}
}

func (p *parser) parseCallTail(nameTok token) (*ast.Node, error) {
	p.advance() // '('
	argsLine := p.cur().line
	args := ast.NewNode(ast.FuncRealParams, argsLine)
	for !p.at(tokRParen) {
		if len(args.Children) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args.Children = append(args.Children, arg)
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	call := ast.NewNode(ast.FuncCall, nameTok.line, args)
	call.Name = nameTok.val
	return call, nil
}
