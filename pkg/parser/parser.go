package parser

import (
	"fmt"

	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/token"
)

// base is embedded by both parser variants. It owns the token stream and the
// single latched diagnostic: the first fault encountered, lexical or
// syntactic, wins, and every parse function bails out immediately once one
// is latched (first-error-latching, mirroring the scanner's own rule).
type base struct {
	ts  *TokenStream
	err *ast.ErrorNode
}

func newBase(ts *TokenStream) base { return base{ts: ts} }

func (b *base) failed() bool { return b.err != nil }

// latch records msg as the parser's diagnostic if nothing has been latched
// yet; later calls are no-ops so the first fault always wins.
func (b *base) latch(msg string, span ast.Span) *ast.ErrorNode {
	if b.err == nil {
		b.err = &ast.ErrorNode{Base: ast.Base{Span: span}, Message: msg}
	}
	return b.err
}

func spanOf(t token.Token) ast.Span {
	return ast.Span{StartLine: t.Line, EndLine: t.Line, NodeStart: t.Start, NodeEnd: t.End}
}

func joinSpan(from, to ast.Span) ast.Span {
	return ast.Span{StartLine: from.StartLine, EndLine: to.EndLine, NodeStart: from.NodeStart, NodeEnd: to.NodeEnd}
}

// nodeSpan extracts a span from any already-built AST value (Node,
// Statement, Expression, DataType, ...) via the Spanner promoted from
// ast.Base, rather than a type switch over every concrete variant.
func nodeSpan(n interface{}) ast.Span {
	if s, ok := n.(ast.Spanner); ok {
		return s.SpanOf()
	}
	return ast.Span{}
}

// expect consumes the current token if it has kind, forwarding a scanner
// fault or latching a mismatch diagnostic otherwise.
func (b *base) expect(kind token.Kind) (token.Token, bool) {
	if b.failed() {
		return token.Token{}, false
	}
	cur := b.ts.Current()
	if cur.Kind == token.ERROR {
		b.latch(cur.Value, spanOf(cur))
		return token.Token{}, false
	}
	if cur.Kind != kind {
		b.latch(fmt.Sprintf("expected %s, found %s %q", kind, cur.Kind, cur.Value), spanOf(cur))
		return token.Token{}, false
	}
	b.ts.Advance()
	return cur, true
}

// forwardIfFault latches and reports true when the current token is itself
// the scanner's ERROR sentinel, without consuming it.
func (b *base) forwardIfFault() bool {
	if b.failed() {
		return true
	}
	if cur := b.ts.Current(); cur.Kind == token.ERROR {
		b.latch(cur.Value, spanOf(cur))
		return true
	}
	return false
}

// looksLikeAssignment resolves the Expr := Assignment | Or ambiguity with
// bounded lookahead: starting from an identifier, it walks matched "[" "]"
// index brackets (without building any AST) and reports whether a bare "="
// follows the chain. This is the rule-73-vs-72 disambiguation from the
// grammar: both productions start with Assignable, and only the token past
// the index chain tells them apart.
func looksLikeAssignment(ts *TokenStream) bool {
	if ts.Current().Kind != token.ID_SY {
		return false
	}
	offset := 1
	for ts.Peek(offset).Kind == token.LEFT_SQUARE_PR {
		depth := 1
		offset++
		for depth > 0 {
			switch ts.Peek(offset).Kind {
			case token.LEFT_SQUARE_PR:
				depth++
			case token.RIGHT_SQUARE_PR:
				depth--
			case token.END_OF_FILE, token.ERROR:
				return false
			}
			offset++
		}
	}
	return ts.Peek(offset).Kind == token.EQUAL_OP
}

// startsDanglingElse resolves the rule-138-vs-66 ambiguity: after a Then
// block, a bare "else" always binds to the nearest open "if", so parsing
// never needs more than the one token of lookahead it already has at the
// point it decides whether to consume an Else clause. Kept as a named
// predicate (rather than an inline check) because both parser variants
// apply it at the same grammar point.
func startsDanglingElse(cur token.Token) bool { return cur.Kind == token.ELSE_KW }
