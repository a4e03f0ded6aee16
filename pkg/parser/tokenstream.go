// Package parser provides two interchangeable parsers over a token.Kind
// grammar: a recursive-descent parser (one function per non-terminal) and an
// explicit-stack LL(1) parser. Both implement Parser and, on grammatically
// valid input, MUST produce structurally identical ASTs.
package parser

import (
	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/scanner"
	"its-hmny.dev/robinc/pkg/token"
)

// Parser is the contract shared by both parser variants.
type Parser interface {
	// ParseAST returns the Source root on success, or an *ast.ErrorNode
	// carrying the first latched diagnostic.
	ParseAST() ast.Node
}

// TokenStream wraps a scanner.Scanner with a peek-N primitive: a small FIFO
// ring of buffered lookahead tokens, so both parser variants can request
// tokens beyond the immediate one (bounded-lookahead disambiguation,
// LL(1) prediction) without the scanner itself needing to support seeking.
type TokenStream struct {
	sc  scanner.Scanner
	buf []token.Token
	cur token.Token
}

// NewTokenStream returns a stream positioned at sc's first token.
func NewTokenStream(sc scanner.Scanner) *TokenStream {
	ts := &TokenStream{sc: sc}
	ts.cur = ts.pull()
	return ts
}

func (ts *TokenStream) pull() token.Token {
	if len(ts.buf) > 0 {
		t := ts.buf[0]
		ts.buf = ts.buf[1:]
		return t
	}
	return ts.sc.NextToken()
}

// Current returns the token under the cursor without consuming it.
func (ts *TokenStream) Current() token.Token { return ts.cur }

// Advance consumes and returns the current token, then pulls the next one
// (from the buffer if Peek has already filled it, otherwise from the
// scanner) under the cursor.
func (ts *TokenStream) Advance() token.Token {
	prev := ts.cur
	ts.cur = ts.pull()
	return prev
}

// Peek returns the token n positions past Current without consuming
// anything; Peek(0) is equivalent to Current. Every peeked token is
// buffered so it is replayed, not re-scanned, once Advance reaches it.
func (ts *TokenStream) Peek(n int) token.Token {
	if n == 0 {
		return ts.cur
	}
	for len(ts.buf) < n {
		ts.buf = append(ts.buf, ts.sc.NextToken())
	}
	return ts.buf[n-1]
}
