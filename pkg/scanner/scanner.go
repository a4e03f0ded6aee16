// Package scanner provides two interchangeable lexers for the source
// language: a table-driven finite-automaton scanner (FAScanner) and a
// hand-coded character-dispatch scanner (HandCodedScanner). Both satisfy
// the Scanner interface and, on valid input, MUST produce identical token
// streams (kind, value, line, span) — see TestScannerParity in scanner_test.go.
package scanner

import "its-hmny.dev/robinc/pkg/token"

// Scanner is the contract shared by both lexer variants.
type Scanner interface {
	// NextToken returns the next token, or an END_OF_FILE token once the
	// source is exhausted. On the first lexical fault it returns an ERROR
	// token and advances the cursor past the end of input, so every
	// subsequent call also yields END_OF_FILE.
	NextToken() token.Token

	// TokenizeAll materializes the entire token stream and restores the
	// cursor to wherever it was before the call. If a lexical fault is
	// present, the first one is latched (retrievable via LastError) and
	// scanning continues past it so the caller still sees the remainder
	// of the stream and a final END_OF_FILE.
	TokenizeAll() []token.Token

	// Reset restores the scanner to its initial state for a second pass.
	Reset()

	// LastError returns the first ERROR token produced so far, if any.
	LastError() (token.Token, bool)
}

// base holds the cursor state and helpers shared by both scanner variants.
// Neither variant exposes base directly; each embeds it and implements its
// own NextToken/TokenizeAll on top of the shared primitives.
type base struct {
	source     string
	pos        int // byte cursor, 0-based
	line       int // 1-based
	tokenStart int
	tokenEnd   int
	lastErr    *token.Token
}

func newBase(source string) base {
	return base{source: source, line: 1}
}

func (b *base) isEOF() bool { return b.pos >= len(b.source) }

func (b *base) peek() byte {
	if b.isEOF() {
		return 0
	}
	return b.source[b.pos]
}

func (b *base) peekAt(offset int) byte {
	if b.pos+offset >= len(b.source) {
		return 0
	}
	return b.source[b.pos+offset]
}

func (b *base) advance() byte {
	if b.isEOF() {
		return 0
	}
	ch := b.source[b.pos]
	b.pos++
	if ch == '\n' {
		b.line++
	}
	return ch
}

func (b *base) startToken() { b.tokenStart = b.pos }

func (b *base) makeToken(kind token.Kind, value string) token.Token {
	b.tokenEnd = b.pos
	return token.Token{Kind: kind, Value: value, Line: b.line, Start: b.tokenStart, End: b.tokenEnd}
}

// lexicalError latches the scanner into its terminal failure state: the
// returned ERROR token carries the message, and the cursor is pushed past
// the end of input so every later NextToken call returns END_OF_FILE.
func (b *base) lexicalError(message string) token.Token {
	tok := token.Token{Kind: token.ERROR, Value: message, Line: b.line, Start: b.tokenStart, End: b.pos}
	b.lastErr = &tok
	b.tokenEnd = b.pos // post-fault cursor, before the jump-to-EOF below
	b.pos = len(b.source) + 1
	return tok
}

func (b *base) reset() {
	b.pos = 0
	b.line = 1
	b.tokenStart = 0
	b.tokenEnd = 0
	b.lastErr = nil
}

func (b *base) lastError() (token.Token, bool) {
	if b.lastErr != nil {
		return *b.lastErr, true
	}
	return token.Token{}, false
}

// checkReserved reclassifies a scanned identifier as a keyword when it
// matches the reserved-word table, otherwise leaves it as ID_SY.
func checkReserved(s string) token.Kind {
	if kind, ok := token.Keywords[s]; ok {
		return kind
	}
	return token.ID_SY
}

// tokenizeAll drives `next` (a scanner's own NextToken) to materialize the
// full stream while restoring the cursor afterward. It implements the
// "continue past the first fault" contract common to both variants.
func tokenizeAll(b *base, next func() token.Token) []token.Token {
	savedPos, savedLine := b.pos, b.line
	savedStart, savedEnd := b.tokenStart, b.tokenEnd
	savedErr := b.lastErr

	b.pos, b.line, b.tokenStart, b.tokenEnd, b.lastErr = 0, 1, 0, 0, nil

	var stream []token.Token
	var latched *token.Token
	for {
		tok := next()
		stream = append(stream, tok)

		if tok.Kind == token.ERROR {
			if latched == nil {
				t := tok
				latched = &t
			}
			// Undo next()'s jump-to-EOF (tokenEnd is the post-fault cursor,
			// set by lexicalError before it jumped) and clear lastErr so the
			// next() call immediately below doesn't hit the
			// "already faulted" guard and short-circuit to END_OF_FILE.
			b.pos = b.tokenEnd
			b.lastErr = nil
			continue
		}
		if tok.Kind == token.END_OF_FILE {
			break
		}
	}

	b.pos, b.line, b.tokenStart, b.tokenEnd = savedPos, savedLine, savedStart, savedEnd
	b.lastErr = savedErr
	if b.lastErr == nil {
		b.lastErr = latched
	}
	return stream
}
