package scanner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"its-hmny.dev/robinc/pkg/token"
)

func newBoth(source string) (Scanner, Scanner) {
	return NewFAScanner(source), NewHandCodedScanner(source)
}

func TestScannerParity(t *testing.T) {
	sources := []string{
		`program demo has begin write "hi"; end`,
		`func integer add has var a, b: integer begin return a + b; end`,
		`var x: integer[5][5] is 1 <= 2 and not false`,
		`x = 3.14 + $y - @z # w ? v;`,
		`if a <> b then skip; else stop; end`,
		"/* leading */ x = 1; // trailing\n/* spans\na newline */ y = 2;",
		``,
	}

	for _, src := range sources {
		src := src
		t.Run(src, func(t *testing.T) {
			fa, hand := newBoth(src)
			faToks, handToks := fa.TokenizeAll(), hand.TokenizeAll()
			if diff := cmp.Diff(faToks, handToks); diff != "" {
				t.Fatalf("FAScanner and HandCodedScanner disagree (-FA +HandCoded):\n%s", diff)
			}
		})
	}
}

func TestScannerParity_Faults(t *testing.T) {
	sources := []string{
		`var x: integer is 3.;`,
		`write "unterminated;`,
		`x = 1 ~ 2;`,
		`x = 1; /* unterminated`,
	}

	for _, src := range sources {
		src := src
		t.Run(src, func(t *testing.T) {
			fa, hand := newBoth(src)
			faToks, handToks := fa.TokenizeAll(), hand.TokenizeAll()
			if diff := cmp.Diff(faToks, handToks); diff != "" {
				t.Fatalf("FAScanner and HandCodedScanner disagree on faulty input (-FA +HandCoded):\n%s", diff)
			}

			faErr, faOK := fa.LastError()
			handErr, handOK := hand.LastError()
			require.True(t, faOK)
			require.True(t, handOK)
			assert.Equal(t, faErr.Kind, handErr.Kind)
		})
	}
}

func TestNextToken_Keywords(t *testing.T) {
	for _, sc := range []Scanner{NewFAScanner("program has begin end if then else while do for var"), NewHandCodedScanner("program has begin end if then else while do for var")} {
		want := []token.Kind{
			token.PROGRAM_KW, token.HAS_KW, token.BEGIN_KW, token.END_KW,
			token.IF_KW, token.THEN_KW, token.ELSE_KW, token.WHILE_KW,
			token.DO_KW, token.FOR_KW, token.VAR_KW, token.END_OF_FILE,
		}
		for _, k := range want {
			tok := sc.NextToken()
			assert.Equal(t, k, tok.Kind)
		}
	}
}

func TestNextToken_UnaryOperatorSigils(t *testing.T) {
	for _, sc := range []Scanner{NewFAScanner(`$ ? @ #`), NewHandCodedScanner(`$ ? @ #`)} {
		want := []token.Kind{token.STRINGIFY_OP, token.BOOLEAN_OP, token.ROUND_OP, token.LENGTH_OP, token.END_OF_FILE}
		for _, k := range want {
			assert.Equal(t, k, sc.NextToken().Kind)
		}
	}
}

func TestNextToken_LatchesFirstErrorThenEOF(t *testing.T) {
	for _, sc := range []Scanner{NewFAScanner(`ok ~ also_fine`), NewHandCodedScanner(`ok ~ also_fine`)} {
		first := sc.NextToken()
		require.Equal(t, token.ID_SY, first.Kind)

		errTok := sc.NextToken()
		require.Equal(t, token.ERROR, errTok.Kind)

		// Every subsequent call is END_OF_FILE, even though "also_fine" was
		// never consumed.
		for i := 0; i < 3; i++ {
			assert.Equal(t, token.END_OF_FILE, sc.NextToken().Kind)
		}

		last, ok := sc.LastError()
		require.True(t, ok)
		assert.Equal(t, errTok.Value, last.Value)
	}
}

func TestTokenizeAll_RestoresCursorAndContinuesPastFault(t *testing.T) {
	src := `a ~ b`
	for _, sc := range []Scanner{NewFAScanner(src), NewHandCodedScanner(src)} {
		// Advance the live cursor before calling TokenizeAll.
		first := sc.NextToken()
		require.Equal(t, token.ID_SY, first.Kind)

		stream := sc.TokenizeAll()
		require.Len(t, stream, 4) // "a", ERROR, "b", EOF
		assert.Equal(t, token.ID_SY, stream[0].Kind)
		assert.Equal(t, token.ERROR, stream[1].Kind)
		assert.Equal(t, token.ID_SY, stream[2].Kind)
		assert.Equal(t, token.END_OF_FILE, stream[3].Kind)

		// Cursor restored: the next live call resumes right after "a".
		second := sc.NextToken()
		assert.Equal(t, token.ERROR, second.Kind)
	}
}

func TestNextToken_BlockCommentTracksLines(t *testing.T) {
	src := "/* line one\nline two */ x"
	for _, sc := range []Scanner{NewFAScanner(src), NewHandCodedScanner(src)} {
		tok := sc.NextToken()
		require.Equal(t, token.ID_SY, tok.Kind)
		assert.Equal(t, 2, tok.Line)
	}
}

func TestTokenizeAll_BlockCommentUnterminated(t *testing.T) {
	src := `x = 1; /* never closed`
	for _, sc := range []Scanner{NewFAScanner(src), NewHandCodedScanner(src)} {
		stream := sc.TokenizeAll()
		require.NotEmpty(t, stream)
		assert.Equal(t, token.END_OF_FILE, stream[len(stream)-1].Kind)

		var sawError bool
		for _, tok := range stream {
			if tok.Kind == token.ERROR {
				sawError = true
			}
		}
		require.True(t, sawError)

		_, ok := sc.LastError()
		require.True(t, ok)
	}
}

func TestReset(t *testing.T) {
	for _, sc := range []Scanner{NewFAScanner(`a b`), NewHandCodedScanner(`a b`)} {
		sc.NextToken()
		sc.Reset()
		tok := sc.NextToken()
		assert.Equal(t, token.ID_SY, tok.Kind)
		assert.Equal(t, "a", tok.Value)
		_, ok := sc.LastError()
		assert.False(t, ok)
	}
}
