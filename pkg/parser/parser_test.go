package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/scanner"
)

func newBoth(source string) (Parser, Parser) {
	return NewRecursiveDescentParser(scanner.NewFAScanner(source)),
		NewLL1Parser(scanner.NewHandCodedScanner(source))
}

func TestParserParity(t *testing.T) {
	sources := []string{
		`program demo is begin write "hi"; end`,

		`program demo is
		   var x: integer;
		 begin
		   x = 1 + 2 * 3;
		   write x;
		 end`,

		`func integer add has var a, b: integer; begin return a + b; end func
		 program demo is
		   var total: integer = 0;
		 begin
		   total = add(1, 2);
		   write total;
		 end`,

		`program demo is
		   var nums: [integer] = {1, 2, 3, 4, 5};
		 begin
		   for i = 0; i < 5; i++ do
		     write nums[i];
		   end for
		 end`,

		`program demo is
		   var x: integer;
		 begin
		   if x > 0 then
		     write "pos";
		   else if x < 0 then
		     write "neg";
		   else
		     write "zero";
		   end if
		   end if
		 end`,

		`program demo is
		   var ok: boolean = true;
		 begin
		   while ok and not false do
		     ok = false;
		   end while
		 end`,

		`program demo is begin skip; stop; end`,

		`func void greet has var name: string; begin write "hi ", name; end func
		 program demo is begin greet("robin"); end`,
	}

	for _, src := range sources {
		src := src
		t.Run(src, func(t *testing.T) {
			rd, ll1 := newBoth(src)
			rdAST, ll1AST := rd.ParseAST(), ll1.ParseAST()
			if diff := cmp.Diff(rdAST, ll1AST); diff != "" {
				t.Fatalf("RecursiveDescentParser and LL1Parser disagree (-RD +LL1):\n%s", diff)
			}
			if _, isErr := rdAST.(*ast.ErrorNode); isErr {
				t.Fatalf("expected both parsers to succeed on valid input, got error: %v", rdAST)
			}
		})
	}
}

func TestParserParity_Faults(t *testing.T) {
	sources := []string{
		`program demo is begin x = ; end`,
		`program demo is begin write 1 2; end`,
		`program demo`,
		`program demo is begin var a, b: integer = 1; end`,
	}

	for _, src := range sources {
		src := src
		t.Run(src, func(t *testing.T) {
			rd, ll1 := newBoth(src)
			rdAST, ll1AST := rd.ParseAST(), ll1.ParseAST()

			rdErr, rdOK := rdAST.(*ast.ErrorNode)
			ll1Err, ll1OK := ll1AST.(*ast.ErrorNode)
			require.True(t, rdOK, "RecursiveDescentParser should have latched a fault")
			require.True(t, ll1OK, "LL1Parser should have latched a fault")
			require.NotEmpty(t, rdErr.Message)
			require.NotEmpty(t, ll1Err.Message)
		})
	}
}

func TestRecursiveDescentParser_FirstErrorLatches(t *testing.T) {
	src := `program demo is begin x = ; y = ; end`
	p := NewRecursiveDescentParser(scanner.NewFAScanner(src))
	node := p.ParseAST()
	errNode, ok := node.(*ast.ErrorNode)
	require.True(t, ok)
	require.NotEmpty(t, errNode.Message)
	// The first ';' (byte 26), not the second one (byte 32).
	require.Equal(t, 26, errNode.Span.NodeStart)
}

func TestLL1Parser_FirstErrorLatches(t *testing.T) {
	src := `program demo is begin x = ; y = ; end`
	p := NewLL1Parser(scanner.NewFAScanner(src))
	node := p.ParseAST()
	errNode, ok := node.(*ast.ErrorNode)
	require.True(t, ok)
	require.NotEmpty(t, errNode.Message)
	// The first ';' (byte 26), not the second one (byte 32).
	require.Equal(t, 26, errNode.Span.NodeStart)
}
