package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"its-hmny.dev/robinc/pkg/parser"
	"its-hmny.dev/robinc/pkg/scanner"
)

func analyze(t *testing.T, source string) *Analyzer {
	t.Helper()
	p := parser.NewRecursiveDescentParser(scanner.NewFAScanner(source))
	a := NewAnalyzer(p)
	a.Analyze()
	return a
}

func TestAnalyzer_Clean(t *testing.T) {
	sources := []string{
		`program demo is begin write "hello, world"; end`,

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
		   write #nums;
		   for i = 0; i < 5; i++ do
		     write nums[i];
		   end for
		 end`,

		`program demo is
		   var x: integer = 0;
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

		`func void greet has var name: string; begin write "hi ", name; end func
		 program demo is begin greet("robin"); end`,
	}

	for _, src := range sources {
		src := src
		t.Run(src, func(t *testing.T) {
			a := analyze(t, src)
			err, has := a.GetError()
			assert.False(t, has, "unexpected semantic error: %v", err)
		})
	}
}

func TestAnalyzer_DuplicateFunctionName(t *testing.T) {
	src := `func integer demo has var a: integer; begin return a; end func
	        func void demo has var b: integer; begin write b; end func
	        program main is begin end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "already exists")
}

func TestAnalyzer_UninitializedUse(t *testing.T) {
	src := `program demo is
	          var x: integer;
	        begin
	          write x;
	        end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "must be Initialized")
}

func TestAnalyzer_UndeclaredUse(t *testing.T) {
	src := `program demo is begin write missing; end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "Not Declared")
}

func TestAnalyzer_DimensionMismatch(t *testing.T) {
	src := `program demo is
	          var x: integer = 1;
	          var nums: [integer];
	        begin
	          nums = x;
	        end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "same dimension")
}

func TestAnalyzer_MissingReturn(t *testing.T) {
	src := `func integer add has var a, b: integer; begin write a; end func
	        program demo is begin end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "missing a return statement")
}

func TestAnalyzer_InconsistentArrayLiteral(t *testing.T) {
	src := `program demo is
	          var nums: [integer] = {1, "two", 3};
	        begin
	        end`
	a := analyze(t, src)
	_, has := a.GetError()
	require.True(t, has)
}

func TestAnalyzer_RequiredAfterDefaultedParam(t *testing.T) {
	src := `func integer add has var a: integer = 1; var b: integer; begin return a + b; end func
	        program demo is begin end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "Required parameters cannot follow optional parameters")
}

func TestAnalyzer_ArgumentCountMismatch(t *testing.T) {
	src := `func integer add has var a, b: integer; begin return a + b; end func
	        program demo is
	          var r: integer;
	        begin
	          r = add(1);
	        end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "expects between")
}

func TestAnalyzer_WriteArrayRejected(t *testing.T) {
	src := `program demo is
	          var nums: [integer] = {1, 2, 3};
	        begin
	          write nums;
	        end`
	a := analyze(t, src)
	_, has := a.GetError()
	require.True(t, has)
}

func TestAnalyzer_ShadowedForLoopVariable(t *testing.T) {
	src := `program demo is
	          var i: integer = 0;
	        begin
	          for i = 0; i < 5; i++ do
	            skip;
	          end for
	        end`
	a := analyze(t, src)
	_, has := a.GetError()
	require.True(t, has)
}

func TestAnalyzer_FirstErrorLatches(t *testing.T) {
	src := `program demo is
	        begin
	          write x;
	          write y;
	        end`
	a := analyze(t, src)
	err, has := a.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "'x'")
}

func TestAnalyzer_ForwardsSyntaxError(t *testing.T) {
	a := analyze(t, `program demo`)
	err, has := a.GetError()
	require.True(t, has)
	assert.NotEmpty(t, err.Message)
}
