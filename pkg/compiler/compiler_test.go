package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"its-hmny.dev/robinc/pkg/compiler"
)

const helloWorld = `program hi is begin write "x"; end`

func TestCompiler_DefaultOptions(t *testing.T) {
	opts := compiler.DefaultOptions()
	assert.Equal(t, compiler.FiniteAutomaton, opts.Scanner)
	assert.Equal(t, compiler.RecursiveDescent, opts.Parser)
	assert.Equal(t, compiler.O0, opts.Optimization)
}

func TestCompiler_CleanProgram(t *testing.T) {
	for _, opts := range []compiler.Options{
		{Scanner: compiler.FiniteAutomaton, Parser: compiler.RecursiveDescent},
		{Scanner: compiler.HandCoded, Parser: compiler.RecursiveDescent},
		{Scanner: compiler.FiniteAutomaton, Parser: compiler.LL1},
		{Scanner: compiler.HandCoded, Parser: compiler.LL1},
	} {
		c := compiler.New(helloWorld, opts)
		tree := c.Analyze()
		require.NotNil(t, tree)
		err, has := c.GetError()
		assert.False(t, has, "unexpected diagnostic: %v", err)
	}
}

func TestCompiler_ForwardsDiagnostic(t *testing.T) {
	c := compiler.New(`program p is var x,x : integer; begin end`, compiler.DefaultOptions())
	c.Analyze()

	err, has := c.GetError()
	require.True(t, has)
	assert.Contains(t, err.Message, "already exists")
}

func TestCompiler_LookupSurface(t *testing.T) {
	src := `func integer add has var a, b: integer; begin return a + b; end func
	        program demo is
	          var total: integer = 0;
	        begin
	          total = add(1, 2);
	          write total;
	        end`

	c := compiler.New(src, compiler.DefaultOptions())
	c.Analyze()
	_, has := c.GetError()
	require.False(t, has)

	fn, ok := c.LookupFunction("add")
	require.True(t, ok)
	assert.Equal(t, 2, fn.RequiredCount)

	params, ok := c.ParameterTypes("add")
	require.True(t, ok)
	assert.Len(t, params, 2)

	required, ok := c.RequiredParameters("add")
	require.True(t, ok)
	assert.Len(t, required, 2)
}

func TestParseScannerKind_Rejects(t *testing.T) {
	_, err := compiler.ParseScannerKind("Quantum")
	assert.Error(t, err)
}

func TestParseParserKind_Rejects(t *testing.T) {
	_, err := compiler.ParseParserKind("Packrat")
	assert.Error(t, err)
}

func TestParseOptimizationLevel_Rejects(t *testing.T) {
	_, err := compiler.ParseOptimizationLevel("O9")
	assert.Error(t, err)
}

func TestLoadOptions_NoConfigFile(t *testing.T) {
	opts, err := compiler.LoadOptions("", compiler.Options{Parser: compiler.LL1})
	require.NoError(t, err)
	assert.Equal(t, compiler.LL1, opts.Parser)
	assert.Equal(t, compiler.FiniteAutomaton, opts.Scanner)
}
