// Package compiler wires the scanner, parser and semantic analyzer into a
// single value-producing pipeline, selecting concrete implementations from
// Options and logging one structured line per phase transition. It owns no
// state beyond what a single compilation needs; a Compiler is built fresh
// per source.
package compiler

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/parser"
	"its-hmny.dev/robinc/pkg/scanner"
	"its-hmny.dev/robinc/pkg/semantic"
	"its-hmny.dev/robinc/pkg/symbol"
)

// ScannerKind selects which of the two interchangeable lexers backs a
// Compiler (§6.2). The two MUST agree on every valid input; which one runs
// is purely an implementation choice exposed to the caller.
type ScannerKind string

const (
	FiniteAutomaton ScannerKind = "FiniteAutomaton"
	HandCoded       ScannerKind = "HandCoded"
)

// ParserKind selects which of the two interchangeable parsers backs a
// Compiler (§6.2).
type ParserKind string

const (
	RecursiveDescent ParserKind = "RecursiveDescent"
	LL1              ParserKind = "LL1"
)

// OptimizationLevel is passed through to the (out-of-scope, §4.6) IR
// collaborator unchanged; the core never inspects it.
type OptimizationLevel string

const (
	O0 OptimizationLevel = "O0"
	O1 OptimizationLevel = "O1"
	O2 OptimizationLevel = "O2"
	O3 OptimizationLevel = "O3"
	Os OptimizationLevel = "Os"
	Oz OptimizationLevel = "Oz"
)

// Options configures a Compiler; the zero value is not valid, use
// DefaultOptions (§6.2's documented defaults: FiniteAutomaton scanner,
// RecursiveDescent parser, O0).
type Options struct {
	Scanner      ScannerKind
	Parser       ParserKind
	Optimization OptimizationLevel
	// Logger receives one debug line per phase transition and one error line
	// for the final diagnostic, if any. A nil Logger disables logging
	// entirely (used by tests that don't want stderr noise).
	Logger log.Logger
}

// DefaultOptions returns the documented §6.2 defaults with logging disabled.
func DefaultOptions() Options {
	return Options{Scanner: FiniteAutomaton, Parser: RecursiveDescent, Optimization: O0}
}

// ParseScannerKind and ParseParserKind validate a CLI/config string against
// the closed enums above; both reject anything outside {FiniteAutomaton,
// HandCoded} / {RecursiveDescent, LL1} rather than silently defaulting, so a
// typo in a flag or config file surfaces immediately.

func ParseScannerKind(s string) (ScannerKind, error) {
	switch ScannerKind(s) {
	case FiniteAutomaton, HandCoded:
		return ScannerKind(s), nil
	default:
		return "", fmt.Errorf("compiler: unknown scanner kind %q", s)
	}
}

func ParseParserKind(s string) (ParserKind, error) {
	switch ParserKind(s) {
	case RecursiveDescent, LL1:
		return ParserKind(s), nil
	default:
		return "", fmt.Errorf("compiler: unknown parser kind %q", s)
	}
}

func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	switch OptimizationLevel(s) {
	case O0, O1, O2, O3, Os, Oz:
		return OptimizationLevel(s), nil
	default:
		return "", fmt.Errorf("compiler: unknown optimization level %q", s)
	}
}

// Compiler drives one compilation: scan -> parse -> analyze. It exposes the
// same collaborator surface §4.6 specifies (Analyze, GetError, and the
// scope-table lookups), so an IR layer can consume its result without
// touching the scanner or parser directly.
type Compiler struct {
	opts   Options
	source string
	logger log.Logger

	analyzer *semantic.Analyzer
	result   *ast.Source
}

// New builds a Compiler for source, ready for Analyze.
func New(source string, opts Options) *Compiler {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Compiler{opts: opts, source: source, logger: logger}
}

func (c *Compiler) newScanner() scanner.Scanner {
	level.Debug(c.logger).Log("phase", "scan", "variant", c.opts.Scanner)
	switch c.opts.Scanner {
	case HandCoded:
		return scanner.NewHandCodedScanner(c.source)
	default:
		return scanner.NewFAScanner(c.source)
	}
}

func (c *Compiler) newParser(sc scanner.Scanner) parser.Parser {
	level.Debug(c.logger).Log("phase", "parse", "variant", c.opts.Parser)
	switch c.opts.Parser {
	case LL1:
		return parser.NewLL1Parser(sc)
	default:
		return parser.NewRecursiveDescentParser(sc)
	}
}

// Analyze runs the full pipeline and returns the resulting tree. The tree is
// nil when the scanner or parser latched a fault; after a semantic fault it
// is still the parsed tree (§7). Callers check GetError to distinguish a
// clean compilation from a faulted one.
func (c *Compiler) Analyze() *ast.Source {
	p := c.newParser(c.newScanner())
	c.analyzer = semantic.NewAnalyzer(p)

	level.Debug(c.logger).Log("phase", "analyze")
	c.result = c.analyzer.Analyze()

	if err, has := c.GetError(); has {
		level.Error(c.logger).Log(
			"msg", err.Message, "line", err.Span.StartLine,
			"start", err.Span.NodeStart, "end", err.Span.NodeEnd,
		)
	}
	return c.result
}

// GetError forwards the analyzer's single latched diagnostic, if any.
func (c *Compiler) GetError() (*symbol.ErrorSymbol, bool) {
	if c.analyzer == nil {
		return nil, false
	}
	return c.analyzer.GetError()
}

// LookupVariable, LookupFunction, ParameterTypes and RequiredParameters
// forward to the global scope table built during Analyze, completing the
// §4.6 collaborator surface an IR layer consumes. Calling any of these
// before Analyze panics (there is no scope stack yet), mirroring the
// analyzer's own "never referenced after its pop" ordering guarantee.

func (c *Compiler) LookupVariable(name string) (*symbol.VariableSymbol, bool) {
	v, _, ok := c.analyzer.Scopes().ResolveVariable(name)
	return v, ok
}

func (c *Compiler) LookupFunction(name string) (*symbol.FunctionSymbol, bool) {
	return c.analyzer.Scopes().ResolveFunction(name)
}

func (c *Compiler) ParameterTypes(name string) ([]symbol.Param, bool) {
	return c.analyzer.Scopes().Global().ParameterTypes(name)
}

func (c *Compiler) RequiredParameters(name string) ([]symbol.Param, bool) {
	return c.analyzer.Scopes().Global().RequiredParameters(name)
}
