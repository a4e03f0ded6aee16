package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/teris-io/cli"

	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/compiler"
	"its-hmny.dev/robinc/pkg/scanner"
)

var Description = strings.ReplaceAll(`
The Robin Compiler scans, parses and semantically analyzes a single source
file written in the robin language, reporting the first latched diagnostic
(if any) and exiting non-zero when one is found.
`, "\n", " ")

var Robinc = cli.New(Description).
	WithArg(cli.NewArg("input", "The source file to compile")).
	WithOption(cli.NewOption("scanner", "Scanner variant: FiniteAutomaton or HandCoded").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("parser", "Parser variant: RecursiveDescent or LL1").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("optimization", "Optimization level passed through to the collaborator: O0, O1, O2, O3, Os, Oz").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("config", "Optional robinc.yaml/robinc.json config file").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("print-ast", "Print the parsed AST to stdout after analysis").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("print-tokens", "Print the full token stream to stdout before parsing").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("verbose", "Emit structured debug logging for each compilation phase").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "ERROR: no input file provided, use --help")
		return -1
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: unable to open input file: %s\n", err)
		return -1
	}
	source := string(content)

	var overrides compiler.Options
	if s, ok := options["scanner"]; ok {
		kind, err := compiler.ParseScannerKind(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return -1
		}
		overrides.Scanner = kind
	}
	if s, ok := options["parser"]; ok {
		kind, err := compiler.ParseParserKind(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return -1
		}
		overrides.Parser = kind
	}
	if s, ok := options["optimization"]; ok {
		level, err := compiler.ParseOptimizationLevel(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return -1
		}
		overrides.Optimization = level
	}
	if _, enabled := options["verbose"]; enabled {
		overrides.Logger = log.NewLogfmtLogger(os.Stderr)
	}

	opts, err := compiler.LoadOptions(options["config"], overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return -1
	}

	if _, enabled := options["print-tokens"]; enabled {
		printTokens(source, opts)
	}

	c := compiler.New(source, opts)
	tree := c.Analyze()

	if _, enabled := options["print-ast"]; enabled && tree != nil {
		fmt.Println(ast.Dump(tree))
	}

	if diag, has := c.GetError(); has {
		fmt.Fprintf(os.Stderr, "ERROR: %s (line %d)\n", diag.Message, diag.Span.StartLine)
		return 1
	}

	return 0
}

// printTokens materializes the full token stream with the same scanner
// variant the compiler itself will use, ahead of parsing — an ordinary
// flag rather than an env var feature flag.
func printTokens(source string, opts compiler.Options) {
	var sc scanner.Scanner
	if opts.Scanner == compiler.HandCoded {
		sc = scanner.NewHandCodedScanner(source)
	} else {
		sc = scanner.NewFAScanner(source)
	}
	for _, tok := range sc.TokenizeAll() {
		fmt.Printf("%s %q (line %d)\n", tok.Kind, tok.Value, tok.Line)
	}
}

func main() { os.Exit(Robinc.Run(os.Args, os.Stdout)) }
