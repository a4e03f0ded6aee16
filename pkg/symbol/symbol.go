// Package symbol models the typed entries the semantic analyzer inserts into
// scoped tables: variables, functions and the single latched semantic error.
package symbol

import "its-hmny.dev/robinc/pkg/ast"

// PrimType is the closed set of types the checker and analyzer reason about.
type PrimType int

const (
	Undefined PrimType = iota // type-error bottom; propagates failure without cascading diagnostics
	Integer
	Boolean
	Float
	String
	Void    // the return type of a void function
	Program // pseudotype of the top-level scope owner
)

func (t PrimType) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Boolean:
		return "Boolean"
	case Float:
		return "Float"
	case String:
		return "String"
	case Void:
		return "Void"
	case Program:
		return "Program"
	default:
		return "Undefined"
	}
}

// IsNumber reports whether t is Integer or Float.
func IsNumber(t PrimType) bool { return t == Integer || t == Float }

// Param is one entry of a function's flattened parameter signature.
type Param struct {
	Type PrimType
	Dim  int
}

// Symbol is the tagged variant stored in a SymbolTable: exactly one of
// VariableSymbol, FunctionSymbol or ErrorSymbol.
type Symbol interface {
	symbolName() string
	symbolNode()
}

// VariableSymbol is a declared or parameter variable.
type VariableSymbol struct {
	Name        string
	Type        PrimType
	Dim         int
	Initialized bool
}

func (v *VariableSymbol) symbolName() string { return v.Name }
func (*VariableSymbol) symbolNode()          {}

// FunctionSymbol is a top-level function (or the program pseudo-function).
type FunctionSymbol struct {
	Name       string
	ReturnType PrimType
	Dim        int // array dimension of the return type, 0 for scalars
	Parameters []Param
	// RequiredCount is the length of the contiguous non-defaulted prefix of
	// Parameters; call sites must supply at least this many arguments.
	RequiredCount int
	// RequiredAfterDefaulted is set when a non-defaulted parameter follows a
	// defaulted one; such a signature is rejected by the analyzer.
	RequiredAfterDefaulted bool
	RawParams              []*ast.VariableDefinition
}

func (f *FunctionSymbol) symbolName() string { return f.Name }
func (*FunctionSymbol) symbolNode()          {}

// ErrorSymbol is the single diagnostic the analyzer may latch.
type ErrorSymbol struct {
	Name    string
	Type    PrimType
	Message string
	Span    ast.Span
}

func (e *ErrorSymbol) symbolName() string { return e.Name }
func (*ErrorSymbol) symbolNode()          {}

func (e *ErrorSymbol) Error() string { return e.Message }
