package symbol

import "its-hmny.dev/robinc/pkg/ast"

// undefinedSentinel is the parameter list used in place of a real signature
// once a duplicate parameter name is detected at definition time.
var undefinedSentinel = []Param{{Type: Undefined, Dim: 0}}

// DataTypeOf resolves an ast.DataType to its (PrimType, dim) pair. Exported
// for the semantic analyzer, which needs the same resolution the parameter
// flattener below performs, for return types, variable declarations and
// every other DataType node it walks outside a parameter list.
func DataTypeOf(dt ast.DataType) (PrimType, int) { return dataTypeOf(dt) }

// dataTypeOf resolves an ast.DataType to its (PrimType, dim) pair.
func dataTypeOf(dt ast.DataType) (PrimType, int) {
	switch t := dt.(type) {
	case *ast.PrimitiveDataType:
		return primTypeOf(t.Name), 0
	case *ast.ArrayDataType:
		return primTypeOf(t.ElementName), t.Dimension
	default:
		return Undefined, 0
	}
}

func primTypeOf(name string) PrimType {
	switch name {
	case "integer":
		return Integer
	case "boolean":
		return Boolean
	case "float":
		return Float
	case "string":
		return String
	default:
		return Undefined
	}
}

// BuildFunctionSignature flattens a function's raw parameter definitions
// (§4.3): each VariableDeclaration contributes one required Param per name
// it lists (sharing type/dim); each VariableInitialization contributes one
// defaulted Param. A duplicate identifier anywhere in the list collapses
// Parameters to the Undefined sentinel. RequiredCount is the length of the
// contiguous non-defaulted prefix; callers (the semantic analyzer) reject a
// signature where a required parameter follows a defaulted one.
func BuildFunctionSignature(name string, returnType PrimType, dim int, rawParams []*ast.VariableDefinition) *FunctionSymbol {
	sym := &FunctionSymbol{Name: name, ReturnType: returnType, Dim: dim, RawParams: rawParams}

	seen := make(map[string]bool)
	var params []Param
	var required []bool

	for _, def := range rawParams {
		switch inner := def.Inner.(type) {
		case *ast.VariableDeclaration:
			t, d := dataTypeOf(inner.DataType)
			for _, id := range inner.Names {
				if seen[id.Name] {
					sym.Parameters = undefinedSentinel
					sym.RequiredCount = 0
					return sym
				}
				seen[id.Name] = true
				params = append(params, Param{Type: t, Dim: d})
				required = append(required, true)
			}

		case *ast.VariableInitialization:
			if seen[inner.Name.Name] {
				sym.Parameters = undefinedSentinel
				sym.RequiredCount = 0
				return sym
			}
			seen[inner.Name.Name] = true
			t, d := dataTypeOf(inner.DataType)
			params = append(params, Param{Type: t, Dim: d})
			required = append(required, false)
		}
	}

	sym.Parameters = params
	seenDefaulted := false
	for _, r := range required {
		if !r {
			seenDefaulted = true
			continue
		}
		if seenDefaulted {
			sym.RequiredAfterDefaulted = true
			continue
		}
		sym.RequiredCount++
	}
	return sym
}
