package ast

import (
	"fmt"
	"strings"
)

// NodeName returns the debug name of a node's concrete variant; Dump uses it
// for variants it does not render itself. Implemented as a type switch rather
// than a stored tag. Go does not check the switch for exhaustiveness: a
// variant missing from it yields "Unknown".
func NodeName(n Node) string {
	switch n.(type) {
	case *Source:
		return "Source"
	case *Program:
		return "Program"
	case *Function:
		return "Function"
	case *VariableDefinition:
		return "VariableDefinition"
	case *VariableDeclaration:
		return "VariableDeclaration"
	case *VariableInitialization:
		return "VariableInitialization"
	case *ReturnType:
		return "ReturnType"
	case *PrimitiveDataType:
		return "PrimitiveDataType"
	case *ArrayDataType:
		return "ArrayDataType"
	case *If:
		return "If"
	case *Return:
		return "Return"
	case *Skip:
		return "Skip"
	case *Stop:
		return "Stop"
	case *Read:
		return "Read"
	case *Write:
		return "Write"
	case *While:
		return "While"
	case *For:
		return "For"
	case *ExpressionStatement:
		return "ExpressionStatement"
	case *Assignment:
		return "Assignment"
	case *Or:
		return "Or"
	case *And:
		return "And"
	case *Equality:
		return "Equality"
	case *Relational:
		return "Relational"
	case *Additive:
		return "Additive"
	case *Multiplicative:
		return "Multiplicative"
	case *Unary:
		return "Unary"
	case *Call:
		return "Call"
	case *Index:
		return "Index"
	case *Identifier:
		return "Identifier"
	case *IntegerLiteral:
		return "IntegerLiteral"
	case *FloatLiteral:
		return "FloatLiteral"
	case *StringLiteral:
		return "StringLiteral"
	case *BooleanLiteral:
		return "BooleanLiteral"
	case *ArrayLiteral:
		return "ArrayLiteral"
	case *ErrorNode:
		return "ErrorNode"
	default:
		return "Unknown"
	}
}

// Dump renders n and its children as an indented textual tree, the debug
// format the CLI's --print-ast flag emits. There is no parser-combinator
// library underneath to dump a tree through, so this walks the tagged
// variants directly.
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpStatements(b *strings.Builder, stmts []Statement, depth int) {
	for _, s := range stmts {
		dump(b, s, depth)
	}
}

func dump(b *strings.Builder, n Node, depth int) {
	indent(b, depth)

	switch v := n.(type) {
	case *Source:
		b.WriteString("Source\n")
		for _, fn := range v.Functions {
			dump(b, fn, depth+1)
		}
		dump(b, v.Program, depth+1)
	case *Program:
		fmt.Fprintf(b, "Program %q\n", v.Name.Name)
		for _, g := range v.Globals {
			dump(b, g, depth+1)
		}
		dumpStatements(b, v.Body, depth+1)
	case *Function:
		fmt.Fprintf(b, "Function %q\n", v.Name.Name)
		for _, p := range v.Parameters {
			dump(b, p, depth+1)
		}
		dumpStatements(b, v.Body, depth+1)
	case *VariableDefinition:
		dump(b, v.Inner, depth)
	case *VariableDeclaration:
		names := make([]string, len(v.Names))
		for i, id := range v.Names {
			names[i] = id.Name
		}
		fmt.Fprintf(b, "VariableDeclaration %s\n", strings.Join(names, ", "))
	case *VariableInitialization:
		fmt.Fprintf(b, "VariableInitialization %s =\n", v.Name.Name)
		dump(b, v.Initializer, depth+1)
	case *If:
		b.WriteString("If\n")
		dump(b, v.Cond, depth+1)
		dumpStatements(b, v.Then, depth+1)
		dumpStatements(b, v.Else, depth+1)
	case *Return:
		b.WriteString("Return\n")
		if v.Value != nil {
			dump(b, v.Value, depth+1)
		}
	case *Skip:
		b.WriteString("Skip\n")
	case *Stop:
		b.WriteString("Stop\n")
	case *Read:
		b.WriteString("Read\n")
		for _, t := range v.Targets {
			dump(b, t, depth+1)
		}
	case *Write:
		b.WriteString("Write\n")
		for _, a := range v.Args {
			dump(b, a, depth+1)
		}
	case *While:
		b.WriteString("While\n")
		dump(b, v.Cond, depth+1)
		dumpStatements(b, v.Body, depth+1)
	case *For:
		b.WriteString("For\n")
		dump(b, v.Init, depth+1)
		dump(b, v.Cond, depth+1)
		dump(b, v.Update, depth+1)
		dumpStatements(b, v.Body, depth+1)
	case *ExpressionStatement:
		dump(b, v.Expr, depth)
	case *Assignment:
		b.WriteString("Assignment\n")
		dump(b, v.Assignee, depth+1)
		dump(b, v.Value, depth+1)
	case *Or, *And:
		dumpBinary(b, n, depth, "or/and")
	case *Equality:
		dumpOpBinary(b, v.Op, v.Left, v.Right, depth)
	case *Relational:
		dumpOpBinary(b, v.Op, v.Left, v.Right, depth)
	case *Additive:
		dumpOpBinary(b, v.Op, v.Left, v.Right, depth)
	case *Multiplicative:
		dumpOpBinary(b, v.Op, v.Left, v.Right, depth)
	case *Unary:
		fmt.Fprintf(b, "Unary %s postfix=%t\n", v.Op, v.Postfix)
		dump(b, v.Operand, depth+1)
	case *Call:
		fmt.Fprintf(b, "Call %s\n", v.Fn.Name)
		for _, a := range v.Args {
			dump(b, a, depth+1)
		}
	case *Index:
		b.WriteString("Index\n")
		dump(b, v.Target, depth+1)
		dump(b, v.Idx, depth+1)
	case *Identifier:
		fmt.Fprintf(b, "Identifier %s\n", v.Name)
	case *IntegerLiteral:
		fmt.Fprintf(b, "IntegerLiteral %d\n", v.Value)
	case *FloatLiteral:
		fmt.Fprintf(b, "FloatLiteral %g\n", v.Value)
	case *StringLiteral:
		fmt.Fprintf(b, "StringLiteral %q\n", v.Value)
	case *BooleanLiteral:
		fmt.Fprintf(b, "BooleanLiteral %t\n", v.Value)
	case *ArrayLiteral:
		b.WriteString("ArrayLiteral\n")
		for _, e := range v.Elements {
			dump(b, e, depth+1)
		}
	case *ErrorNode:
		fmt.Fprintf(b, "ErrorNode %q\n", v.Message)
	default:
		fmt.Fprintf(b, "%s\n", NodeName(n))
	}
}

// dumpBinary handles Or/And, whose fields (Left, Right) are identical in
// shape to the Op-carrying binary nodes but have no Op string of their own.
func dumpBinary(b *strings.Builder, n Node, depth int, label string) {
	var left, right Expression
	switch v := n.(type) {
	case *Or:
		left, right = v.Left, v.Right
		label = "Or"
	case *And:
		left, right = v.Left, v.Right
		label = "And"
	}
	fmt.Fprintf(b, "%s\n", label)
	dump(b, left, depth+1)
	dump(b, right, depth+1)
}

func dumpOpBinary(b *strings.Builder, op string, left, right Expression, depth int) {
	fmt.Fprintf(b, "BinaryOp %s\n", op)
	dump(b, left, depth+1)
	dump(b, right, depth+1)
}
