// Package semantic walks a parsed Source and resolves every name, type and
// array dimension in it against a scope stack (pkg/symbol), delegating each
// type decision to pkg/typecheck. It never mutates the AST's shape, only the
// symbol table entries it builds alongside it (initialized flags, resolved
// signatures).
package semantic

import (
	"fmt"

	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/parser"
	"its-hmny.dev/robinc/pkg/symbol"
	"its-hmny.dev/robinc/pkg/typecheck"
)

// Analyzer drives a Parser and walks its output once, latching the first
// semantic fault it meets the same way the scanner and parser latch theirs.
type Analyzer struct {
	parser parser.Parser
	scopes *symbol.Stack
	err    *symbol.ErrorSymbol
}

// NewAnalyzer wraps p; Analyze drives it exactly once.
func NewAnalyzer(p parser.Parser) *Analyzer {
	return &Analyzer{parser: p, scopes: symbol.NewStack()}
}

// GetError returns the single latched diagnostic, if any.
func (a *Analyzer) GetError() (*symbol.ErrorSymbol, bool) {
	return a.err, a.err != nil
}

// Scopes exposes the scope stack built up during Analyze, so a collaborator
// (§4.6) can resolve identifiers and function signatures after the fact
// without the analyzer having to re-expose each Table method individually.
func (a *Analyzer) Scopes() *symbol.Stack { return a.scopes }

func (a *Analyzer) failed() bool { return a.err != nil }

// fail latches the first error it is called with and always returns
// Undefined, so call sites can write "return a.fail(...)" directly.
func (a *Analyzer) fail(name string, t symbol.PrimType, span ast.Span, message string) symbol.PrimType {
	if a.err == nil {
		a.err = &symbol.ErrorSymbol{Name: name, Type: t, Message: message, Span: span}
	}
	return symbol.Undefined
}

func spanOf(n ast.Node) ast.Span {
	if s, ok := n.(ast.Spanner); ok {
		return s.SpanOf()
	}
	return ast.Span{}
}

// Analyze drives the parser and, on a clean parse, walks the resulting
// Source. A parser/scanner fault is forwarded as a semantic error and the
// walk never starts.
func (a *Analyzer) Analyze() *ast.Source {
	node := a.parser.ParseAST()
	if errNode, ok := node.(*ast.ErrorNode); ok {
		a.fail("", symbol.Undefined, errNode.Span, errNode.Message)
		return nil
	}
	source := node.(*ast.Source)
	a.analyzeSource(source)
	return source
}

// ----------------------------------------------------------------------------
// Global pass

func (a *Analyzer) analyzeSource(src *ast.Source) {
	global := a.scopes.Global()

	progName := src.Program.Name.Name
	if !global.Insert(&symbol.FunctionSymbol{Name: progName, ReturnType: symbol.Program}) {
		a.fail(progName, symbol.Program, src.Program.Name.SpanOf(), fmt.Sprintf("Semantic error: Symbol '%s' already exists.", progName))
		return
	}

	for _, v := range src.Program.Globals {
		a.analyzeVarDef(v, global)
		if a.failed() {
			return
		}
	}

	for _, fn := range src.Functions {
		a.declareFunction(global, fn)
		if a.failed() {
			return
		}
	}

	a.analyzeProgramBody(src.Program)
	for _, fn := range src.Functions {
		if a.failed() {
			return
		}
		a.analyzeFunction(fn)
	}
}

func returnTypeDim(rt *ast.ReturnType) (symbol.PrimType, int) {
	if rt.IsVoid {
		return symbol.Void, 0
	}
	return symbol.DataTypeOf(rt.Inner)
}

// declareFunction computes fn's flattened parameter signature and inserts it
// into the global frame, rejecting a required parameter following a
// defaulted one and a name collision with an existing global symbol.
func (a *Analyzer) declareFunction(global *symbol.Table, fn *ast.Function) {
	name := fn.Name.Name
	retType, retDim := returnTypeDim(fn.ReturnType)

	seenDefault := false
	for _, p := range fn.Parameters {
		if _, ok := p.Inner.(*ast.VariableInitialization); ok {
			seenDefault = true
		} else if seenDefault {
			a.fail(name, symbol.Undefined, p.SpanOf(), "Semantic error: Required parameters cannot follow optional parameters.")
			return
		}
	}

	sig := symbol.BuildFunctionSignature(name, retType, retDim, fn.Parameters)
	if len(sig.Parameters) > 0 && sig.Parameters[0].Type == symbol.Undefined {
		a.fail(name, symbol.Undefined, fn.SpanOf(), "Semantic error: Variable name is already defined.")
		return
	}

	if !global.Insert(sig) {
		a.fail(name, retType, fn.SpanOf(), fmt.Sprintf("Semantic error: Symbol '%s' already exists.", name))
	}
}

// ----------------------------------------------------------------------------
// Per-function / per-program pass

func (a *Analyzer) analyzeProgramBody(p *ast.Program) {
	a.scopes.Push()
	defer a.scopes.Pop()
	a.analyzeStatements(p.Body, p.Name.Name)
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	a.scopes.Push()
	defer a.scopes.Pop()

	for _, p := range fn.Parameters {
		if a.failed() {
			return
		}
		a.declareParam(p)
	}
	if a.failed() {
		return
	}

	retType, _ := a.funcSignature(fn.Name.Name)

	hasReturn := false
	for _, stmt := range fn.Body {
		if a.failed() {
			return
		}
		a.analyzeStatement(stmt, fn.Name.Name)
		if _, ok := stmt.(*ast.Return); ok && retType != symbol.Void {
			hasReturn = true
		}
	}
	if a.failed() {
		return
	}

	if retType != symbol.Void && !hasReturn {
		a.fail(fn.Name.Name, retType, fn.SpanOf(), fmt.Sprintf(
			"Semantic error : missing a return statement in the function body in '%s'.", fn.Name.Name))
	}
}

func (a *Analyzer) funcSignature(name string) (symbol.PrimType, int) {
	if f, ok := a.scopes.ResolveFunction(name); ok {
		return f.ReturnType, f.Dim
	}
	return symbol.Undefined, 0
}

// declareParam inserts a single parameter into the function's top scope.
// Unlike a local variable declaration, every parameter - declared or
// defaulted - is inserted already initialized, since a call site is
// required to supply (or default) a value for it.
func (a *Analyzer) declareParam(p *ast.VariableDefinition) {
	switch inner := p.Inner.(type) {
	case *ast.VariableInitialization:
		a.analyzeVarDef(p, a.scopes.Top())
	case *ast.VariableDeclaration:
		t, dim := symbol.DataTypeOf(inner.DataType)
		for _, id := range inner.Names {
			if !a.scopes.Top().Insert(&symbol.VariableSymbol{Name: id.Name, Type: t, Dim: dim, Initialized: true}) {
				a.fail(id.Name, t, id.SpanOf(), fmt.Sprintf("Semantic error: Symbol '%s' already exists.", id.Name))
				return
			}
		}
	}
}

// withScope pushes a fresh frame, runs fn inside it (skipped if a fault is
// already latched) and always pops it back off before returning.
func (a *Analyzer) withScope(fn func()) {
	a.scopes.Push()
	defer a.scopes.Pop()
	if a.failed() {
		return
	}
	fn()
}

// ----------------------------------------------------------------------------
// Statements

func (a *Analyzer) analyzeStatements(stmts []ast.Statement, parentName string) {
	for _, s := range stmts {
		if a.failed() {
			return
		}
		a.analyzeStatement(s, parentName)
	}
}

func (a *Analyzer) analyzeStatement(stmt ast.Statement, parentName string) {
	switch s := stmt.(type) {
	case *ast.If:
		a.analyzeIf(s, parentName)
	case *ast.Return:
		a.analyzeReturn(s, parentName)
	case *ast.Read:
		a.analyzeRead(s)
	case *ast.Write:
		a.analyzeWrite(s)
	case *ast.While:
		a.analyzeWhile(s, parentName)
	case *ast.For:
		a.analyzeFor(s, parentName)
	case *ast.VariableDefinition:
		a.analyzeVarDef(s, a.scopes.Top())
	case *ast.ExpressionStatement:
		a.semanticExpr(s.Expr, false, false)
	case *ast.Assignment:
		a.semanticExpr(s, false, false)
	case *ast.Skip, *ast.Stop:
		// no-op: neither carries any semantic content
	case *ast.ErrorNode:
		a.fail("", symbol.Undefined, s.Span, s.Message)
	}
}

func (a *Analyzer) analyzeIf(stmt *ast.If, parentName string) {
	a.withScope(func() {
		cond := a.semanticExpr(stmt.Cond, false, false)
		if a.failed() {
			return
		}
		if cond != symbol.Boolean {
			a.fail("If_Statement", cond, stmt.SpanOf(), "Semantic error: condition must be boolean")
			return
		}
		a.analyzeStatements(stmt.Then, parentName)
	})
	a.withScope(func() {
		a.analyzeStatements(stmt.Else, parentName)
	})
}

func (a *Analyzer) analyzeWhile(stmt *ast.While, parentName string) {
	a.withScope(func() {
		cond := a.semanticExpr(stmt.Cond, false, false)
		if a.failed() {
			return
		}
		if cond != symbol.Boolean {
			a.fail("While_loop", cond, stmt.SpanOf(), "Semantic error: condition must be boolean")
			return
		}
		a.analyzeStatements(stmt.Body, parentName)
	})
}

func (a *Analyzer) analyzeFor(stmt *ast.For, parentName string) {
	a.withScope(func() {
		a.semanticIntAssign(stmt.Init)
		if a.failed() {
			return
		}
		cond := a.semanticExpr(stmt.Cond, false, false)
		if a.failed() {
			return
		}
		if cond != symbol.Boolean {
			a.fail("For_loop", cond, stmt.SpanOf(), "Semantic error: condition must be boolean")
			return
		}
		updateType := a.semanticExpr(stmt.Update, false, false)
		if a.failed() {
			return
		}
		if updateType != symbol.Integer {
			a.fail("For_loop", updateType, stmt.SpanOf(), "Semantic error: Update for loop must be integer")
			return
		}
		a.analyzeStatements(stmt.Body, parentName)
	})
}

// semanticIntAssign analyzes a for-header's "i = 0" initializer: the target
// must be a bare identifier, must not shadow a name anywhere on the current
// scope stack, and its initializer must be Integer. It is inserted into the
// loop's own frame (the one withScope just pushed), initialized = true.
func (a *Analyzer) semanticIntAssign(init *ast.Assignment) {
	id, ok := init.Assignee.(*ast.Identifier)
	if !ok {
		a.fail("For_loop", symbol.Integer, init.SpanOf(), "Semantic error: in initialization part of forLoop must be identifier.")
		return
	}

	if _, frame, ok := a.scopes.Resolve(id.Name); ok {
		a.fail(id.Name, frame.TypeOf(id.Name), id.SpanOf(), fmt.Sprintf("Semantic error: Symbol '%s' Declared.", id.Name))
		return
	}

	if !a.scopes.Top().Insert(&symbol.VariableSymbol{Name: id.Name, Type: symbol.Integer, Dim: 0, Initialized: true}) {
		a.fail(id.Name, symbol.Integer, id.SpanOf(), fmt.Sprintf("Semantic error: Symbol '%s' already exists.", id.Name))
		return
	}

	t := a.semanticExpr(init.Value, false, false)
	if a.failed() {
		return
	}
	if t != symbol.Integer {
		a.fail(id.Name, t, init.SpanOf(), fmt.Sprintf("Semantic error: Value of '%s' Must be integer.", id.Name))
	}
}

func (a *Analyzer) analyzeReturn(stmt *ast.Return, parentName string) {
	fn, ok := a.funcSignatureSymbol(parentName)
	if !ok {
		return
	}

	returnType := symbol.Undefined
	if stmt.Value != nil {
		_, isIndex := stmt.Value.(*ast.Index)
		returnType = a.semanticExpr(stmt.Value, false, isIndex)
		if a.failed() {
			return
		}
	}

	if fn.ReturnType == symbol.Void || fn.ReturnType == symbol.Program {
		if returnType != symbol.Undefined {
			a.fail(parentName, returnType, stmt.SpanOf(), fmt.Sprintf("Semantic error: 'return' in block '%s' must not have an expression.", parentName))
			return
		}
	} else if fn.ReturnType != returnType {
		if !(symbol.IsNumber(fn.ReturnType) && symbol.IsNumber(returnType)) {
			a.fail(parentName, returnType, stmt.SpanOf(), fmt.Sprintf("Semantic error: 'return' in function block '%s' doesn't match the function type.", parentName))
			return
		}
	}

	// Dimension of the return value: only ArrayLiteral, Identifier and Index
	// values carry one the analyzer tracks here (anything else is always
	// scalar).
	dimReturn := 0
	switch v := stmt.Value.(type) {
	case *ast.ArrayLiteral:
		_, dimReturn = a.analyzeArrayLiteral(v)
		if a.failed() {
			return
		}
	case *ast.Identifier:
		vs, _, ok := a.scopes.ResolveVariable(v.Name)
		if !ok || !vs.Initialized {
			a.fail(v.Name, symbol.Undefined, v.SpanOf(), fmt.Sprintf("Semantic error: Variable '%s' must be Initialized.", v.Name))
			return
		}
		dimReturn = vs.Dim
	case *ast.Index:
		dimReturn = a.exprDim(v)
	}

	if fn.Dim != dimReturn {
		a.fail(parentName, returnType, stmt.SpanOf(), fmt.Sprintf("Semantic error: 'return' in function block '%s' doesn't match the function dimensions.", parentName))
	}
}

func (a *Analyzer) funcSignatureSymbol(name string) (*symbol.FunctionSymbol, bool) {
	return a.scopes.ResolveFunction(name)
}

func (a *Analyzer) analyzeRead(stmt *ast.Read) {
	for _, target := range stmt.Targets {
		if a.failed() {
			return
		}
		if id, ok := target.(*ast.Identifier); ok {
			a.semanticID(id, true)
			continue
		}
		a.semanticExpr(target, true, false)
	}
}

func (a *Analyzer) analyzeWrite(stmt *ast.Write) {
	for _, arg := range stmt.Args {
		if a.failed() {
			return
		}
		a.semanticExpr(arg, false, false)
		if a.failed() {
			return
		}
		a.isArray(arg)
	}
}

// analyzeVarDef handles both shapes a VariableDefinition wraps: a bare
// declaration (every name inserted uninitialized) or an initialization
// (the single name inserted initialized, after its initializer's type and
// dimension assign-validate against the declared type).
func (a *Analyzer) analyzeVarDef(def *ast.VariableDefinition, frame *symbol.Table) {
	switch inner := def.Inner.(type) {
	case *ast.VariableDeclaration:
		t, dim := symbol.DataTypeOf(inner.DataType)
		for _, id := range inner.Names {
			if !frame.Insert(&symbol.VariableSymbol{Name: id.Name, Type: t, Dim: dim, Initialized: false}) {
				a.fail(id.Name, t, id.SpanOf(), fmt.Sprintf("Semantic error: Symbol '%s' already exists.", id.Name))
				return
			}
		}

	case *ast.VariableInitialization:
		declType, declDim := symbol.DataTypeOf(inner.DataType)
		initType, initDim := a.initializerTypeDim(inner.Initializer)
		if a.failed() {
			return
		}
		if typecheck.Assign(declType, initType, declDim, initDim) == symbol.Undefined {
			a.fail(inner.Name.Name, symbol.Undefined, inner.SpanOf(), "Semantic error: invalid initialization.")
			return
		}
		if !frame.Insert(&symbol.VariableSymbol{Name: inner.Name.Name, Type: declType, Dim: declDim, Initialized: true}) {
			a.fail(inner.Name.Name, declType, inner.SpanOf(), fmt.Sprintf("Semantic error: Symbol '%s' already exists.", inner.Name.Name))
		}
	}
}

// ----------------------------------------------------------------------------
// Expressions

// semanticExpr types an expression top-down. setInit and allowPartialIndexing
// only ever apply to the Identifier/Index cases directly beneath an
// assignable position (assignment target, read target, "#", array-valued
// value); every other expression shape ignores them.
func (a *Analyzer) semanticExpr(expr ast.Expression, setInit, allowPartialIndexing bool) symbol.PrimType {
	if a.failed() {
		return symbol.Undefined
	}
	switch e := expr.(type) {
	case *ast.Assignment:
		return a.semanticAssignExpr(e)
	case *ast.Or:
		return a.semanticOr(e)
	case *ast.And:
		return a.semanticAnd(e)
	case *ast.Equality:
		return a.semanticEquality(e)
	case *ast.Relational:
		return a.semanticRelational(e)
	case *ast.Additive:
		return a.semanticAdditive(e)
	case *ast.Multiplicative:
		return a.semanticMultiplicative(e)
	case *ast.Unary:
		return a.semanticUnary(e)
	case *ast.Index:
		return a.analyzeIndexExpr(e, setInit, allowPartialIndexing)
	case *ast.Call:
		return a.semanticCall(e)
	case *ast.Identifier:
		return a.semanticID(e, setInit)
	case *ast.IntegerLiteral:
		return symbol.Integer
	case *ast.FloatLiteral:
		return symbol.Float
	case *ast.StringLiteral:
		return symbol.String
	case *ast.BooleanLiteral:
		return symbol.Boolean
	case *ast.ArrayLiteral:
		t, _ := a.analyzeArrayLiteral(e)
		return t
	case *ast.ErrorNode:
		return a.fail("", symbol.Undefined, e.Span, e.Message)
	default:
		return symbol.Undefined
	}
}

func (a *Analyzer) semanticOr(e *ast.Or) symbol.PrimType {
	l := a.semanticExpr(e.Left, false, false)
	a.isArray(e.Left)
	r := a.semanticExpr(e.Right, false, false)
	a.isArray(e.Right)
	if a.failed() {
		return symbol.Undefined
	}
	if result := typecheck.OrAnd(l, r); result != symbol.Undefined {
		return result
	}
	return a.fail("or_expression", symbol.Undefined, e.SpanOf(), "Semantic error: Both sides must be Boolean in or expression.")
}

func (a *Analyzer) semanticAnd(e *ast.And) symbol.PrimType {
	l := a.semanticExpr(e.Left, false, false)
	a.isArray(e.Left)
	r := a.semanticExpr(e.Right, false, false)
	a.isArray(e.Right)
	if a.failed() {
		return symbol.Undefined
	}
	if result := typecheck.OrAnd(l, r); result != symbol.Undefined {
		return result
	}
	return a.fail("And_expression", symbol.Undefined, e.SpanOf(), "Semantic error: Both sides must be Boolean in and expression.")
}

func (a *Analyzer) semanticEquality(e *ast.Equality) symbol.PrimType {
	l := a.semanticExpr(e.Left, false, false)
	a.isArray(e.Left)
	r := a.semanticExpr(e.Right, false, false)
	a.isArray(e.Right)
	if a.failed() {
		return symbol.Undefined
	}
	if result := typecheck.Equality(l, r); result != symbol.Undefined {
		return result
	}
	return a.fail("Equality_expression", symbol.Undefined, e.SpanOf(), "Semantic error: Both sides must be the same type in equality.")
}

// semanticRelational is, unlike its siblings, not followed by an isArray
// check on either operand - the analyzer this is grounded on never applies
// one here either.
func (a *Analyzer) semanticRelational(e *ast.Relational) symbol.PrimType {
	l := a.semanticExpr(e.Left, false, false)
	r := a.semanticExpr(e.Right, false, false)
	if a.failed() {
		return symbol.Undefined
	}
	if result := typecheck.Relational(l, r); result != symbol.Undefined {
		return result
	}
	return a.fail("Relational_expression", symbol.Undefined, e.SpanOf(), "Semantic error: Both sides must be numbers in relational.")
}

func (a *Analyzer) semanticAdditive(e *ast.Additive) symbol.PrimType {
	l := a.semanticExpr(e.Left, false, false)
	a.isArray(e.Left)
	r := a.semanticExpr(e.Right, false, false)
	a.isArray(e.Right)
	if a.failed() {
		return symbol.Undefined
	}
	if result := typecheck.Additive(l, r, e.Op); result != symbol.Undefined {
		return result
	}
	return a.fail("Additive_expression", symbol.Undefined, e.SpanOf(), "Semantic error: Both sides must be numbers or strings in additive.")
}

func (a *Analyzer) semanticMultiplicative(e *ast.Multiplicative) symbol.PrimType {
	l := a.semanticExpr(e.Left, false, false)
	a.isArray(e.Left)
	r := a.semanticExpr(e.Right, false, false)
	a.isArray(e.Right)
	if a.failed() {
		return symbol.Undefined
	}
	if result := typecheck.Multiplicative(l, r, e.Op); result != symbol.Undefined {
		return result
	}
	msg := "Semantic error: Both sides must be numbers in multiplicative."
	if e.Op == "%" {
		msg = "Semantic error: Both sides must be Integers in (%)."
	}
	return a.fail("Multiplicative_expression", symbol.Undefined, e.SpanOf(), msg)
}

func (a *Analyzer) semanticUnary(e *ast.Unary) symbol.PrimType {
	var t symbol.PrimType
	if e.Op == "#" {
		t = a.semanticExpr(e.Operand, false, true)
	} else {
		t = a.semanticExpr(e.Operand, false, false)
	}
	if a.failed() {
		return symbol.Undefined
	}

	dim := a.exprDim(e.Operand)

	if e.Op != "#" {
		a.isArray(e.Operand)
		if a.failed() {
			return symbol.Undefined
		}
	}

	if result := typecheck.Unary(t, e.Op, dim); result != symbol.Undefined {
		return result
	}

	var msg string
	switch e.Op {
	case "-":
		msg = "Semantic error: Variable must be Integer or Float in Unary (-)."
	case "not":
		msg = "Semantic error: Variable must be Boolean in Unary (not)."
	case "++", "--":
		msg = "Semantic error: Variable must be Integer or Float in Unary (++ , --)."
	case "@":
		msg = "Semantic error: Variable must be Integer or Float or boolean in Unary (@)."
	case "#":
		msg = "Semantic error: Variable must be String or array in Unary (#)."
	default:
		msg = "Semantic error: invalid operand for unary operator."
	}
	return a.fail(fmt.Sprintf("Unary_expression (%s)", e.Op), symbol.Undefined, e.SpanOf(), msg)
}

// indexDepth walks down an Index chain to its non-Index base, counting one
// level per "[...]" it passes through (at least 1, for e itself).
func indexDepth(e *ast.Index) (base ast.Expression, depth int) {
	depth = 1
	cur := e.Target
	for {
		inner, ok := cur.(*ast.Index)
		if !ok {
			return cur, depth
		}
		cur = inner.Target
		depth++
	}
}

// analyzeIndexExpr validates every subscript in the chain is Integer, then
// checks the resolved base's declared dimension against the chain depth: an
// exact match is always accepted, a shallower access only when
// allowPartialIndexing is set (by "#", array-valued assignments and return
// expressions), and a deeper access is never accepted.
func (a *Analyzer) analyzeIndexExpr(e *ast.Index, setInit, allowPartialIndexing bool) symbol.PrimType {
	depth := 0
	cur := ast.Expression(e)
	for {
		node, ok := cur.(*ast.Index)
		if !ok {
			break
		}
		depth++
		idxType := a.semanticExpr(node.Idx, false, false)
		if a.failed() {
			return symbol.Undefined
		}
		if idxType != symbol.Integer {
			return a.fail("Index_expression", idxType, node.SpanOf(), "semantic error: invalid index.")
		}
		cur = node.Target
	}

	baseType := a.semanticExpr(cur, setInit, false)
	if a.failed() {
		return symbol.Undefined
	}

	baseName, baseDim := a.baseNameDim(cur)

	if (depth != baseDim && !allowPartialIndexing) || depth > baseDim {
		return a.fail(baseName, baseType, e.SpanOf(), fmt.Sprintf(
			"Dimension mismatch for variable %s: expected %d, but got %d", baseName, baseDim, depth))
	}
	return baseType
}

func (a *Analyzer) baseNameDim(base ast.Expression) (string, int) {
	switch b := base.(type) {
	case *ast.Identifier:
		if v, _, ok := a.scopes.ResolveVariable(b.Name); ok {
			return b.Name, v.Dim
		}
		return b.Name, 0
	case *ast.Call:
		if fn, ok := a.scopes.ResolveFunction(b.Fn.Name); ok {
			return b.Fn.Name, fn.Dim
		}
		return b.Fn.Name, 0
	default:
		return "", 0
	}
}

// exprDim reports the array dimension of an already-typed expression: the
// analyzer computes an expression's type and its dimension as two separate
// steps at several call sites (a return value, an initializer, an
// assignment's right-hand side, a call argument), and this is the shared
// second step.
func (a *Analyzer) exprDim(expr ast.Expression) int {
	switch e := expr.(type) {
	case *ast.ArrayLiteral:
		_, dim := a.analyzeArrayLiteral(e)
		return dim
	case *ast.Identifier:
		if v, _, ok := a.scopes.ResolveVariable(e.Name); ok {
			return v.Dim
		}
		return 0
	case *ast.Index:
		base, depth := indexDepth(e)
		if id, ok := base.(*ast.Identifier); ok {
			if v, _, ok := a.scopes.ResolveVariable(id.Name); ok {
				return v.Dim - depth
			}
		}
		return 0
	default:
		return 0
	}
}

// initializerTypeDim computes the (type, dim) pair of an expression used as
// a variable initializer or an assignment's value, by the same dispatch the
// analyzer applies at both call sites.
func (a *Analyzer) initializerTypeDim(expr ast.Expression) (symbol.PrimType, int) {
	switch e := expr.(type) {
	case *ast.ArrayLiteral:
		return a.analyzeArrayLiteral(e)
	case *ast.Identifier:
		v, _, ok := a.scopes.ResolveVariable(e.Name)
		if !ok || !v.Initialized {
			return a.fail(e.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Variable '%s' must be Initialized.", e.Name)), 0
		}
		return v.Type, v.Dim
	case *ast.Index:
		t := a.semanticExpr(e, false, true)
		return t, a.exprDim(e)
	default:
		return a.semanticExpr(expr, false, false), 0
	}
}

func (a *Analyzer) semanticAssignExpr(e *ast.Assignment) symbol.PrimType {
	var assigneeName string
	var assigneeType symbol.PrimType
	var dimAssignee int

	switch assignee := e.Assignee.(type) {
	case *ast.Identifier:
		assigneeName = assignee.Name
		v, _, ok := a.scopes.ResolveVariable(assigneeName)
		if !ok {
			return a.fail(assigneeName, symbol.Undefined, assignee.SpanOf(), fmt.Sprintf("Semantic error: Variable '%s' must be Declared.", assigneeName))
		}
		dimAssignee = v.Dim
		assigneeType = a.semanticID(assignee, true)

	case *ast.Index:
		base, depth := indexDepth(assignee)
		id, ok := base.(*ast.Identifier)
		if !ok {
			return a.fail("Index_expression", symbol.Undefined, assignee.SpanOf(), "Semantic error: invalid base expression in indexing.")
		}
		assigneeName = id.Name
		v, _, ok := a.scopes.ResolveVariable(assigneeName)
		if !ok {
			return a.fail(assigneeName, symbol.Undefined, assignee.SpanOf(), fmt.Sprintf("Semantic error: Variable '%s' must be Declared.", assigneeName))
		}
		dimAssignee = v.Dim - depth
		if dimAssignee < 0 {
			return a.fail(assigneeName, symbol.Undefined, assignee.SpanOf(), fmt.Sprintf("Semantic error: Invalid array access for variable '%s'.", assigneeName))
		}
		assigneeType = a.semanticExpr(assignee, true, true)

	default:
		return a.fail("Assignment", symbol.Undefined, e.SpanOf(), "Semantic error: invalid assignment target.")
	}

	if a.failed() {
		return symbol.Undefined
	}

	valueType, dimValue := a.initializerTypeDim(e.Value)
	if a.failed() {
		return symbol.Undefined
	}

	result := typecheck.Assign(assigneeType, valueType, dimAssignee, dimValue)
	if result == symbol.Undefined {
		return a.fail(assigneeName, result, e.SpanOf(), "Semantic error: Assignment Expression must be same datatype and same dimension.")
	}
	return result
}

func (a *Analyzer) semanticID(e *ast.Identifier, setInit bool) symbol.PrimType {
	v, frame, ok := a.scopes.ResolveVariable(e.Name)
	if !ok {
		return a.fail(e.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Variable '%s' Not Declared.", e.Name))
	}
	if setInit {
		frame.SetInitialized(e.Name)
	}
	if !v.Initialized {
		return a.fail(e.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Variable '%s' must be Initialized.", e.Name))
	}
	return v.Type
}

func (a *Analyzer) semanticCall(e *ast.Call) symbol.PrimType {
	fn, ok := a.scopes.ResolveFunction(e.Fn.Name)
	if !ok {
		return a.fail(e.Fn.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Function '%s' Not Declared.", e.Fn.Name))
	}

	required := fn.Parameters[:fn.RequiredCount]
	if len(e.Args) < len(required) || len(e.Args) > len(fn.Parameters) {
		return a.fail(e.Fn.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf(
			"Semantic error: Function '%s' expects between %d and %d arguments, but got %d.",
			e.Fn.Name, len(required), len(fn.Parameters), len(e.Args)))
	}

	for i, arg := range e.Args {
		_, isIndex := arg.(*ast.Index)
		argType := a.semanticExpr(arg, false, isIndex)
		if a.failed() {
			return symbol.Undefined
		}
		argDim := a.exprDim(arg)

		expected := fn.Parameters[i]
		if argType != expected.Type {
			return a.fail(e.Fn.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf(
				"Semantic error: Argument %d in function '%s' should be of type %s, but got %s.",
				i+1, e.Fn.Name, expected.Type, argType))
		}
		if argDim != expected.Dim {
			return a.fail(e.Fn.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf(
				"Semantic error: Dimension mismatch in argument %d in function '%s': expected dim %d, but got %d.",
				i+1, e.Fn.Name, expected.Dim, argDim))
		}
	}

	return fn.ReturnType
}

// isArray rejects an operand that denotes a whole array (a declared array
// variable or an array-returning call) wherever a scalar is required; it is
// a no-op for any other expression shape, including an array literal used
// directly (whose element type already carries the scalar check elsewhere).
func (a *Analyzer) isArray(expr ast.Expression) {
	if a.failed() {
		return
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		v, _, ok := a.scopes.ResolveVariable(e.Name)
		if !ok {
			a.fail(e.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Variable '%s' must be Declared.", e.Name))
			return
		}
		if v.Dim > 0 {
			a.fail(e.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Invalid Expression can't use array '%s'.", e.Name))
		}
	case *ast.Call:
		fn, ok := a.scopes.ResolveFunction(e.Fn.Name)
		if !ok {
			a.fail(e.Fn.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Function '%s' must be Declared.", e.Fn.Name))
			return
		}
		if fn.Dim > 0 {
			a.fail(e.Fn.Name, symbol.Undefined, e.SpanOf(), fmt.Sprintf("Semantic error: Invalid Expression can't use array '%s'.", e.Fn.Name))
		}
	}
}

// ----------------------------------------------------------------------------
// Array literals

// analyzeArrayLiteral returns an array literal's (element type, dimension).
// An empty literal is dimension 1 with an Undefined element type (nothing to
// check against yet). A literal of nested literals recurses, requiring every
// sibling to carry the same sub-dimension; a literal of scalars/identifiers
// delegates to analyzeArrayValues.
func (a *Analyzer) analyzeArrayLiteral(lit *ast.ArrayLiteral) (symbol.PrimType, int) {
	if len(lit.Elements) == 0 {
		return symbol.Undefined, 1
	}
	if _, ok := lit.Elements[0].(*ast.ArrayLiteral); !ok {
		return a.analyzeArrayValues(lit.Elements)
	}

	dt := symbol.Undefined
	dim := 1
	for i, el := range lit.Elements {
		nested, ok := el.(*ast.ArrayLiteral)
		if !ok {
			return symbol.Undefined, 0
		}
		prevDim := dim
		dt, dim = a.analyzeArrayLiteral(nested)
		if a.failed() {
			return symbol.Undefined, 0
		}
		if dim != prevDim && i != 0 {
			return a.fail("Array_literal", dt, lit.SpanOf(), "semantic error: Inconsistent array dimension."), 0
		}
	}
	dim++
	return dt, dim
}

// analyzeArrayValues types a flat run of scalar/identifier elements: every
// element must share the same type, and the literal's dimension is one more
// than the deepest sub-array among its elements (0 if every element is a
// scalar).
func (a *Analyzer) analyzeArrayValues(elements []ast.Expression) (symbol.PrimType, int) {
	dt := symbol.Undefined
	maxInnerDim := 0

	for _, el := range elements {
		elementType := a.semanticExpr(el, false, false)
		if a.failed() {
			return symbol.Undefined, 0
		}

		elDim := 0
		switch e := el.(type) {
		case *ast.Identifier:
			if v, _, ok := a.scopes.ResolveVariable(e.Name); ok {
				elDim = v.Dim
			}
		case *ast.ArrayLiteral:
			_, elDim = a.analyzeArrayLiteral(e)
			if a.failed() {
				return symbol.Undefined, 0
			}
		}

		if elDim > maxInnerDim {
			maxInnerDim = elDim
		}

		if dt == symbol.Undefined {
			dt = elementType
		} else if elementType != dt {
			return a.fail("Array_literal", elementType, spanOf(el), "semantic error: array contain value of multiple datatypes"), 0
		}
	}
	return dt, maxInnerDim + 1
}
