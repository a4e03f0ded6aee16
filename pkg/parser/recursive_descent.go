package parser

import (
	"fmt"
	"strconv"

	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/scanner"
	"its-hmny.dev/robinc/pkg/token"
)

// RecursiveDescentParser implements Parser with one method per grammar
// non-terminal. It is the default variant (§6.2): simpler to read and to
// extend, at the cost of the call stack depth the LL1Parser avoids.
type RecursiveDescentParser struct {
	base
}

// NewRecursiveDescentParser wraps sc; the scanner variant is an orthogonal
// choice the caller already made (compiler.Options), not this parser's
// concern.
func NewRecursiveDescentParser(sc scanner.Scanner) *RecursiveDescentParser {
	return &RecursiveDescentParser{base: newBase(NewTokenStream(sc))}
}

func (p *RecursiveDescentParser) ParseAST() ast.Node {
	src := p.parseSource()
	if p.failed() {
		return p.err
	}
	return src
}

func isEndKind(k token.Kind) bool { return k == token.END_KW }
func thenStop(k token.Kind) bool  { return k == token.END_KW || k == token.ELSE_KW }

// ----------------------------------------------------------------------------
// Top level: Source, Function, Program

func (p *RecursiveDescentParser) parseSource() *ast.Source {
	start := p.ts.Current()
	var fns []*ast.Function
	for !p.failed() && p.ts.Current().Kind == token.FUNC_KW {
		fn := p.parseFunction()
		if p.failed() {
			return nil
		}
		fns = append(fns, fn)
	}
	if p.failed() {
		return nil
	}
	prog := p.parseProgram()
	if p.failed() {
		return nil
	}
	return &ast.Source{
		Base:      ast.Base{Span: joinSpan(spanOf(start), nodeSpan(prog))},
		Program:   prog,
		Functions: fns,
	}
}

func (p *RecursiveDescentParser) parseFunction() *ast.Function {
	startTok, ok := p.expect(token.FUNC_KW)
	if !ok {
		return nil
	}
	rt := p.parseReturnType()
	if p.failed() {
		return nil
	}
	nameTok, ok := p.expect(token.ID_SY)
	if !ok {
		return nil
	}
	name := &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
	if _, ok := p.expect(token.HAS_KW); !ok {
		return nil
	}
	var params []*ast.VariableDefinition
	for !p.failed() && p.ts.Current().Kind == token.VAR_KW {
		params = append(params, p.parseVarDef())
	}
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.BEGIN_KW); !ok {
		return nil
	}
	body := p.parseStatements(isEndKind)
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.END_KW); !ok {
		return nil
	}
	endTok, ok := p.expect(token.FUNC_KW)
	if !ok {
		return nil
	}
	return &ast.Function{
		Base:       ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
		Name:       name,
		ReturnType: rt,
		Parameters: params,
		Body:       body,
	}
}

func (p *RecursiveDescentParser) parseProgram() *ast.Program {
	startTok, ok := p.expect(token.PROGRAM_KW)
	if !ok {
		return nil
	}
	nameTok, ok := p.expect(token.ID_SY)
	if !ok {
		return nil
	}
	name := &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
	if _, ok := p.expect(token.IS_KW); !ok {
		return nil
	}
	var globals []*ast.VariableDefinition
	for !p.failed() && p.ts.Current().Kind == token.VAR_KW {
		globals = append(globals, p.parseVarDef())
	}
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.BEGIN_KW); !ok {
		return nil
	}
	body := p.parseStatements(isEndKind)
	if p.failed() {
		return nil
	}
	endTok, ok := p.expect(token.END_KW)
	if !ok {
		return nil
	}
	return &ast.Program{
		Base:    ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
		Name:    name,
		Globals: globals,
		Body:    body,
	}
}

// ----------------------------------------------------------------------------
// Data types

func (p *RecursiveDescentParser) parseReturnType() *ast.ReturnType {
	if cur := p.ts.Current(); cur.Kind == token.VOID_TY {
		p.ts.Advance()
		return &ast.ReturnType{Base: ast.Base{Span: spanOf(cur)}, IsVoid: true}
	}
	dt := p.parseType()
	if p.failed() {
		return nil
	}
	return &ast.ReturnType{Base: ast.Base{Span: nodeSpan(dt)}, Inner: dt}
}

func (p *RecursiveDescentParser) parseType() ast.DataType {
	start := p.ts.Current()
	if start.Kind != token.LEFT_SQUARE_PR {
		return p.parsePrimitiveType()
	}
	dim := 0
	for p.ts.Current().Kind == token.LEFT_SQUARE_PR {
		p.ts.Advance()
		dim++
	}
	prim := p.parsePrimitiveType()
	if p.failed() {
		return nil
	}
	var elementName string
	if pd, ok := prim.(*ast.PrimitiveDataType); ok {
		elementName = pd.Name
	}
	var lastTok token.Token
	for i := 0; i < dim; i++ {
		t, ok := p.expect(token.RIGHT_SQUARE_PR)
		if !ok {
			return nil
		}
		lastTok = t
	}
	return &ast.ArrayDataType{
		Base:        ast.Base{Span: joinSpan(spanOf(start), spanOf(lastTok))},
		ElementName: elementName,
		Dimension:   dim,
	}
}

func (p *RecursiveDescentParser) parsePrimitiveType() ast.DataType {
	cur := p.ts.Current()
	if !cur.IsPrimitiveType() {
		if p.forwardIfFault() {
			return nil
		}
		p.latch(fmt.Sprintf("expected a primitive type, found %s %q", cur.Kind, cur.Value), spanOf(cur))
		return nil
	}
	p.ts.Advance()
	return &ast.PrimitiveDataType{Base: ast.Base{Span: spanOf(cur)}, Name: cur.Value}
}

// ----------------------------------------------------------------------------
// Variable definitions

func (p *RecursiveDescentParser) parseIdList() []*ast.Identifier {
	first, ok := p.expect(token.ID_SY)
	if !ok {
		return nil
	}
	ids := []*ast.Identifier{{Base: ast.Base{Span: spanOf(first)}, Name: first.Value}}
	for !p.failed() && p.ts.Current().Kind == token.COMMA_SY {
		p.ts.Advance()
		t, ok := p.expect(token.ID_SY)
		if !ok {
			return nil
		}
		ids = append(ids, &ast.Identifier{Base: ast.Base{Span: spanOf(t)}, Name: t.Value})
	}
	return ids
}

func (p *RecursiveDescentParser) parseVarDef() *ast.VariableDefinition {
	startTok, ok := p.expect(token.VAR_KW)
	if !ok {
		return nil
	}
	names := p.parseIdList()
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.COLON_SY); !ok {
		return nil
	}
	dt := p.parseType()
	if p.failed() {
		return nil
	}
	if p.ts.Current().Kind == token.EQUAL_OP {
		p.ts.Advance()
		if len(names) != 1 {
			p.latch("an initializer requires exactly one variable name", nodeSpan(dt))
			return nil
		}
		init := p.parseInit()
		if p.failed() {
			return nil
		}
		endTok, ok := p.expect(token.SEMI_COLON_SY)
		if !ok {
			return nil
		}
		inner := &ast.VariableInitialization{
			Base:        ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
			Name:        names[0],
			DataType:    dt,
			Initializer: init,
		}
		return &ast.VariableDefinition{Base: inner.Base, Inner: inner}
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return nil
	}
	inner := &ast.VariableDeclaration{
		Base:     ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
		Names:    names,
		DataType: dt,
	}
	return &ast.VariableDefinition{Base: inner.Base, Inner: inner}
}

func (p *RecursiveDescentParser) parseInit() ast.Expression {
	if p.ts.Current().Kind == token.LEFT_CURLY_PR {
		return p.parseArrayLit()
	}
	return p.parseOr()
}

func (p *RecursiveDescentParser) parseArrayLit() *ast.ArrayLiteral {
	startTok, ok := p.expect(token.LEFT_CURLY_PR)
	if !ok {
		return nil
	}
	var elems []ast.Expression
	if p.ts.Current().Kind != token.RIGHT_CURLY_PR {
		first := p.parseArrayLitElement()
		if p.failed() {
			return nil
		}
		elems = append(elems, first)
		for !p.failed() && p.ts.Current().Kind == token.COMMA_SY {
			p.ts.Advance()
			el := p.parseArrayLitElement()
			if p.failed() {
				return nil
			}
			elems = append(elems, el)
		}
	}
	if p.failed() {
		return nil
	}
	endTok, ok := p.expect(token.RIGHT_CURLY_PR)
	if !ok {
		return nil
	}
	return &ast.ArrayLiteral{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Elements: elems}
}

func (p *RecursiveDescentParser) parseArrayLitElement() ast.Expression {
	if p.ts.Current().Kind == token.LEFT_CURLY_PR {
		return p.parseArrayLit()
	}
	return p.parseOr()
}

// ----------------------------------------------------------------------------
// Statements

func (p *RecursiveDescentParser) parseStatements(stop func(token.Kind) bool) []ast.Statement {
	var stmts []ast.Statement
	for {
		if p.failed() {
			return nil
		}
		cur := p.ts.Current()
		if cur.Kind == token.ERROR {
			p.latch(cur.Value, spanOf(cur))
			return nil
		}
		if cur.Kind == token.END_OF_FILE {
			p.latch("unexpected end of input while parsing a statement block", spanOf(cur))
			return nil
		}
		if stop(cur.Kind) {
			return stmts
		}
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		stmts = append(stmts, stmt)
	}
}

func (p *RecursiveDescentParser) parseStatement() ast.Statement {
	switch p.ts.Current().Kind {
	case token.SKIP_KW:
		return p.parseSkip()
	case token.STOP_KW:
		return p.parseStop()
	case token.READ_KW:
		return p.parseRead()
	case token.WRITE_KW:
		return p.parseWrite()
	case token.IF_KW:
		return p.parseIf()
	case token.FOR_KW:
		return p.parseFor()
	case token.WHILE_KW:
		return p.parseWhile()
	case token.RETURN_KW:
		return p.parseReturn()
	case token.VAR_KW:
		return p.parseVarDef()
	default:
		return p.parseExprStmt()
	}
}

func (p *RecursiveDescentParser) parseSkip() ast.Statement {
	startTok, ok := p.expect(token.SKIP_KW)
	if !ok {
		return nil
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return nil
	}
	return &ast.Skip{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}}
}

func (p *RecursiveDescentParser) parseStop() ast.Statement {
	startTok, ok := p.expect(token.STOP_KW)
	if !ok {
		return nil
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return nil
	}
	return &ast.Stop{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}}
}

func (p *RecursiveDescentParser) parseRead() ast.Statement {
	startTok, ok := p.expect(token.READ_KW)
	if !ok {
		return nil
	}
	first := p.parseAssignable()
	if p.failed() {
		return nil
	}
	targets := []ast.AssignableExpression{first}
	for !p.failed() && p.ts.Current().Kind == token.COMMA_SY {
		p.ts.Advance()
		t := p.parseAssignable()
		if p.failed() {
			return nil
		}
		targets = append(targets, t)
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return nil
	}
	return &ast.Read{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Targets: targets}
}

func (p *RecursiveDescentParser) parseWrite() ast.Statement {
	startTok, ok := p.expect(token.WRITE_KW)
	if !ok {
		return nil
	}
	first := p.parseOr()
	if p.failed() {
		return nil
	}
	args := []ast.Expression{first}
	for !p.failed() && p.ts.Current().Kind == token.COMMA_SY {
		p.ts.Advance()
		arg := p.parseOr()
		if p.failed() {
			return nil
		}
		args = append(args, arg)
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return nil
	}
	return &ast.Write{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Args: args}
}

func (p *RecursiveDescentParser) parseReturn() ast.Statement {
	startTok, ok := p.expect(token.RETURN_KW)
	if !ok {
		return nil
	}
	var value ast.Expression
	if p.ts.Current().Kind != token.SEMI_COLON_SY {
		value = p.parseOr()
		if p.failed() {
			return nil
		}
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return nil
	}
	return &ast.Return{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Value: value}
}

func (p *RecursiveDescentParser) parseIf() ast.Statement {
	startTok, ok := p.expect(token.IF_KW)
	if !ok {
		return nil
	}
	cond := p.parseOr()
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.THEN_KW); !ok {
		return nil
	}
	thenBody := p.parseStatements(thenStop)
	if p.failed() {
		return nil
	}
	var elseBody []ast.Statement
	if startsDanglingElse(p.ts.Current()) {
		p.ts.Advance()
		if p.ts.Current().Kind == token.IF_KW {
			nested := p.parseIf()
			if p.failed() {
				return nil
			}
			elseBody = []ast.Statement{nested}
		} else {
			elseBody = p.parseStatements(isEndKind)
			if p.failed() {
				return nil
			}
		}
	}
	if _, ok := p.expect(token.END_KW); !ok {
		return nil
	}
	endTok, ok := p.expect(token.IF_KW)
	if !ok {
		return nil
	}
	return &ast.If{
		Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
		Cond: cond, Then: thenBody, Else: elseBody,
	}
}

func (p *RecursiveDescentParser) parseWhile() ast.Statement {
	startTok, ok := p.expect(token.WHILE_KW)
	if !ok {
		return nil
	}
	cond := p.parseOr()
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.DO_KW); !ok {
		return nil
	}
	body := p.parseStatements(isEndKind)
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.END_KW); !ok {
		return nil
	}
	endTok, ok := p.expect(token.WHILE_KW)
	if !ok {
		return nil
	}
	return &ast.While{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Cond: cond, Body: body}
}

func (p *RecursiveDescentParser) parseFor() ast.Statement {
	startTok, ok := p.expect(token.FOR_KW)
	if !ok {
		return nil
	}
	init := p.parseIntAssign()
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.SEMI_COLON_SY); !ok {
		return nil
	}
	cond := p.parseOr()
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.SEMI_COLON_SY); !ok {
		return nil
	}
	update := p.parseExpr()
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.DO_KW); !ok {
		return nil
	}
	body := p.parseStatements(isEndKind)
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.END_KW); !ok {
		return nil
	}
	endTok, ok := p.expect(token.FOR_KW)
	if !ok {
		return nil
	}
	return &ast.For{
		Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
		Init: init, Cond: cond, Update: update, Body: body,
	}
}

func (p *RecursiveDescentParser) parseIntAssign() *ast.Assignment {
	nameTok, ok := p.expect(token.ID_SY)
	if !ok {
		return nil
	}
	name := &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
	if _, ok := p.expect(token.EQUAL_OP); !ok {
		return nil
	}
	value := p.parseOr()
	if p.failed() {
		return nil
	}
	return &ast.Assignment{
		Base:     ast.Base{Span: joinSpan(spanOf(nameTok), nodeSpan(value))},
		Assignee: name, Value: value,
	}
}

func (p *RecursiveDescentParser) parseExprStmt() ast.Statement {
	expr := p.parseExpr()
	if p.failed() {
		return nil
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return nil
	}
	if assign, ok := expr.(*ast.Assignment); ok {
		assign.Span = joinSpan(assign.Span, spanOf(endTok))
		return assign
	}
	return &ast.ExpressionStatement{Base: ast.Base{Span: joinSpan(nodeSpan(expr), spanOf(endTok))}, Expr: expr}
}

// ----------------------------------------------------------------------------
// Expressions (precedence low -> high: Or, And, Equality, Relational,
// Additive, Multiplicative, Unary, Index, Primary)

func (p *RecursiveDescentParser) parseAssignable() ast.AssignableExpression {
	nameTok, ok := p.expect(token.ID_SY)
	if !ok {
		return nil
	}
	var result ast.AssignableExpression = &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
	for !p.failed() && p.ts.Current().Kind == token.LEFT_SQUARE_PR {
		p.ts.Advance()
		idx := p.parseOr()
		if p.failed() {
			return nil
		}
		endTok, ok := p.expect(token.RIGHT_SQUARE_PR)
		if !ok {
			return nil
		}
		result = &ast.Index{
			Base:   ast.Base{Span: joinSpan(nodeSpan(result), spanOf(endTok))},
			Target: result, Idx: idx,
		}
	}
	return result
}

func (p *RecursiveDescentParser) parseExpr() ast.Expression {
	if looksLikeAssignment(p.ts) {
		return p.parseAssignment()
	}
	return p.parseOr()
}

func (p *RecursiveDescentParser) parseAssignment() ast.Expression {
	target := p.parseAssignable()
	if p.failed() {
		return nil
	}
	if _, ok := p.expect(token.EQUAL_OP); !ok {
		return nil
	}
	var value ast.Expression
	if p.ts.Current().Kind == token.LEFT_CURLY_PR {
		value = p.parseArrayLit()
	} else {
		value = p.parseOr()
	}
	if p.failed() {
		return nil
	}
	return &ast.Assignment{
		Base:     ast.Base{Span: joinSpan(nodeSpan(target), nodeSpan(value))},
		Assignee: target, Value: value,
	}
}

func (p *RecursiveDescentParser) parseOr() ast.Expression {
	left := p.parseAnd()
	for !p.failed() && p.ts.Current().Kind == token.OR_KW {
		p.ts.Advance()
		right := p.parseAnd()
		if p.failed() {
			return nil
		}
		left = &ast.Or{Base: ast.Base{Span: joinSpan(nodeSpan(left), nodeSpan(right))}, Left: left, Right: right}
	}
	return left
}

func (p *RecursiveDescentParser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for !p.failed() && p.ts.Current().Kind == token.AND_KW {
		p.ts.Advance()
		right := p.parseEquality()
		if p.failed() {
			return nil
		}
		left = &ast.And{Base: ast.Base{Span: joinSpan(nodeSpan(left), nodeSpan(right))}, Left: left, Right: right}
	}
	return left
}

func (p *RecursiveDescentParser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for !p.failed() {
		cur := p.ts.Current()
		if cur.Kind != token.IS_EQUAL_OP && cur.Kind != token.NOT_EQUAL_OP {
			break
		}
		p.ts.Advance()
		right := p.parseRelational()
		if p.failed() {
			return nil
		}
		left = &ast.Equality{Base: ast.Base{Span: joinSpan(nodeSpan(left), nodeSpan(right))}, Op: cur.Value, Left: left, Right: right}
	}
	return left
}

func (p *RecursiveDescentParser) parseRelational() ast.Expression {
	left := p.parseAdditive()
	for !p.failed() {
		cur := p.ts.Current()
		switch cur.Kind {
		case token.LESS_THAN_OP, token.LESS_EQUAL_OP, token.GREATER_THAN_OP, token.GREATER_EQUAL_OP:
		default:
			return left
		}
		p.ts.Advance()
		right := p.parseAdditive()
		if p.failed() {
			return nil
		}
		left = &ast.Relational{Base: ast.Base{Span: joinSpan(nodeSpan(left), nodeSpan(right))}, Op: cur.Value, Left: left, Right: right}
	}
	return left
}

func (p *RecursiveDescentParser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for !p.failed() {
		cur := p.ts.Current()
		if cur.Kind != token.PLUS_OP && cur.Kind != token.MINUS_OP {
			break
		}
		p.ts.Advance()
		right := p.parseMultiplicative()
		if p.failed() {
			return nil
		}
		left = &ast.Additive{Base: ast.Base{Span: joinSpan(nodeSpan(left), nodeSpan(right))}, Op: cur.Value, Left: left, Right: right}
	}
	return left
}

func (p *RecursiveDescentParser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for !p.failed() {
		cur := p.ts.Current()
		if cur.Kind != token.MULT_OP && cur.Kind != token.DIVIDE_OP && cur.Kind != token.MOD_OP {
			break
		}
		p.ts.Advance()
		right := p.parseUnary()
		if p.failed() {
			return nil
		}
		left = &ast.Multiplicative{Base: ast.Base{Span: joinSpan(nodeSpan(left), nodeSpan(right))}, Op: cur.Value, Left: left, Right: right}
	}
	return left
}

func (p *RecursiveDescentParser) parseUnary() ast.Expression {
	cur := p.ts.Current()
	switch cur.Kind {
	case token.MINUS_OP, token.STRINGIFY_OP, token.BOOLEAN_OP, token.ROUND_OP, token.LENGTH_OP:
		p.ts.Advance()
		operand := p.parseIndex()
		if p.failed() {
			return nil
		}
		return &ast.Unary{Base: ast.Base{Span: joinSpan(spanOf(cur), nodeSpan(operand))}, Op: cur.Value, Operand: operand}
	case token.INCREMENT_OP, token.DECREMENT_OP:
		p.ts.Advance()
		operand := p.parseAssignable()
		if p.failed() {
			return nil
		}
		return &ast.Unary{Base: ast.Base{Span: joinSpan(spanOf(cur), nodeSpan(operand))}, Op: cur.Value, Operand: operand}
	case token.NOT_KW:
		p.ts.Advance()
		operand := p.parseIndex()
		if p.failed() {
			return nil
		}
		return &ast.Unary{Base: ast.Base{Span: joinSpan(spanOf(cur), nodeSpan(operand))}, Op: "not", Operand: operand}
	default:
		operand := p.parseIndex()
		if p.failed() {
			return nil
		}
		switch p.ts.Current().Kind {
		case token.INCREMENT_OP, token.DECREMENT_OP:
			opTok := p.ts.Advance()
			return &ast.Unary{
				Base: ast.Base{Span: joinSpan(nodeSpan(operand), spanOf(opTok))},
				Op:   opTok.Value, Operand: operand, Postfix: true,
			}
		}
		return operand
	}
}

func (p *RecursiveDescentParser) parseIndex() ast.Expression {
	target := p.parsePrimary()
	if p.failed() {
		return nil
	}
	for !p.failed() && p.ts.Current().Kind == token.LEFT_SQUARE_PR {
		p.ts.Advance()
		idx := p.parseOr()
		if p.failed() {
			return nil
		}
		endTok, ok := p.expect(token.RIGHT_SQUARE_PR)
		if !ok {
			return nil
		}
		target = &ast.Index{Base: ast.Base{Span: joinSpan(nodeSpan(target), spanOf(endTok))}, Target: target, Idx: idx}
	}
	return target
}

func (p *RecursiveDescentParser) parsePrimary() ast.Expression {
	cur := p.ts.Current()
	switch cur.Kind {
	case token.LEFT_PR:
		p.ts.Advance()
		inner := p.parseExpr()
		if p.failed() {
			return nil
		}
		if _, ok := p.expect(token.RIGHT_PR); !ok {
			return nil
		}
		return inner
	case token.INTEGER_NUM:
		p.ts.Advance()
		v, _ := strconv.ParseInt(cur.Value, 10, 64)
		return &ast.IntegerLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: v}
	case token.FLOAT_NUM:
		p.ts.Advance()
		v, _ := strconv.ParseFloat(cur.Value, 64)
		return &ast.FloatLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: v}
	case token.STRING_SY:
		p.ts.Advance()
		return &ast.StringLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: cur.Value}
	case token.TRUE_KW:
		p.ts.Advance()
		return &ast.BooleanLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: true}
	case token.FALSE_KW:
		p.ts.Advance()
		return &ast.BooleanLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: false}
	case token.ID_SY:
		p.ts.Advance()
		if p.ts.Current().Kind == token.LEFT_PR {
			p.ts.Advance()
			var args []ast.Expression
			if p.ts.Current().Kind != token.RIGHT_PR {
				args = p.parseArgList()
				if p.failed() {
					return nil
				}
			}
			endTok, ok := p.expect(token.RIGHT_PR)
			if !ok {
				return nil
			}
			return &ast.Call{
				Base: ast.Base{Span: joinSpan(spanOf(cur), spanOf(endTok))},
				Fn:   &ast.Identifier{Base: ast.Base{Span: spanOf(cur)}, Name: cur.Value},
				Args: args,
			}
		}
		return &ast.Identifier{Base: ast.Base{Span: spanOf(cur)}, Name: cur.Value}
	default:
		if p.forwardIfFault() {
			return nil
		}
		p.latch(fmt.Sprintf("unexpected token in expression: %s %q", cur.Kind, cur.Value), spanOf(cur))
		return nil
	}
}

func (p *RecursiveDescentParser) parseArgList() []ast.Expression {
	first := p.parseOr()
	if p.failed() {
		return nil
	}
	args := []ast.Expression{first}
	for !p.failed() && p.ts.Current().Kind == token.COMMA_SY {
		p.ts.Advance()
		arg := p.parseOr()
		if p.failed() {
			return nil
		}
		args = append(args, arg)
	}
	return args
}
