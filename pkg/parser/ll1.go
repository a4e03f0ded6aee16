package parser

import (
	"fmt"
	"strconv"

	"its-hmny.dev/robinc/pkg/ast"
	"its-hmny.dev/robinc/pkg/scanner"
	"its-hmny.dev/robinc/pkg/token"
)

// step is one unit of work on LL1Parser's explicit symbol stack. A step
// either matches a terminal directly, or predicts a production from the
// current/peeked token and pushes that production's steps (in right-to-left
// order, so the leftmost symbol runs next), followed by a "reduce marker"
// step that pops the children it needs off the value stack, builds the
// parent node, and pushes that back. This realizes §4.2.2's architecture
// (explicit stack of terminals/non-terminals/reduce-markers) as Go closures
// rather than a literal numbered 2D table: the prediction a table cell would
// encode is instead the lookahead switch at the top of each step function.
// Both representations make the same decision; this one reads the way a
// hand-written (not parser-generator-produced) Go table-driven parser does.
type step func(p *LL1Parser)

// LL1Parser implements Parser as an explicit-stack, non-recursive evaluator:
// the Go call stack never grows with grammar nesting depth, only p.stack
// does. On grammatically valid input it produces an AST structurally
// identical to RecursiveDescentParser's (see the parser-parity test).
//
// Known limitation: the two documented bounded-lookahead disambiguations
// (assignment-vs-or via looksLikeAssignment, and dangling-else via
// startsDanglingElse) are the only lookahead beyond one token this parser
// performs; arbitrary unbounded lookahead is not implemented.
type LL1Parser struct {
	base
	stack  []step
	values []any
}

// NewLL1Parser wraps sc; see NewRecursiveDescentParser for why the scanner
// variant is passed in rather than fixed.
func NewLL1Parser(sc scanner.Scanner) *LL1Parser {
	return &LL1Parser{base: newBase(NewTokenStream(sc))}
}

// push schedules steps to run next, leftmost first: it appends them to the
// stack in reverse so stepN ends up on top.
func (p *LL1Parser) push(steps ...step) {
	for i := len(steps) - 1; i >= 0; i-- {
		p.stack = append(p.stack, steps[i])
	}
}

func (p *LL1Parser) pushValue(v any) { p.values = append(p.values, v) }

func (p *LL1Parser) popValue() any {
	n := len(p.values) - 1
	v := p.values[n]
	p.values = p.values[:n]
	return v
}

func (p *LL1Parser) ParseAST() ast.Node {
	p.stack = []step{stepSource}
	for len(p.stack) > 0 && !p.failed() {
		n := len(p.stack) - 1
		s := p.stack[n]
		p.stack = p.stack[:n]
		s(p)
	}
	if p.failed() {
		return p.err
	}
	src, _ := p.popValue().(*ast.Source)
	return src
}

// ----------------------------------------------------------------------------
// Binary precedence levels: Or, And, Equality, Relational, Additive,
// Multiplicative all share the same left-associative "child (op child)*"
// shape, driven by a generic continuation step.

func binaryLevel(p *LL1Parser, child step, isOp func(token.Kind) bool, build func(token.Token, ast.Expression, ast.Expression) ast.Expression) {
	p.push(child, continueBinary(child, isOp, build))
}

func continueBinary(child step, isOp func(token.Kind) bool, build func(token.Token, ast.Expression, ast.Expression) ast.Expression) step {
	return func(p *LL1Parser) {
		if p.failed() {
			return
		}
		cur := p.ts.Current()
		if !isOp(cur.Kind) {
			return
		}
		p.ts.Advance()
		left, _ := p.popValue().(ast.Expression)
		p.push(child, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			right, _ := p.popValue().(ast.Expression)
			p.pushValue(build(cur, left, right))
		}, continueBinary(child, isOp, build))
	}
}

func stepOr(p *LL1Parser)  { binaryLevel(p, stepAnd, isOrOp, buildOr) }
func stepAnd(p *LL1Parser) { binaryLevel(p, stepEquality, isAndOp, buildAnd) }
func stepEquality(p *LL1Parser) {
	binaryLevel(p, stepRelational, isEqualityOp, buildEquality)
}
func stepRelational(p *LL1Parser) { binaryLevel(p, stepAdditive, isRelationalOp, buildRelational) }
func stepAdditive(p *LL1Parser)   { binaryLevel(p, stepMultiplicative, isAdditiveOp, buildAdditive) }
func stepMultiplicative(p *LL1Parser) {
	binaryLevel(p, stepUnary, isMultiplicativeOp, buildMultiplicative)
}

func isOrOp(k token.Kind) bool  { return k == token.OR_KW }
func isAndOp(k token.Kind) bool { return k == token.AND_KW }
func isEqualityOp(k token.Kind) bool {
	return k == token.IS_EQUAL_OP || k == token.NOT_EQUAL_OP
}
func isRelationalOp(k token.Kind) bool {
	switch k {
	case token.LESS_THAN_OP, token.LESS_EQUAL_OP, token.GREATER_THAN_OP, token.GREATER_EQUAL_OP:
		return true
	}
	return false
}
func isAdditiveOp(k token.Kind) bool { return k == token.PLUS_OP || k == token.MINUS_OP }
func isMultiplicativeOp(k token.Kind) bool {
	switch k {
	case token.MULT_OP, token.DIVIDE_OP, token.MOD_OP:
		return true
	}
	return false
}

func buildOr(_ token.Token, l, r ast.Expression) ast.Expression {
	return &ast.Or{Base: ast.Base{Span: joinSpan(nodeSpan(l), nodeSpan(r))}, Left: l, Right: r}
}
func buildAnd(_ token.Token, l, r ast.Expression) ast.Expression {
	return &ast.And{Base: ast.Base{Span: joinSpan(nodeSpan(l), nodeSpan(r))}, Left: l, Right: r}
}
func buildEquality(op token.Token, l, r ast.Expression) ast.Expression {
	return &ast.Equality{Base: ast.Base{Span: joinSpan(nodeSpan(l), nodeSpan(r))}, Op: op.Value, Left: l, Right: r}
}
func buildRelational(op token.Token, l, r ast.Expression) ast.Expression {
	return &ast.Relational{Base: ast.Base{Span: joinSpan(nodeSpan(l), nodeSpan(r))}, Op: op.Value, Left: l, Right: r}
}
func buildAdditive(op token.Token, l, r ast.Expression) ast.Expression {
	return &ast.Additive{Base: ast.Base{Span: joinSpan(nodeSpan(l), nodeSpan(r))}, Op: op.Value, Left: l, Right: r}
}
func buildMultiplicative(op token.Token, l, r ast.Expression) ast.Expression {
	return &ast.Multiplicative{Base: ast.Base{Span: joinSpan(nodeSpan(l), nodeSpan(r))}, Op: op.Value, Left: l, Right: r}
}

// ----------------------------------------------------------------------------
// Unary, Index, Primary, ArgList

func stepUnary(p *LL1Parser) {
	if p.failed() {
		return
	}
	cur := p.ts.Current()
	switch cur.Kind {
	case token.MINUS_OP, token.STRINGIFY_OP, token.BOOLEAN_OP, token.ROUND_OP, token.LENGTH_OP:
		p.ts.Advance()
		p.push(stepIndex, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			operand, _ := p.popValue().(ast.Expression)
			p.pushValue(&ast.Unary{Base: ast.Base{Span: joinSpan(spanOf(cur), nodeSpan(operand))}, Op: cur.Value, Operand: operand})
		})
	case token.INCREMENT_OP, token.DECREMENT_OP:
		p.ts.Advance()
		p.push(stepAssignable, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			operand, _ := p.popValue().(ast.Expression)
			p.pushValue(&ast.Unary{Base: ast.Base{Span: joinSpan(spanOf(cur), nodeSpan(operand))}, Op: cur.Value, Operand: operand})
		})
	case token.NOT_KW:
		p.ts.Advance()
		p.push(stepIndex, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			operand, _ := p.popValue().(ast.Expression)
			p.pushValue(&ast.Unary{Base: ast.Base{Span: joinSpan(spanOf(cur), nodeSpan(operand))}, Op: "not", Operand: operand})
		})
	default:
		p.push(stepIndex, stepMaybePostfix)
	}
}

func stepMaybePostfix(p *LL1Parser) {
	if p.failed() {
		return
	}
	operand, _ := p.popValue().(ast.Expression)
	switch p.ts.Current().Kind {
	case token.INCREMENT_OP, token.DECREMENT_OP:
		opTok := p.ts.Advance()
		p.pushValue(&ast.Unary{
			Base: ast.Base{Span: joinSpan(nodeSpan(operand), spanOf(opTok))},
			Op:   opTok.Value, Operand: operand, Postfix: true,
		})
	default:
		p.pushValue(operand)
	}
}

func stepIndex(p *LL1Parser) { p.push(stepPrimary, continueIndex) }

func continueIndex(p *LL1Parser) {
	if p.failed() {
		return
	}
	if p.ts.Current().Kind != token.LEFT_SQUARE_PR {
		return
	}
	p.ts.Advance()
	target, _ := p.popValue().(ast.Expression)
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		idx, _ := p.popValue().(ast.Expression)
		endTok, ok := p.expect(token.RIGHT_SQUARE_PR)
		if !ok {
			return
		}
		p.pushValue(&ast.Index{Base: ast.Base{Span: joinSpan(nodeSpan(target), spanOf(endTok))}, Target: target, Idx: idx})
	}, continueIndex)
}

func stepPrimary(p *LL1Parser) {
	if p.failed() {
		return
	}
	cur := p.ts.Current()
	switch cur.Kind {
	case token.LEFT_PR:
		p.ts.Advance()
		p.push(stepExpr, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			inner := p.popValue()
			if _, ok := p.expect(token.RIGHT_PR); !ok {
				return
			}
			p.pushValue(inner)
		})
	case token.INTEGER_NUM:
		p.ts.Advance()
		v, _ := strconv.ParseInt(cur.Value, 10, 64)
		p.pushValue(&ast.IntegerLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: v})
	case token.FLOAT_NUM:
		p.ts.Advance()
		v, _ := strconv.ParseFloat(cur.Value, 64)
		p.pushValue(&ast.FloatLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: v})
	case token.STRING_SY:
		p.ts.Advance()
		p.pushValue(&ast.StringLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: cur.Value})
	case token.TRUE_KW:
		p.ts.Advance()
		p.pushValue(&ast.BooleanLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: true})
	case token.FALSE_KW:
		p.ts.Advance()
		p.pushValue(&ast.BooleanLiteral{Base: ast.Base{Span: spanOf(cur)}, Value: false})
	case token.ID_SY:
		p.ts.Advance()
		if p.ts.Current().Kind == token.LEFT_PR {
			p.ts.Advance()
			fn := &ast.Identifier{Base: ast.Base{Span: spanOf(cur)}, Name: cur.Value}
			if p.ts.Current().Kind == token.RIGHT_PR {
				endTok, _ := p.expect(token.RIGHT_PR)
				p.pushValue(&ast.Call{Base: ast.Base{Span: joinSpan(spanOf(cur), spanOf(endTok))}, Fn: fn})
				return
			}
			p.push(stepArgList, func(p *LL1Parser) {
				if p.failed() {
					return
				}
				args, _ := p.popValue().([]ast.Expression)
				endTok, ok := p.expect(token.RIGHT_PR)
				if !ok {
					return
				}
				p.pushValue(&ast.Call{Base: ast.Base{Span: joinSpan(spanOf(cur), spanOf(endTok))}, Fn: fn, Args: args})
			})
			return
		}
		p.pushValue(&ast.Identifier{Base: ast.Base{Span: spanOf(cur)}, Name: cur.Value})
	default:
		if p.forwardIfFault() {
			return
		}
		p.latch(fmt.Sprintf("unexpected token in expression: %s %q", cur.Kind, cur.Value), spanOf(cur))
	}
}

func stepArgList(p *LL1Parser) {
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		first, _ := p.popValue().(ast.Expression)
		p.pushValue([]ast.Expression{first})
	}, continueArgList)
}

func continueArgList(p *LL1Parser) {
	if p.failed() {
		return
	}
	if p.ts.Current().Kind != token.COMMA_SY {
		return
	}
	p.ts.Advance()
	args, _ := p.popValue().([]ast.Expression)
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		next, _ := p.popValue().(ast.Expression)
		p.pushValue(append(args, next))
	}, continueArgList)
}

// ----------------------------------------------------------------------------
// Assignable, Expr/Assignment, ArrayLit

func stepAssignable(p *LL1Parser) {
	nameTok, ok := p.expect(token.ID_SY)
	if !ok {
		return
	}
	var result ast.AssignableExpression = &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
	p.pushValue(result)
	continueAssignableIndex(p)
}

func continueAssignableIndex(p *LL1Parser) {
	if p.failed() {
		return
	}
	if p.ts.Current().Kind != token.LEFT_SQUARE_PR {
		return
	}
	p.ts.Advance()
	result, _ := p.popValue().(ast.AssignableExpression)
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		idx, _ := p.popValue().(ast.Expression)
		endTok, ok := p.expect(token.RIGHT_SQUARE_PR)
		if !ok {
			return
		}
		var next ast.AssignableExpression = &ast.Index{
			Base:   ast.Base{Span: joinSpan(nodeSpan(result), spanOf(endTok))},
			Target: result, Idx: idx,
		}
		p.pushValue(next)
	}, continueAssignableIndex)
}

func stepExpr(p *LL1Parser) {
	if looksLikeAssignment(p.ts) {
		stepAssignment(p)
		return
	}
	stepOr(p)
}

func stepAssignment(p *LL1Parser) {
	p.push(stepAssignable, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		target, _ := p.popValue().(ast.AssignableExpression)
		if _, ok := p.expect(token.EQUAL_OP); !ok {
			return
		}
		reduce := func(p *LL1Parser) {
			if p.failed() {
				return
			}
			value, _ := p.popValue().(ast.Expression)
			p.pushValue(&ast.Assignment{Base: ast.Base{Span: joinSpan(nodeSpan(target), nodeSpan(value))}, Assignee: target, Value: value})
		}
		if p.ts.Current().Kind == token.LEFT_CURLY_PR {
			p.push(stepArrayLit, reduce)
			return
		}
		p.push(stepOr, reduce)
	})
}

func stepArrayLit(p *LL1Parser) {
	startTok, ok := p.expect(token.LEFT_CURLY_PR)
	if !ok {
		return
	}
	if p.ts.Current().Kind == token.RIGHT_CURLY_PR {
		endTok, _ := p.expect(token.RIGHT_CURLY_PR)
		p.pushValue(&ast.ArrayLiteral{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}})
		return
	}
	p.push(stepArrayLitElement, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		first, _ := p.popValue().(ast.Expression)
		p.pushValue([]ast.Expression{first})
	}, continueArrayLitElements, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		elems, _ := p.popValue().([]ast.Expression)
		endTok, ok := p.expect(token.RIGHT_CURLY_PR)
		if !ok {
			return
		}
		p.pushValue(&ast.ArrayLiteral{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Elements: elems})
	})
}

func stepArrayLitElement(p *LL1Parser) {
	if p.ts.Current().Kind == token.LEFT_CURLY_PR {
		stepArrayLit(p)
		return
	}
	stepOr(p)
}

func continueArrayLitElements(p *LL1Parser) {
	if p.failed() {
		return
	}
	if p.ts.Current().Kind != token.COMMA_SY {
		return
	}
	p.ts.Advance()
	elems, _ := p.popValue().([]ast.Expression)
	p.push(stepArrayLitElement, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		next, _ := p.popValue().(ast.Expression)
		p.pushValue(append(elems, next))
	}, continueArrayLitElements)
}

func stepInit(p *LL1Parser) {
	if p.ts.Current().Kind == token.LEFT_CURLY_PR {
		stepArrayLit(p)
		return
	}
	stepOr(p)
}

// ----------------------------------------------------------------------------
// Data types

func stepPrimitiveType(p *LL1Parser) {
	cur := p.ts.Current()
	if !cur.IsPrimitiveType() {
		if p.forwardIfFault() {
			return
		}
		p.latch(fmt.Sprintf("expected a primitive type, found %s %q", cur.Kind, cur.Value), spanOf(cur))
		return
	}
	p.ts.Advance()
	p.pushValue(ast.DataType(&ast.PrimitiveDataType{Base: ast.Base{Span: spanOf(cur)}, Name: cur.Value}))
}

func stepType(p *LL1Parser) {
	start := p.ts.Current()
	if start.Kind != token.LEFT_SQUARE_PR {
		stepPrimitiveType(p)
		return
	}
	dim := 0
	for p.ts.Current().Kind == token.LEFT_SQUARE_PR {
		p.ts.Advance()
		dim++
	}
	p.push(stepPrimitiveType, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		prim, _ := p.popValue().(ast.DataType)
		var elementName string
		if pd, ok := prim.(*ast.PrimitiveDataType); ok {
			elementName = pd.Name
		}
		var lastTok token.Token
		for i := 0; i < dim; i++ {
			t, ok := p.expect(token.RIGHT_SQUARE_PR)
			if !ok {
				return
			}
			lastTok = t
		}
		p.pushValue(ast.DataType(&ast.ArrayDataType{
			Base:        ast.Base{Span: joinSpan(spanOf(start), spanOf(lastTok))},
			ElementName: elementName, Dimension: dim,
		}))
	})
}

func stepReturnType(p *LL1Parser) {
	if cur := p.ts.Current(); cur.Kind == token.VOID_TY {
		p.ts.Advance()
		p.pushValue(&ast.ReturnType{Base: ast.Base{Span: spanOf(cur)}, IsVoid: true})
		return
	}
	p.push(stepType, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		dt, _ := p.popValue().(ast.DataType)
		p.pushValue(&ast.ReturnType{Base: ast.Base{Span: nodeSpan(dt)}, Inner: dt})
	})
}

// ----------------------------------------------------------------------------
// IdList, VarDef, VarDef*

func stepIdList(p *LL1Parser) {
	first, ok := p.expect(token.ID_SY)
	if !ok {
		return
	}
	p.pushValue([]*ast.Identifier{{Base: ast.Base{Span: spanOf(first)}, Name: first.Value}})
	continueIdList(p)
}

func continueIdList(p *LL1Parser) {
	if p.failed() {
		return
	}
	if p.ts.Current().Kind != token.COMMA_SY {
		return
	}
	p.ts.Advance()
	ids, _ := p.popValue().([]*ast.Identifier)
	t, ok := p.expect(token.ID_SY)
	if !ok {
		return
	}
	p.pushValue(append(ids, &ast.Identifier{Base: ast.Base{Span: spanOf(t)}, Name: t.Value}))
	continueIdList(p)
}

func stepVarDef(p *LL1Parser) {
	startTok, ok := p.expect(token.VAR_KW)
	if !ok {
		return
	}
	p.push(stepIdList, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		names, _ := p.popValue().([]*ast.Identifier)
		if _, ok := p.expect(token.COLON_SY); !ok {
			return
		}
		p.push(stepType, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			dt, _ := p.popValue().(ast.DataType)
			if p.ts.Current().Kind == token.EQUAL_OP {
				p.ts.Advance()
				if len(names) != 1 {
					p.latch("an initializer requires exactly one variable name", nodeSpan(dt))
					return
				}
				p.push(stepInit, func(p *LL1Parser) {
					if p.failed() {
						return
					}
					init, _ := p.popValue().(ast.Expression)
					endTok, ok := p.expect(token.SEMI_COLON_SY)
					if !ok {
						return
					}
					inner := &ast.VariableInitialization{
						Base:        ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
						Name:        names[0],
						DataType:    dt,
						Initializer: init,
					}
					p.pushValue(ast.Statement(&ast.VariableDefinition{Base: inner.Base, Inner: inner}))
				})
				return
			}
			endTok, ok := p.expect(token.SEMI_COLON_SY)
			if !ok {
				return
			}
			inner := &ast.VariableDeclaration{
				Base:     ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
				Names:    names,
				DataType: dt,
			}
			p.pushValue(ast.Statement(&ast.VariableDefinition{Base: inner.Base, Inner: inner}))
		})
	})
}

// varDefStarStep builds a fresh driver (with its own accumulator) each time
// it's called, so Function parameters and Program globals don't share state.
func varDefStarStep() step {
	var out []*ast.VariableDefinition
	var driver step
	driver = func(p *LL1Parser) {
		if p.failed() {
			return
		}
		if p.ts.Current().Kind != token.VAR_KW {
			p.pushValue(out)
			return
		}
		p.push(stepVarDef, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			vd, _ := p.popValue().(ast.Statement)
			out = append(out, vd.(*ast.VariableDefinition))
		}, driver)
	}
	return driver
}

// ----------------------------------------------------------------------------
// Statement blocks and individual statements

func stmtBlockStep(stop func(token.Kind) bool) step {
	var out []ast.Statement
	var driver step
	driver = func(p *LL1Parser) {
		if p.failed() {
			return
		}
		cur := p.ts.Current()
		if cur.Kind == token.ERROR {
			p.latch(cur.Value, spanOf(cur))
			return
		}
		if cur.Kind == token.END_OF_FILE {
			p.latch("unexpected end of input while parsing a statement block", spanOf(cur))
			return
		}
		if stop(cur.Kind) {
			p.pushValue(out)
			return
		}
		p.push(stepStmt, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			stmt, _ := p.popValue().(ast.Statement)
			out = append(out, stmt)
		}, driver)
	}
	return driver
}

func stepStmt(p *LL1Parser) {
	if p.failed() {
		return
	}
	switch p.ts.Current().Kind {
	case token.SKIP_KW:
		stepSkip(p)
	case token.STOP_KW:
		stepStop(p)
	case token.READ_KW:
		stepRead(p)
	case token.WRITE_KW:
		stepWrite(p)
	case token.IF_KW:
		stepIf(p)
	case token.FOR_KW:
		stepForStmt(p)
	case token.WHILE_KW:
		stepWhile(p)
	case token.RETURN_KW:
		stepReturn(p)
	case token.VAR_KW:
		stepVarDef(p)
	default:
		stepExprStmt(p)
	}
}

func stepSkip(p *LL1Parser) {
	startTok, ok := p.expect(token.SKIP_KW)
	if !ok {
		return
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return
	}
	p.pushValue(ast.Statement(&ast.Skip{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}}))
}

func stepStop(p *LL1Parser) {
	startTok, ok := p.expect(token.STOP_KW)
	if !ok {
		return
	}
	endTok, ok := p.expect(token.SEMI_COLON_SY)
	if !ok {
		return
	}
	p.pushValue(ast.Statement(&ast.Stop{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}}))
}

func stepRead(p *LL1Parser) {
	startTok, ok := p.expect(token.READ_KW)
	if !ok {
		return
	}
	p.push(stepAssignable, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		first, _ := p.popValue().(ast.AssignableExpression)
		p.pushValue([]ast.AssignableExpression{first})
	}, continueReadTargets, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		targets, _ := p.popValue().([]ast.AssignableExpression)
		endTok, ok := p.expect(token.SEMI_COLON_SY)
		if !ok {
			return
		}
		p.pushValue(ast.Statement(&ast.Read{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Targets: targets}))
	})
}

func continueReadTargets(p *LL1Parser) {
	if p.failed() {
		return
	}
	if p.ts.Current().Kind != token.COMMA_SY {
		return
	}
	p.ts.Advance()
	targets, _ := p.popValue().([]ast.AssignableExpression)
	p.push(stepAssignable, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		next, _ := p.popValue().(ast.AssignableExpression)
		p.pushValue(append(targets, next))
	}, continueReadTargets)
}

func stepWrite(p *LL1Parser) {
	startTok, ok := p.expect(token.WRITE_KW)
	if !ok {
		return
	}
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		first, _ := p.popValue().(ast.Expression)
		p.pushValue([]ast.Expression{first})
	}, continueWriteArgs, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		args, _ := p.popValue().([]ast.Expression)
		endTok, ok := p.expect(token.SEMI_COLON_SY)
		if !ok {
			return
		}
		p.pushValue(ast.Statement(&ast.Write{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Args: args}))
	})
}

func continueWriteArgs(p *LL1Parser) {
	if p.failed() {
		return
	}
	if p.ts.Current().Kind != token.COMMA_SY {
		return
	}
	p.ts.Advance()
	args, _ := p.popValue().([]ast.Expression)
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		next, _ := p.popValue().(ast.Expression)
		p.pushValue(append(args, next))
	}, continueWriteArgs)
}

func stepReturn(p *LL1Parser) {
	startTok, ok := p.expect(token.RETURN_KW)
	if !ok {
		return
	}
	if p.ts.Current().Kind == token.SEMI_COLON_SY {
		endTok, _ := p.expect(token.SEMI_COLON_SY)
		p.pushValue(ast.Statement(&ast.Return{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}}))
		return
	}
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		value, _ := p.popValue().(ast.Expression)
		endTok, ok := p.expect(token.SEMI_COLON_SY)
		if !ok {
			return
		}
		p.pushValue(ast.Statement(&ast.Return{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Value: value}))
	})
}

func stepExprStmt(p *LL1Parser) {
	p.push(stepExpr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		expr, _ := p.popValue().(ast.Expression)
		endTok, ok := p.expect(token.SEMI_COLON_SY)
		if !ok {
			return
		}
		if assign, ok := expr.(*ast.Assignment); ok {
			assign.Span = joinSpan(assign.Span, spanOf(endTok))
			p.pushValue(ast.Statement(assign))
			return
		}
		p.pushValue(ast.Statement(&ast.ExpressionStatement{Base: ast.Base{Span: joinSpan(nodeSpan(expr), spanOf(endTok))}, Expr: expr}))
	})
}

func stepIf(p *LL1Parser) {
	startTok, ok := p.expect(token.IF_KW)
	if !ok {
		return
	}
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		cond, _ := p.popValue().(ast.Expression)
		if _, ok := p.expect(token.THEN_KW); !ok {
			return
		}
		p.push(stmtBlockStep(thenStop), func(p *LL1Parser) {
			if p.failed() {
				return
			}
			thenBody, _ := p.popValue().([]ast.Statement)
			finishIf(p, startTok, cond, thenBody)
		})
	})
}

func finishIf(p *LL1Parser, startTok token.Token, cond ast.Expression, thenBody []ast.Statement) {
	if startsDanglingElse(p.ts.Current()) {
		p.ts.Advance()
		if p.ts.Current().Kind == token.IF_KW {
			p.push(stepIf, func(p *LL1Parser) {
				if p.failed() {
					return
				}
				nested, _ := p.popValue().(ast.Statement)
				finishIfClose(p, startTok, cond, thenBody, []ast.Statement{nested})
			})
			return
		}
		p.push(stmtBlockStep(isEndKind), func(p *LL1Parser) {
			if p.failed() {
				return
			}
			elseBody, _ := p.popValue().([]ast.Statement)
			finishIfClose(p, startTok, cond, thenBody, elseBody)
		})
		return
	}
	finishIfClose(p, startTok, cond, thenBody, nil)
}

func finishIfClose(p *LL1Parser, startTok token.Token, cond ast.Expression, thenBody, elseBody []ast.Statement) {
	if _, ok := p.expect(token.END_KW); !ok {
		return
	}
	endTok, ok := p.expect(token.IF_KW)
	if !ok {
		return
	}
	p.pushValue(ast.Statement(&ast.If{
		Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
		Cond: cond, Then: thenBody, Else: elseBody,
	}))
}

func stepWhile(p *LL1Parser) {
	startTok, ok := p.expect(token.WHILE_KW)
	if !ok {
		return
	}
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		cond, _ := p.popValue().(ast.Expression)
		if _, ok := p.expect(token.DO_KW); !ok {
			return
		}
		p.push(stmtBlockStep(isEndKind), func(p *LL1Parser) {
			if p.failed() {
				return
			}
			body, _ := p.popValue().([]ast.Statement)
			if _, ok := p.expect(token.END_KW); !ok {
				return
			}
			endTok, ok := p.expect(token.WHILE_KW)
			if !ok {
				return
			}
			p.pushValue(ast.Statement(&ast.While{Base: ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))}, Cond: cond, Body: body}))
		})
	})
}

func stepForStmt(p *LL1Parser) {
	startTok, ok := p.expect(token.FOR_KW)
	if !ok {
		return
	}
	p.push(stepIntAssign, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		init, _ := p.popValue().(*ast.Assignment)
		if _, ok := p.expect(token.SEMI_COLON_SY); !ok {
			return
		}
		p.push(stepOr, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			cond, _ := p.popValue().(ast.Expression)
			if _, ok := p.expect(token.SEMI_COLON_SY); !ok {
				return
			}
			p.push(stepExpr, func(p *LL1Parser) {
				if p.failed() {
					return
				}
				update, _ := p.popValue().(ast.Expression)
				if _, ok := p.expect(token.DO_KW); !ok {
					return
				}
				p.push(stmtBlockStep(isEndKind), func(p *LL1Parser) {
					if p.failed() {
						return
					}
					body, _ := p.popValue().([]ast.Statement)
					if _, ok := p.expect(token.END_KW); !ok {
						return
					}
					endTok, ok := p.expect(token.FOR_KW)
					if !ok {
						return
					}
					p.pushValue(ast.Statement(&ast.For{
						Base:   ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
						Init:   init,
						Cond:   cond,
						Update: update,
						Body:   body,
					}))
				})
			})
		})
	})
}

func stepIntAssign(p *LL1Parser) {
	nameTok, ok := p.expect(token.ID_SY)
	if !ok {
		return
	}
	name := &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
	if _, ok := p.expect(token.EQUAL_OP); !ok {
		return
	}
	p.push(stepOr, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		value, _ := p.popValue().(ast.Expression)
		p.pushValue(&ast.Assignment{Base: ast.Base{Span: joinSpan(spanOf(nameTok), nodeSpan(value))}, Assignee: name, Value: value})
	})
}

// ----------------------------------------------------------------------------
// Top level: Source, Function, Program

func stepFunction(p *LL1Parser) {
	startTok, ok := p.expect(token.FUNC_KW)
	if !ok {
		return
	}
	p.push(stepReturnType, func(p *LL1Parser) {
		if p.failed() {
			return
		}
		rt, _ := p.popValue().(*ast.ReturnType)
		nameTok, ok := p.expect(token.ID_SY)
		if !ok {
			return
		}
		name := &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
		if _, ok := p.expect(token.HAS_KW); !ok {
			return
		}
		p.push(varDefStarStep(), func(p *LL1Parser) {
			if p.failed() {
				return
			}
			params, _ := p.popValue().([]*ast.VariableDefinition)
			if _, ok := p.expect(token.BEGIN_KW); !ok {
				return
			}
			p.push(stmtBlockStep(isEndKind), func(p *LL1Parser) {
				if p.failed() {
					return
				}
				body, _ := p.popValue().([]ast.Statement)
				if _, ok := p.expect(token.END_KW); !ok {
					return
				}
				endTok, ok := p.expect(token.FUNC_KW)
				if !ok {
					return
				}
				p.pushValue(&ast.Function{
					Base:       ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
					Name:       name,
					ReturnType: rt,
					Parameters: params,
					Body:       body,
				})
			})
		})
	})
}

func stepProgram(p *LL1Parser) {
	startTok, ok := p.expect(token.PROGRAM_KW)
	if !ok {
		return
	}
	nameTok, ok := p.expect(token.ID_SY)
	if !ok {
		return
	}
	name := &ast.Identifier{Base: ast.Base{Span: spanOf(nameTok)}, Name: nameTok.Value}
	if _, ok := p.expect(token.IS_KW); !ok {
		return
	}
	p.push(varDefStarStep(), func(p *LL1Parser) {
		if p.failed() {
			return
		}
		globals, _ := p.popValue().([]*ast.VariableDefinition)
		if _, ok := p.expect(token.BEGIN_KW); !ok {
			return
		}
		p.push(stmtBlockStep(isEndKind), func(p *LL1Parser) {
			if p.failed() {
				return
			}
			body, _ := p.popValue().([]ast.Statement)
			endTok, ok := p.expect(token.END_KW)
			if !ok {
				return
			}
			p.pushValue(&ast.Program{
				Base:    ast.Base{Span: joinSpan(spanOf(startTok), spanOf(endTok))},
				Name:    name,
				Globals: globals,
				Body:    body,
			})
		})
	})
}

func stepSource(p *LL1Parser) {
	start := p.ts.Current()
	var fns []*ast.Function
	var driver step
	driver = func(p *LL1Parser) {
		if p.failed() {
			return
		}
		if p.ts.Current().Kind != token.FUNC_KW {
			p.push(stepProgram, func(p *LL1Parser) {
				if p.failed() {
					return
				}
				prog, _ := p.popValue().(*ast.Program)
				p.pushValue(&ast.Source{
					Base:      ast.Base{Span: joinSpan(spanOf(start), nodeSpan(prog))},
					Program:   prog,
					Functions: fns,
				})
			})
			return
		}
		p.push(stepFunction, func(p *LL1Parser) {
			if p.failed() {
				return
			}
			fn, _ := p.popValue().(*ast.Function)
			fns = append(fns, fn)
		}, driver)
	}
	driver(p)
}
