package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"its-hmny.dev/robinc/pkg/symbol"
)

func TestAssign(t *testing.T) {
	cases := []struct {
		name     string
		l, r     symbol.PrimType
		dl, dr   int
		expected symbol.PrimType
	}{
		{"same dim integer", symbol.Integer, symbol.Integer, 0, 0, symbol.Integer},
		{"integer to float promotes", symbol.Integer, symbol.Float, 0, 0, symbol.Float},
		{"float stays float", symbol.Float, symbol.Integer, 0, 0, symbol.Float},
		{"dim mismatch rejected", symbol.Integer, symbol.Integer, 1, 2, symbol.Undefined},
		{"string to string", symbol.String, symbol.String, 0, 0, symbol.String},
		{"string to integer rejected", symbol.String, symbol.Integer, 0, 0, symbol.Undefined},
		{"boolean to boolean", symbol.Boolean, symbol.Boolean, 0, 0, symbol.Boolean},
		{"boolean to integer rejected", symbol.Boolean, symbol.Integer, 0, 0, symbol.Undefined},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, Assign(c.l, c.r, c.dl, c.dr))
		})
	}
}

func TestOrAnd(t *testing.T) {
	assert.Equal(t, symbol.Boolean, OrAnd(symbol.Boolean, symbol.Boolean))
	assert.Equal(t, symbol.Undefined, OrAnd(symbol.Boolean, symbol.Integer))
	assert.Equal(t, symbol.Undefined, OrAnd(symbol.Integer, symbol.Integer))
}

func TestEquality(t *testing.T) {
	assert.Equal(t, symbol.Boolean, Equality(symbol.Boolean, symbol.Boolean))
	assert.Equal(t, symbol.Boolean, Equality(symbol.String, symbol.String))
	assert.Equal(t, symbol.Boolean, Equality(symbol.Integer, symbol.Float))
	assert.Equal(t, symbol.Undefined, Equality(symbol.String, symbol.Boolean))
	assert.Equal(t, symbol.Undefined, Equality(symbol.Integer, symbol.String))
}

func TestRelational(t *testing.T) {
	assert.Equal(t, symbol.Boolean, Relational(symbol.Integer, symbol.Float))
	assert.Equal(t, symbol.Undefined, Relational(symbol.String, symbol.String))
}

func TestAdditive(t *testing.T) {
	assert.Equal(t, symbol.String, Additive(symbol.String, symbol.String, "+"))
	assert.Equal(t, symbol.Undefined, Additive(symbol.String, symbol.String, "-"))
	assert.Equal(t, symbol.Integer, Additive(symbol.Integer, symbol.Integer, "+"))
	assert.Equal(t, symbol.Float, Additive(symbol.Integer, symbol.Float, "+"))
}

func TestMultiplicative(t *testing.T) {
	assert.Equal(t, symbol.Integer, Multiplicative(symbol.Integer, symbol.Integer, "%"))
	assert.Equal(t, symbol.Undefined, Multiplicative(symbol.Float, symbol.Integer, "%"))
	assert.Equal(t, symbol.Float, Multiplicative(symbol.Float, symbol.Integer, "*"))
}

func TestUnary(t *testing.T) {
	assert.Equal(t, symbol.Integer, Unary(symbol.Integer, "-", 0))
	assert.Equal(t, symbol.Undefined, Unary(symbol.String, "-", 0))
	assert.Equal(t, symbol.Boolean, Unary(symbol.Boolean, "not", 0))
	assert.Equal(t, symbol.String, Unary(symbol.Integer, "$", 0))
	assert.Equal(t, symbol.Boolean, Unary(symbol.Integer, "?", 0))
	assert.Equal(t, symbol.Integer, Unary(symbol.Boolean, "@", 0))
	assert.Equal(t, symbol.Integer, Unary(symbol.Integer, "#", 2))
	assert.Equal(t, symbol.Integer, Unary(symbol.String, "#", 0))
	assert.Equal(t, symbol.Undefined, Unary(symbol.Integer, "#", 0))
}
