package formula

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	ref := decimal.RequireFromString("36.50")

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"bare ref", "REF", "36.5"},
		{"lowercase ref", "ref", "36.5"},
		{"literal", "42", "42"},
		{"decimal literal", "0.95", "0.95"},
		{"markup", "REF * 1.05", "38.325"},
		{"discount", "REF * 0.97", "35.405"},
		{"spread", "REF - 0.50", "36"},
		{"precedence", "2 + 3 * 4", "14"},
		{"parens", "(2 + 3) * 4", "20"},
		{"unary minus", "-REF + 40", "3.5"},
		{"double unary", "--5", "5"},
		{"division", "REF / 2", "18.25"},
		{"nested", "((REF - 1) * 1.02) + 0.10", "36.31"},
		{"no spaces", "REF*1.05-0.25", "38.075"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.expr, ref)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	ref := decimal.New(10, 0)

	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"unknown identifier", "RATE * 2"},
		{"function call", "abs(REF)"},
		{"division by zero", "REF / 0"},
		{"division by zero expr", "1 / (5 - 5)"},
		{"unbalanced parens", "(REF * 2"},
		{"trailing operator", "REF +"},
		{"double dot", "1.2.3"},
		{"lone dot", "."},
		{"adjacent numbers", "1 2"},
		{"forbidden character", "REF ^ 2"},
		{"statement injection", "REF; drop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.expr, ref)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("REF * 1.05"))
	assert.Error(t, Validate("REF *"))
}
