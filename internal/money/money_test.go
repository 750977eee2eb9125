package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/payday/internal/money"
)

func TestParseAmount(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Integer", input: "3000", want: "3000"},
		{name: "TwoDecimals", input: "3000.00", want: "3000"},
		{name: "Cents", input: "0.01", want: "0.01"},
		{name: "ThousandsSeparator", input: "1,234.56", want: "1234.56"},
		{name: "DollarSign", input: " $50.00 ", want: "50"},
		{name: "Empty", input: "", wantErr: true},
		{name: "Whitespace", input: "   ", wantErr: true},
		{name: "Zero", input: "0", wantErr: true},
		{name: "Negative", input: "-10.00", wantErr: true},
		{name: "NotANumber", input: "abc", wantErr: true},
		{name: "NaN", input: "NaN", wantErr: true},
		{name: "Infinity", input: "Inf", wantErr: true},
		{name: "TooPrecise", input: "10.005", wantErr: true},
		{name: "DecimalComma", input: "12,50", wantErr: true},
		{name: "ShortGroups", input: "1,2,3", wantErr: true},
		{name: "LeadingComma", input: ",100", wantErr: true},
		{name: "ManyGroups", input: "1,234,567.89", want: "1234567.89"},
		{name: "Exponent", input: "1e20", wantErr: true},
		{name: "Max", input: "999999999999.99", want: "999999999999.99"},
		{name: "Overflow", input: "1000000000000", wantErr: true},
		{name: "HugeFraction", input: "99999999999999999999.99", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.ParseAmount(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrInvalidAmount)
				return
			}

			assert.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseBalance_AllowsZeroAndNegative(t *testing.T) {
	got, err := money.ParseBalance("-12.50")
	assert.NoError(t, err)
	assert.Equal(t, "-12.50", money.Format(got))

	got, err = money.ParseBalance("0")
	assert.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, money.ValidateAmount(decimal.RequireFromString("35.00")))
	assert.ErrorIs(t, money.ValidateAmount(decimal.Zero), money.ErrInvalidAmount)
	assert.ErrorIs(t, money.ValidateAmount(decimal.RequireFromString("1.001")), money.ErrInvalidAmount)
	assert.ErrorIs(t, money.ValidateAmount(decimal.RequireFromString("1e20")), money.ErrInvalidAmount)
	assert.NoError(t, money.ValidateAmount(money.MaxAmount))
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, money.CheckRange(money.MaxAmount.Neg()))
	assert.ErrorIs(t, money.CheckRange(money.MaxAmount.Add(decimal.RequireFromString("0.01"))), money.ErrInvalidAmount)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1815.00", money.Format(decimal.NewFromInt(1815)))
	assert.Equal(t, "-35.00", money.Format(decimal.RequireFromString("-35")))
}
