package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1815.00", FormatAmount(decimal.RequireFromString("1815")))
	assert.Equal(t, "-$35.50", FormatAmount(decimal.RequireFromString("-35.5")))
	assert.Equal(t, "$0.00", FormatAmount(decimal.Zero))
}
