package bill_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/payday/internal/bill"
)

func TestParseCSV(t *testing.T) {
	input := "name;expected_amount;paying_account_id;due_day\n" +
		"HOA dues;35.00;2;1\n" +
		"Electricity; 1,200.50 ;3;\n"

	got, err := bill.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "HOA dues", got[0].Name)
	assert.Equal(t, "35.00", got[0].ExpectedAmount.StringFixed(2))
	assert.Equal(t, int64(2), got[0].PayingAccountID)
	require.NotNil(t, got[0].DueDay)
	assert.Equal(t, 1, *got[0].DueDay)

	assert.Equal(t, "1200.50", got[1].ExpectedAmount.StringFixed(2))
	assert.Nil(t, got[1].DueDay)
}

func TestParseCSV_ColumnOrderIsFree(t *testing.T) {
	input := "paying_account_id;name;expected_amount\n4;Groceries;80\n"

	got, err := bill.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Groceries", got[0].Name)
	assert.Equal(t, int64(4), got[0].PayingAccountID)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "Empty", input: "", wantMsg: "empty file"},
		{name: "MissingColumn", input: "name;expected_amount\nHOA;35\n", wantMsg: `missing column "paying_account_id"`},
		{name: "HeaderOnly", input: "name;expected_amount;paying_account_id\n", wantMsg: "no bills"},
		{name: "BadAmount", input: "name;expected_amount;paying_account_id\nHOA;abc;2\n", wantMsg: "row 2"},
		{name: "ZeroAmount", input: "name;expected_amount;paying_account_id\nHOA;0;2\n", wantMsg: "row 2"},
		{name: "BadAccount", input: "name;expected_amount;paying_account_id\nHOA;35;main\n", wantMsg: "paying account id"},
		{name: "BadDueDay", input: "name;expected_amount;paying_account_id;due_day\nHOA;35;2;first\n", wantMsg: "due day"},
		{name: "MissingName", input: "name;expected_amount;paying_account_id\n;35;2\n", wantMsg: "missing name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bill.ParseCSV(strings.NewReader(tt.input))

			require.Error(t, err)
			assert.ErrorIs(t, err, bill.ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
