package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframe_DateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		tf        Timeframe
		wantStart time.Time
		wantEnd   time.Time
	}{
		{TimeframeThisMonth, day(2024, 3, 1), day(2024, 3, 15)},
		{TimeframeLastMonth, day(2024, 2, 1), day(2024, 2, 29)},
		{TimeframeLast90Days, day(2023, 12, 17), day(2024, 3, 15)},
		{TimeframeThisYear, day(2024, 1, 1), day(2024, 3, 15)},
		{TimeframeAll, time.Time{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			start, end := tt.tf.DateRange(now)

			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := parseRange("2024-01-01", " 2024-01-31 ")
	require.NoError(t, err)
	assert.Equal(t, 31, int(end.Sub(start).Hours()/24)+1)

	_, _, err = parseRange("2024-02-01", "2024-01-01")
	assert.EqualError(t, err, "end date is before start date")

	_, _, err = parseRange("01/02/2024", "2024-01-01")
	assert.Error(t, err)
}
