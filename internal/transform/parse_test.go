package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLocaleFloat(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1.234,56", 1234.56, true},
		{"6.59", 6.59, true},
		{"6", 6.0, true},
		{"5,899", 5.899, true},
		{"1.234.567,8", 1234567.8, true},
		{" 7,10 ", 7.10, true},
		{"-3,5", -3.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{"1,2,3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"0x1p3", 0, false},
		{"0X10", 0, false},
		{"1_000", 0, false},
		{"1_000,5", 0, false},
		{"1e3", 1000, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLocaleFloat(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseDayFirst(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"03/04/2024", time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), true},
		{"3/4/2024", time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), true},
		{"03-04-2024", time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), true},
		{"2024-04-03", time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), true},
		{"25/12/2023 14:30:00", time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC), true},
		{"2024-04-03T10:00:00Z", time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), true},
		{"31/02/2024", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDayFirst(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2024, time.March, 28, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), got)
}
