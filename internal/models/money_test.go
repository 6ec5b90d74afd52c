package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr error
	}{
		{"12", 1200, nil},
		{"12.5", 1250, nil},
		{"12.50", 1250, nil},
		{"12,50", 1250, nil},
		{" 0.01 ", 1, nil},
		{"10.005", 1001, nil},
		{"10.004", 1000, nil},
		{"99999999.99", MaxMoney, nil},
		{"100000000", 0, ErrAmountTooLarge},
		{"0", 0, ErrInvalidAmount},
		{"0.001", 0, ErrInvalidAmount},
		{"-5", 0, ErrInvalidAmount},
		{"", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1.2.3", 0, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "1234.50", Money(123450).String())
	assert.Equal(t, "-3.10", Money(-310).String())
}

func TestMoneyPercent(t *testing.T) {
	assert.InDelta(t, 25.0, Money(250).Percent(1000), 1e-9)
	assert.InDelta(t, 100.0/3, Money(100).Percent(300), 1e-9)
	assert.Zero(t, Money(100).Percent(0))
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
	}{A: 1999})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"19.99"}`, string(b))

	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"19.99","b":7.5,"c":"-2.00"}`), &v))
	assert.Equal(t, Money(1999), v.A)
	assert.Equal(t, Money(750), v.B)
	assert.Equal(t, Money(-200), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024-13-01", "2023-02-29", "01/02/2024", "2024-1-1", "yesterday"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestMonthRange(t *testing.T) {
	r := MonthRange(2024, time.December)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), r.To)
	assert.False(t, r.IsZero())
	assert.True(t, DateRange{}.IsZero())
}
