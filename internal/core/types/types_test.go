package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"number", `12.5`, "12.5"},
		{"string", `"12.5"`, "12.5"},
		{"integer string", `"40"`, "40"},
		{"empty string", `""`, "0"},
		{"null", `null`, "0"},
		{"garbage", `"n/a"`, "0"},
		{"negative", `-3.25`, "-3.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decimal
			require.NoError(t, json.Unmarshal([]byte(tt.in), &d))
			assert.True(t, d.Decimal.Equal(MustMoney(tt.want)),
				"got %s, want %s", d.Decimal, tt.want)
		})
	}
}

func TestDecimal_MarshalJSON(t *testing.T) {
	d := NewDecimal(MustMoney("8.73"))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "8.73", string(out))
}

func TestRoundRupee(t *testing.T) {
	assert.True(t, RoundRupee(MustMoney("10.50")).Equal(decimal.NewFromInt(11)))
	assert.True(t, RoundRupee(MustMoney("10.49")).Equal(decimal.NewFromInt(10)))
	assert.True(t, RoundRupee(MustMoney("-2.5")).Equal(decimal.NewFromInt(-3)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-14")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-14", d.String())

	d, err = ParseDate("2025-06-14T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-14", d.String())

	_, err = ParseDate("14/06/2025")
	assert.Error(t, err)
}

func TestParseShift(t *testing.T) {
	for in, want := range map[string]Shift{
		"AM": ShiftAM, "pm": ShiftPM, "Morning": ShiftAM, "Evening": ShiftPM,
	} {
		got, err := ParseShift(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseShift("noon")
	assert.Error(t, err)
}

func TestDateShift_Compare(t *testing.T) {
	day := MustDate("2025-06-14")
	am := At(day, ShiftAM)
	pm := At(day, ShiftPM)
	next := At(day.AddDays(1), ShiftAM)

	assert.Equal(t, -1, am.Compare(pm))
	assert.Equal(t, 1, pm.Compare(am))
	assert.Equal(t, 0, pm.Compare(pm))
	assert.Equal(t, -1, pm.Compare(next))
}
