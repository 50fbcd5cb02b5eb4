package quality

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkbill/internal/core/types"
)

func dec(s string) decimal.Decimal { return types.MustMoney(s) }

func TestDeriveSNF(t *testing.T) {
	// 28/4 + 0.21*6.5 + 0.36 = 7 + 1.365 + 0.36 = 8.725 -> 8.73
	snf, ok := DeriveSNF(dec("6.5"), dec("28"))
	require.True(t, ok)
	assert.True(t, snf.Equal(dec("8.73")), "got %s", snf)
}

func TestDeriveSNF_PartialInput(t *testing.T) {
	tests := []struct {
		name     string
		fat, clr string
	}{
		{"zero fat", "0", "28"},
		{"zero clr", "6.5", "0"},
		{"negative fat", "-1", "28"},
		{"both zero", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := DeriveSNF(dec(tt.fat), dec(tt.clr))
			assert.False(t, ok)
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	avg, ok := WeightedAverage(dec("500"), dec("6.5"), dec("500"), dec("6.3"))
	require.True(t, ok)
	assert.True(t, avg.Equal(dec("6.40")), "got %s", avg)
}

func TestWeightedAverage_Uneven(t *testing.T) {
	// (300*7.0 + 100*6.0) / 400 = 6.75
	avg, ok := WeightedAverage(dec("300"), dec("7.0"), dec("100"), dec("6.0"))
	require.True(t, ok)
	assert.True(t, avg.Equal(dec("6.75")), "got %s", avg)
}

func TestWeightedAverage_ZeroQuantity(t *testing.T) {
	_, ok := WeightedAverage(decimal.Zero, dec("6.5"), decimal.Zero, dec("6.3"))
	assert.False(t, ok)
}

func TestBlend(t *testing.T) {
	front := Reading{QtyKg: dec("500"), Fat: dec("6.5"), CLR: dec("28")}
	back := Reading{QtyKg: dec("500"), Fat: dec("6.3"), CLR: dec("27.6")}

	b := Blend(front, back)

	assert.True(t, b.QtyKg.Equal(dec("1000")))
	assert.True(t, b.Fat.Equal(dec("6.40")), "fat %s", b.Fat)
	assert.True(t, b.CLR.Equal(dec("27.80")), "clr %s", b.CLR)

	wantSNF, ok := DeriveSNF(b.Fat, b.CLR)
	require.True(t, ok)
	assert.True(t, b.SNF.Equal(wantSNF), "snf %s want %s", b.SNF, wantSNF)
}

func TestBlend_EmptyBack(t *testing.T) {
	// Single-compartment tanker: back reading absent.
	front := Reading{QtyKg: dec("800"), Fat: dec("6.2"), CLR: dec("27")}
	b := Blend(front, Reading{})

	assert.True(t, b.QtyKg.Equal(dec("800")))
	assert.True(t, b.Fat.Equal(dec("6.20")), "fat %s", b.Fat)
	assert.True(t, b.CLR.Equal(dec("27.00")), "clr %s", b.CLR)
}

func TestBlend_BothEmpty(t *testing.T) {
	b := Blend(Reading{}, Reading{})
	assert.True(t, b.QtyKg.IsZero())
	assert.True(t, b.Fat.IsZero())
	assert.True(t, b.SNF.IsZero())
}

func TestLitersFromKg(t *testing.T) {
	// 103 / 1.03 = 100
	assert.True(t, LitersFromKg(dec("103")).Equal(dec("100")))
	assert.True(t, LitersFromKg(decimal.Zero).IsZero())
	assert.True(t, LitersFromKg(dec("-5")).IsZero())
}
