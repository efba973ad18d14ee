package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(
		"TWD",
		map[string]string{
			"tw": "TWD", "us": "USD", "jp": "JPY", "gb": "GBP",
			"de": "EUR", "br": "BRL", "ru": "RUB",
		},
		map[string]string{
			"tw": "Taiwan", "us": "United States", "jp": "Japan",
		},
		map[string]float64{
			"TWD": 1.0, "USD": 30.0, "JPY": 0.2, "GBP": 38.0,
			"EUR": 33.0, "BRL": 6.0, "RUB": 0.35,
		},
	)
}

func fp(v float64) *float64 { return &v }

func TestNormalize_PicksCheapestReferencePrice(t *testing.T) {
	n := testNormalizer()

	price, ok := n.Normalize([]PriceRow{
		{Region: "us", Price: fp(19.99)}, // 600 TWD
		{Region: "jp", Price: fp(1500)},  // 300 TWD
		{Region: "tw", Price: fp(450)},   // 450 TWD
	}, false)

	require.True(t, ok)
	assert.Equal(t, 300, price.Ref)
	assert.Equal(t, "1500 JPY (≈ 300 TWD)", price.Display)
	assert.Equal(t, "Japan", price.Region)
}

func TestNormalize_ReferenceCurrencyDisplay(t *testing.T) {
	n := testNormalizer()

	price, ok := n.Normalize([]PriceRow{
		{Region: "tw", Price: fp(300)},
	}, false)

	require.True(t, ok)
	assert.Equal(t, 300, price.Ref)
	assert.Equal(t, "300 TWD", price.Display)
	assert.Equal(t, "Taiwan", price.Region)
}

func TestNormalize_TieBreakRegionCode(t *testing.T) {
	n := testNormalizer()

	// 300 TWD and 9.99 USD both land on 300 reference units; region code
	// order picks "tw" before "us".
	price, ok := n.Normalize([]PriceRow{
		{Region: "us", Price: fp(9.99)},
		{Region: "tw", Price: fp(300)},
	}, false)

	require.True(t, ok)
	assert.Equal(t, 300, price.Ref)
	assert.Equal(t, "300 TWD", price.Display)
	assert.Equal(t, "Taiwan", price.Region)
}

func TestNormalize_TieBreakNativeWithinRegion(t *testing.T) {
	n := testNormalizer()

	// Repeated observations for one region that round to the same
	// reference amount: the smaller native price wins.
	price, ok := n.Normalize([]PriceRow{
		{Region: "tw", Price: fp(300.4)},
		{Region: "tw", Price: fp(300)},
	}, false)

	require.True(t, ok)
	assert.Equal(t, 300, price.Ref)
	assert.Equal(t, "300 TWD", price.Display)
}

func TestNormalize_UnknownRegionFallsBackToCode(t *testing.T) {
	n := testNormalizer()

	price, ok := n.Normalize([]PriceRow{
		{Region: "us", Price: fp(10)},
		{Region: "xx", Price: fp(10)}, // unknown region assumed TWD
	}, false)

	require.True(t, ok)
	// 10 USD = 300 ref, 10 assumed-TWD = 10 ref: the unknown region wins.
	assert.Equal(t, 10, price.Ref)
	assert.Equal(t, "xx", price.Region, "unknown region label falls back to the code")
}

func TestNormalize_Rounding(t *testing.T) {
	n := testNormalizer()

	// 9.99 USD * 30 = 299.7 -> 300, half away from zero.
	price, ok := n.Normalize([]PriceRow{{Region: "us", Price: fp(9.99)}}, false)
	require.True(t, ok)
	assert.Equal(t, 300, price.Ref)

	// 1202.5 JPY * 0.2 = 240.5 -> 241.
	price, ok = n.Normalize([]PriceRow{{Region: "jp", Price: fp(1202.5)}}, false)
	require.True(t, ok)
	assert.Equal(t, 241, price.Ref)
}

func TestNormalize_UnknownCurrencyDefaultsToUnitRate(t *testing.T) {
	n := NewNormalizer("TWD",
		map[string]string{"kr": "KRW"}, // KRW has no configured rate
		map[string]string{},
		map[string]float64{"TWD": 1.0},
	)

	price, ok := n.Normalize([]PriceRow{{Region: "kr", Price: fp(12000)}}, false)
	require.True(t, ok)
	assert.Equal(t, 12000, price.Ref, "unknown currency treated as already in reference units")
	assert.Equal(t, "12000 KRW (≈ 12000 TWD)", price.Display)
}

func TestNormalize_FreeFromZeroPrice(t *testing.T) {
	n := testNormalizer()

	// Free inference ignores the flag when a zero observation exists.
	price, ok := n.Normalize([]PriceRow{{Region: "tw", Price: fp(0)}}, false)
	require.True(t, ok)
	assert.Equal(t, Price{Ref: 0, Display: FreeDisplay, Region: FreeRegion}, price)
}

func TestNormalize_FreeFromNegativePrice(t *testing.T) {
	n := testNormalizer()

	price, ok := n.Normalize([]PriceRow{{Region: "tw", Price: fp(-1)}}, false)
	require.True(t, ok)
	assert.Equal(t, 0, price.Ref)
	assert.Equal(t, FreeDisplay, price.Display)
}

func TestNormalize_FreeFromFlag(t *testing.T) {
	n := testNormalizer()

	// Null-only observations plus the free flag resolve to free.
	price, ok := n.Normalize([]PriceRow{{Region: "tw", Price: nil}}, true)
	require.True(t, ok)
	assert.Equal(t, Price{Ref: 0, Display: FreeDisplay, Region: FreeRegion}, price)

	// The flag alone is also enough.
	price, ok = n.Normalize(nil, true)
	require.True(t, ok)
	assert.Equal(t, 0, price.Ref)
}

func TestNormalize_PositivePriceBeatsFreeEvidence(t *testing.T) {
	n := testNormalizer()

	// A positive candidate always wins over zero rows and the flag.
	price, ok := n.Normalize([]PriceRow{
		{Region: "us", Price: fp(0)},
		{Region: "tw", Price: fp(120)},
	}, true)
	require.True(t, ok)
	assert.Equal(t, 120, price.Ref)
	assert.Equal(t, "120 TWD", price.Display)
}

func TestNormalize_Excluded(t *testing.T) {
	n := testNormalizer()

	// No observations, flag unset: invisible to search.
	_, ok := n.Normalize(nil, false)
	assert.False(t, ok)

	// Only null observations, flag unset: still invisible.
	_, ok = n.Normalize([]PriceRow{
		{Region: "tw", Price: nil},
		{Region: "us", Price: nil},
	}, false)
	assert.False(t, ok)
}

func TestNormalizer_CopiesTables(t *testing.T) {
	rates := map[string]float64{"TWD": 1.0, "USD": 30.0}
	n := NewNormalizer("TWD", map[string]string{"us": "USD"}, nil, rates)

	rates["USD"] = 999.0

	price, ok := n.Normalize([]PriceRow{{Region: "us", Price: fp(1)}}, false)
	require.True(t, ok)
	assert.Equal(t, 30, price.Ref, "mutating the caller's map must not affect the normalizer")
}
