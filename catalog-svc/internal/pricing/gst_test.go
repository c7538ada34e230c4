package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"hotelmenu/catalog-svc/internal/domain"
)

func TestCalculate_ExclusiveRecomposition(t *testing.T) {
	got := Calculate(CalcInput{Amount: 100, CgstPercentage: 2.5, SgstPercentage: 2.5})

	assert.Equal(t, 100.0, got.BasePrice)
	assert.Equal(t, 2.5, got.CgstAmount)
	assert.Equal(t, 2.5, got.SgstAmount)
	assert.Equal(t, 5.0, got.GstValue)
	assert.Equal(t, 105.0, got.FinalPrice)
	assert.False(t, got.PriceIncludesTax)
}

func TestCalculate_InclusiveDecomposition(t *testing.T) {
	got := Calculate(CalcInput{Amount: 105, CgstPercentage: 2.5, SgstPercentage: 2.5, IncludesTax: true})

	assert.Equal(t, 100.0, got.BasePrice)
	assert.Equal(t, 2.5, got.CgstAmount)
	assert.Equal(t, 2.5, got.SgstAmount)
	assert.Equal(t, 105.0, got.FinalPrice)
	assert.True(t, got.PriceIncludesTax)
}

func TestCalculate_ZeroRateIdentity(t *testing.T) {
	for _, includesTax := range []bool{true, false} {
		got := Calculate(CalcInput{Amount: 149.99, IncludesTax: includesTax})
		assert.Equal(t, 149.99, got.BasePrice)
		assert.Equal(t, 149.99, got.FinalPrice)
		assert.Zero(t, got.CgstAmount)
		assert.Zero(t, got.SgstAmount)
		assert.Zero(t, got.GstValue)
	}
}

func TestCalculate_RoundTripLaw(t *testing.T) {
	amounts := []float64{0, 1, 9.99, 100, 123.45, 999.01, 25000}
	rates := []struct{ c, s float64 }{
		{0, 0}, {2.5, 2.5}, {6, 6}, {9, 9}, {14, 14}, {0.05, 0.05}, {50, 50},
	}

	for _, base := range amounts {
		for _, rate := range rates {
			exclusive := Calculate(CalcInput{Amount: base, CgstPercentage: rate.c, SgstPercentage: rate.s})
			inclusive := Calculate(CalcInput{
				Amount:         exclusive.FinalPrice,
				CgstPercentage: rate.c,
				SgstPercentage: rate.s,
				IncludesTax:    true,
			})
			assert.InDelta(t, base, inclusive.BasePrice, 0.01,
				"base %v rates %v/%v", base, rate.c, rate.s)
		}
	}
}

func TestCalculate_RoundsOnceAtOutput(t *testing.T) {
	got := Calculate(CalcInput{Amount: 99.99, CgstPercentage: 2.5, SgstPercentage: 2.5})

	// 99.99 * 0.025 = 2.49975 -> 2.50 at output, not 2.49 via cumulative steps.
	assert.Equal(t, 2.5, got.CgstAmount)
	assert.Equal(t, 104.99, got.FinalPrice)
}

func TestTaxFree(t *testing.T) {
	got := TaxFree(100, false)

	assert.Equal(t, 100.0, got.BasePrice)
	assert.Equal(t, 100.0, got.FinalPrice)
	assert.Zero(t, got.CgstAmount)
	assert.Zero(t, got.SgstAmount)
}

func testRates() map[domain.OrderType]domain.GstRate {
	return map[domain.OrderType]domain.GstRate{
		domain.OrderTypeDining:      {CgstPercent: 2.5, SgstPercent: 2.5},
		domain.OrderTypeTakeaway:    {CgstPercent: 6, SgstPercent: 6},
		domain.OrderTypeOnlineOrder: {CgstPercent: 9, SgstPercent: 9},
	}
}

func TestBuildMatrix_DefaultSlot(t *testing.T) {
	def := domain.SourcePrice{Default: 200}
	meta := BuildMatrix(def, testRates(), false)

	assert.Equal(t, def, meta.SourcePrice)
	assert.NotEmpty(t, meta.SourceHash)
	assert.Len(t, meta.Matrix, len(domain.OrderTypes))

	dining := meta.Matrix[domain.OrderTypeDining][domain.DefaultSizeKey]
	assert.Equal(t, 200.0, dining.BasePrice)
	assert.Equal(t, 210.0, dining.FinalPrice)

	online := meta.Matrix[domain.OrderTypeOnlineOrder][domain.DefaultSizeKey]
	assert.Equal(t, 236.0, online.FinalPrice)
}

func TestBuildMatrix_Sizes(t *testing.T) {
	def := domain.SourcePrice{Sizes: map[string]float64{"half": 60, "full": 100}}
	meta := BuildMatrix(def, testRates(), true)

	for _, orderType := range domain.OrderTypes {
		assert.Len(t, meta.Matrix[orderType], 2)
	}

	half := meta.Matrix[domain.OrderTypeDining]["half"]
	assert.Equal(t, 60.0, half.FinalPrice)
	assert.True(t, half.PriceIncludesTax)
}

func TestFromMetadata_MatchesDirectCalculation(t *testing.T) {
	def := domain.SourcePrice{Sizes: map[string]float64{"half": 60, "full": 100}}
	rates := testRates()

	for _, includesTax := range []bool{true, false} {
		meta := BuildMatrix(def, rates, includesTax)

		for _, orderType := range domain.OrderTypes {
			for sizeKey, amount := range def.Sizes {
				fromMatrix := FromMetadata(&meta, orderType, sizeKey)
				assert.NotNil(t, fromMatrix)

				direct := Calculate(CalcInput{
					Amount:         amount,
					CgstPercentage: rates[orderType].CgstPercent,
					SgstPercentage: rates[orderType].SgstPercent,
					IncludesTax:    includesTax,
				})
				assert.InDelta(t, direct.BasePrice, fromMatrix.BasePrice, 0.01)
				assert.InDelta(t, direct.FinalPrice, fromMatrix.FinalPrice, 0.01)
				assert.InDelta(t, direct.GstValue, fromMatrix.GstValue, 0.01)
			}
		}
	}
}

func TestFromMetadata_MissingCombination(t *testing.T) {
	meta := BuildMatrix(domain.SourcePrice{Default: 100}, testRates(), false)

	assert.Nil(t, FromMetadata(nil, domain.OrderTypeDining, ""))
	assert.Nil(t, FromMetadata(&meta, domain.OrderType("delivery"), ""))
	assert.Nil(t, FromMetadata(&meta, domain.OrderTypeDining, "jumbo"))

	// Empty size key resolves to the default slot.
	assert.NotNil(t, FromMetadata(&meta, domain.OrderTypeDining, ""))
}

func TestSourceHash_StableAndSensitive(t *testing.T) {
	def := domain.SourcePrice{Default: 100}
	rates := testRates()

	assert.Equal(t, SourceHash(def, rates, false), SourceHash(def, rates, false))
	assert.NotEqual(t, SourceHash(def, rates, false), SourceHash(def, rates, true))
	assert.NotEqual(t, SourceHash(def, rates, false),
		SourceHash(domain.SourcePrice{Default: 101}, rates, false))
}

func TestSourceAmount(t *testing.T) {
	sized := domain.SourcePrice{Sizes: map[string]float64{"half": 60}}

	amount, ok := SourceAmount(sized, "half")
	assert.True(t, ok)
	assert.Equal(t, 60.0, amount)

	_, ok = SourceAmount(sized, "full")
	assert.False(t, ok)

	amount, ok = SourceAmount(domain.SourcePrice{Default: 100}, "")
	assert.True(t, ok)
	assert.Equal(t, 100.0, amount)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.5, round2(2.49975))
	assert.Equal(t, 0.0, round2(0))
	assert.True(t, math.Abs(round2(1.005)-1.0) <= 0.01)
}
