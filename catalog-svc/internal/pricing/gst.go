package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"

	"hotelmenu/catalog-svc/internal/domain"
)

// CalcInput is one authored amount plus the rates to apply. IncludesTax says
// whether Amount already contains tax (final price) or not (base price).
type CalcInput struct {
	Amount         float64
	CgstPercentage float64
	SgstPercentage float64
	IncludesTax    bool
}

// Calculate decomposes or recomposes a single price. Monetary outputs are
// rounded to 2 decimals exactly once, at output, so repeated recomputation
// from the same authored amount cannot drift.
func Calculate(in CalcInput) domain.PriceBreakdown {
	totalRate := in.CgstPercentage + in.SgstPercentage

	var base, final float64
	switch {
	case totalRate == 0:
		base, final = in.Amount, in.Amount
	case in.IncludesTax:
		final = in.Amount
		base = in.Amount / (1 + totalRate/100)
	default:
		base = in.Amount
		final = in.Amount * (1 + totalRate/100)
	}

	cgst := base * in.CgstPercentage / 100
	sgst := base * in.SgstPercentage / 100

	return domain.PriceBreakdown{
		BasePrice:        round2(base),
		CgstAmount:       round2(cgst),
		SgstAmount:       round2(sgst),
		GstValue:         round2(cgst + sgst),
		FinalPrice:       round2(final),
		CgstPercentage:   in.CgstPercentage,
		SgstPercentage:   in.SgstPercentage,
		PriceIncludesTax: in.IncludesTax,
	}
}

// TaxFree is the GST-disabled override: zero tax, final equals base. It is a
// display-time view of the authored amount, not a mutation of stored rates.
func TaxFree(amount float64, includesTax bool) domain.PriceBreakdown {
	return Calculate(CalcInput{Amount: amount, IncludesTax: includesTax})
}

// BuildMatrix precomputes a breakdown for every order type and size slot and
// retains the authored source price verbatim. The hash stamps which inputs
// produced the matrix so stale metadata is detectable.
func BuildMatrix(def domain.SourcePrice, rates map[domain.OrderType]domain.GstRate, includesTax bool) domain.PricingMetadata {
	matrix := make(map[domain.OrderType]map[string]domain.PriceBreakdown, len(domain.OrderTypes))
	for _, orderType := range domain.OrderTypes {
		rate := rates[orderType]
		slots := make(map[string]domain.PriceBreakdown)
		for sizeKey, amount := range priceSlots(def) {
			slots[sizeKey] = Calculate(CalcInput{
				Amount:         amount,
				CgstPercentage: rate.CgstPercent,
				SgstPercentage: rate.SgstPercent,
				IncludesTax:    includesTax,
			})
		}
		matrix[orderType] = slots
	}
	return domain.PricingMetadata{
		SourcePrice: def,
		Matrix:      matrix,
		SourceHash:  SourceHash(def, rates, includesTax),
	}
}

// FromMetadata is a pure matrix lookup. It returns nil, never an error, when
// the combination is absent; callers then recompute from the authored price
// via Calculate with numerically identical results.
func FromMetadata(meta *domain.PricingMetadata, orderType domain.OrderType, sizeKey string) *domain.PriceBreakdown {
	if meta == nil {
		return nil
	}
	slots, ok := meta.Matrix[orderType]
	if !ok {
		return nil
	}
	if sizeKey == "" {
		sizeKey = domain.DefaultSizeKey
	}
	breakdown, ok := slots[sizeKey]
	if !ok {
		return nil
	}
	return &breakdown
}

// SourceAmount picks the authored amount for a size slot, or 0 when absent.
func SourceAmount(def domain.SourcePrice, sizeKey string) (float64, bool) {
	amount, ok := priceSlots(def)[normalizeSizeKey(sizeKey)]
	return amount, ok
}

// SourceHash fingerprints the authored price, rates and tax mode. JSON
// marshaling sorts map keys, so the hash is stable for equal inputs.
func SourceHash(def domain.SourcePrice, rates map[domain.OrderType]domain.GstRate, includesTax bool) string {
	payload, _ := json.Marshal(struct {
		Source      domain.SourcePrice                   `json:"source"`
		Rates       map[domain.OrderType]domain.GstRate `json:"rates"`
		IncludesTax bool                                 `json:"includes_tax"`
	}{def, rates, includesTax})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func priceSlots(def domain.SourcePrice) map[string]float64 {
	if len(def.Sizes) > 0 {
		return def.Sizes
	}
	return map[string]float64{domain.DefaultSizeKey: def.Default}
}

func normalizeSizeKey(sizeKey string) string {
	if sizeKey == "" {
		return domain.DefaultSizeKey
	}
	return sizeKey
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
