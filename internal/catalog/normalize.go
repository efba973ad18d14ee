package catalog

import (
	"fmt"
	"math"
	"sort"
)

// Display values for games resolved as free.
const (
	FreeDisplay = "Free"
	FreeRegion  = "—"
)

// Price is the canonical price selected for one game: the reference
// currency value used for filtering/ordering, the string shown to the
// user and the display name of the winning region.
type Price struct {
	Ref     int
	Display string
	Region  string
}

// Normalizer converts a game's per-region price rows into a single
// canonical price in the reference currency. The region and rate tables
// are copied at construction; a Normalizer is immutable and safe for
// concurrent use.
type Normalizer struct {
	refCurrency string
	currencies  map[string]string  // region code -> currency code
	names       map[string]string  // region code -> display name
	rates       map[string]float64 // currency code -> rate into reference
}

// NewNormalizer builds a Normalizer from the fixed region and rate tables.
func NewNormalizer(refCurrency string, currencies, names map[string]string, rates map[string]float64) *Normalizer {
	n := &Normalizer{
		refCurrency: refCurrency,
		currencies:  make(map[string]string, len(currencies)),
		names:       make(map[string]string, len(names)),
		rates:       make(map[string]float64, len(rates)),
	}
	for k, v := range currencies {
		n.currencies[k] = v
	}
	for k, v := range names {
		n.names[k] = v
	}
	for k, v := range rates {
		n.rates[k] = v
	}
	return n
}

// ReferenceCurrency returns the currency code canonical prices are
// expressed in.
func (n *Normalizer) ReferenceCurrency() string {
	return n.refCurrency
}

type candidate struct {
	ref      int
	native   float64
	region   string
	currency string
}

// Normalize computes the canonical price for one game from its price rows
// and free flag. It returns false when the game has to be excluded from
// results entirely: no positive price, no zero-price evidence and no free
// flag.
//
// Rows with a nil price are skipped and rows with a zero or negative
// price count as evidence of a free offering; this is a deliberate
// best-effort policy for malformed storefront data, not an error path.
func (n *Normalizer) Normalize(rows []PriceRow, free bool) (Price, bool) {
	var candidates []candidate
	hasZero := false

	for _, row := range rows {
		if row.Price == nil {
			continue
		}
		p := *row.Price
		if p <= 0 {
			hasZero = true
			continue
		}
		currency, ref := n.convert(row.Region, p)
		candidates = append(candidates, candidate{
			ref:      ref,
			native:   p,
			region:   row.Region,
			currency: currency,
		})
	}

	if len(candidates) > 0 {
		// Smallest reference price wins. Ties go to the lexicographically
		// first region code, then the smallest native price: native
		// amounts in different currencies are not comparable, so the
		// region decides first and the native price only orders repeated
		// observations within one region. The winner is always a single
		// deterministic row.
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if a.ref != b.ref {
				return a.ref < b.ref
			}
			if a.region != b.region {
				return a.region < b.region
			}
			return a.native < b.native
		})
		win := candidates[0]

		label, ok := n.names[win.region]
		if !ok || label == "" {
			label = win.region
		}

		return Price{Ref: win.ref, Display: n.format(win), Region: label}, true
	}

	// A zero-price observation or the storefront's free flag both mark
	// the game as free; games with neither contribute no row at all.
	if hasZero || free {
		return Price{Ref: 0, Display: FreeDisplay, Region: FreeRegion}, true
	}

	return Price{}, false
}

// convert turns a native price into its reference currency value.
// Rounding is half-away-from-zero (math.Round), applied uniformly.
// Unknown regions are assumed to already quote the reference currency and
// unknown currencies default to a rate of 1.0.
func (n *Normalizer) convert(region string, price float64) (string, int) {
	currency, ok := n.currencies[region]
	if !ok {
		currency = n.refCurrency
	}
	rate, ok := n.rates[currency]
	if !ok {
		rate = 1.0
	}
	return currency, int(math.Round(price * rate))
}

func (n *Normalizer) format(win candidate) string {
	native := int(math.Round(win.native))
	if win.currency == n.refCurrency {
		return fmt.Sprintf("%d %s", native, n.refCurrency)
	}
	return fmt.Sprintf("%d %s (≈ %d %s)", native, win.currency, win.ref, n.refCurrency)
}
