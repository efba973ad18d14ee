package steam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AppDetails is the subset of the storefront appdetails payload the
// collector consumes.
type AppDetails struct {
	Name               string         `json:"name"`
	IsFree             bool           `json:"is_free"`
	RequiredAge        FlexInt        `json:"required_age"`
	SupportedLanguages string         `json:"supported_languages"`
	ReleaseDate        ReleaseDate    `json:"release_date"`
	Developers         []string       `json:"developers"`
	Publishers         []string       `json:"publishers"`
	Genres             []TagInfo      `json:"genres"`
	Categories         []TagInfo      `json:"categories"`
	PriceOverview      *PriceOverview `json:"price_overview"`
}

// ReleaseDate wraps the storefront's release date object.
type ReleaseDate struct {
	Date string `json:"date"`
}

// TagInfo is a genre or category entry. The storefront sends genre ids
// as strings and category ids as numbers, hence FlexInt.
type TagInfo struct {
	ID          FlexInt `json:"id"`
	Description string  `json:"description"`
}

// PriceOverview carries prices in minor currency units.
type PriceOverview struct {
	Initial         int64 `json:"initial"`
	Final           int64 `json:"final"`
	DiscountPercent int   `json:"discount_percent"`
}

// InitialMajor returns the pre-discount price in major currency units.
func (p *PriceOverview) InitialMajor() float64 {
	return float64(p.Initial) / 100
}

// FinalMajor returns the final price in major currency units.
func (p *PriceOverview) FinalMajor() float64 {
	return float64(p.Final) / 100
}

// FlexInt decodes JSON values that arrive as either a number or a
// numeric string.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse numeric value %q: %w", data, err)
	}
	*f = FlexInt(v)
	return nil
}

// Int64 returns the value as int64.
func (f FlexInt) Int64() int64 {
	return int64(f)
}

type detailEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}
