// Package catalog implements the cross-region price normalization and
// search engine: given per-region price records in mixed currencies it
// picks one canonical price per game in the reference currency and
// supports name/tag/price-range filtering with deterministic ordering.
//
// The package is pure and stateless; every search is a fresh computation
// over a snapshot read from the injected Store.
package catalog

import "context"

// Game is a catalog entry. ID is the storefront app id, used verbatim as
// the public identifier.
type Game struct {
	ID    int64
	Title string
	Free  bool
}

// PriceRow is one per-region price observation for a game. Price is nil
// when no price was recorded for that region.
type PriceRow struct {
	Region string
	Price  *float64
}

// Result is one search result row. The canonical reference price used for
// filtering and ordering is not part of the returned shape.
type Result struct {
	AppID  int64  `json:"appid"`
	Title  string `json:"title"`
	Price  string `json:"price"`
	Region string `json:"region"`
}

// Store is the read-only catalog storage the engine runs against.
type Store interface {
	// GameIDsByTag returns the distinct ids of games having at least one
	// tag whose name matches any of the LIKE patterns.
	GameIDsByTag(ctx context.Context, patterns []string) ([]int64, error)

	// FindGames returns games whose title contains nameSubstring
	// (case-insensitive; empty matches all), restricted to ids when ids is
	// non-nil.
	FindGames(ctx context.Context, nameSubstring string, ids []int64) ([]Game, error)

	// PriceRecords returns the current price rows for each of the given
	// games. A game absent from the map has no recorded observations.
	PriceRecords(ctx context.Context, gameIDs []int64) (map[int64][]PriceRow, error)

	// AllTitles returns all game titles in ascending order.
	AllTitles(ctx context.Context) ([]string, error)

	// AllTagNames returns all distinct tag names in ascending order.
	AllTagNames(ctx context.Context) ([]string, error)
}
