package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/steamdex/steamdex/internal/tracing"
)

// ErrInvalidRange marks user-facing price range validation failures.
// Callers should surface the message instead of running the search.
var ErrInvalidRange = errors.New("invalid price range")

// Params are the four free-form search inputs. MinPrice defaults to 0; a
// nil MaxPrice means unbounded. Both bounds are inclusive and expressed
// in the reference currency.
type Params struct {
	Name     string
	Tags     string
	MinPrice int
	MaxPrice *int
}

func (p Params) validate() error {
	if p.MinPrice < 0 {
		return fmt.Errorf("%w: minimum price must be zero or positive", ErrInvalidRange)
	}
	if p.MaxPrice != nil && *p.MaxPrice < 0 {
		return fmt.Errorf("%w: maximum price must be zero or positive", ErrInvalidRange)
	}
	if p.MaxPrice != nil && p.MinPrice > *p.MaxPrice {
		return fmt.Errorf("%w: minimum price cannot exceed maximum price", ErrInvalidRange)
	}
	return nil
}

// ParsePriceBound parses a free-form price field into an optional bound.
// Empty input means "not supplied"; anything else must be an integer.
func ParsePriceBound(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: price must be a whole number", ErrInvalidRange)
	}
	return &v, nil
}

// Engine orchestrates the tag resolver, the store and the price
// normalizer into one search call. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	store Store
	norm  *Normalizer
}

// NewEngine creates a search engine over the given store and normalizer.
func NewEngine(store Store, norm *Normalizer) *Engine {
	return &Engine{store: store, norm: norm}
}

// Normalizer returns the engine's price normalizer.
func (e *Engine) Normalizer() *Normalizer {
	return e.norm
}

type scoredResult struct {
	Result
	ref int
}

// Search runs one catalog search. The result list is ordered by ascending
// canonical price, then case-insensitive title, then app id; calling it
// twice over the same snapshot yields identical output.
func (e *Engine) Search(ctx context.Context, params Params) ([]Result, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Search",
		tracing.WithAttributes(
			attribute.String("search.name", params.Name),
			attribute.String("search.tags", params.Tags),
		),
	)
	defer span.End()

	if err := params.validate(); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// Resolve the tag filter first: a tag phrase that matches nothing
	// excludes everything, regardless of the other filters.
	var ids []int64
	phrase := ParseTagPhrase(params.Tags)
	if !phrase.Empty() {
		if len(phrase.Terms()) == 0 {
			return []Result{}, nil
		}
		var err error
		ids, err = e.store.GameIDsByTag(ctx, phrase.LikePatterns())
		if err != nil {
			tracing.RecordError(span, err)
			return nil, fmt.Errorf("resolve tag filter: %w", err)
		}
		if len(ids) == 0 {
			return []Result{}, nil
		}
	}

	games, err := e.store.FindGames(ctx, params.Name, ids)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("find games: %w", err)
	}
	if len(games) == 0 {
		return []Result{}, nil
	}

	gameIDs := make([]int64, len(games))
	for i, g := range games {
		gameIDs[i] = g.ID
	}

	prices, err := e.store.PriceRecords(ctx, gameIDs)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("fetch price records: %w", err)
	}

	scored := make([]scoredResult, 0, len(games))
	for _, g := range games {
		price, ok := e.norm.Normalize(prices[g.ID], g.Free)
		if !ok {
			continue
		}
		if price.Ref < params.MinPrice {
			continue
		}
		if params.MaxPrice != nil && price.Ref > *params.MaxPrice {
			continue
		}
		scored = append(scored, scoredResult{
			Result: Result{AppID: g.ID, Title: g.Title, Price: price.Display, Region: price.Region},
			ref:    price.Ref,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.ref != b.ref {
			return a.ref < b.ref
		}
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			return at < bt
		}
		return a.AppID < b.AppID
	})

	results := make([]Result, len(scored))
	for i, s := range scored {
		results[i] = s.Result
	}

	tracing.AddSpanAttributes(span, attribute.Int("search.results", len(results)))
	tracing.SetSpanOK(span)
	return results, nil
}
