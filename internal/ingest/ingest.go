// Package ingest fills the catalog store from the storefront: it
// discovers app ids from the search listing, then fetches metadata and
// per-region prices for each one.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/steamdex/steamdex/internal/config"
	"github.com/steamdex/steamdex/internal/db"
	"github.com/steamdex/steamdex/internal/logging"
	"github.com/steamdex/steamdex/internal/metrics"
	"github.com/steamdex/steamdex/internal/steam"
	"github.com/steamdex/steamdex/internal/tracing"
)

// Storefront is the slice of the steam client the collector needs.
type Storefront interface {
	DiscoverAppIDs(ctx context.Context, maxPages int, pageDelay time.Duration) ([]int64, error)
	AppDetails(ctx context.Context, appID int64, regionCode string) (*steam.AppDetails, error)
}

// Collector walks the storefront and writes games, tags and price
// records into the store.
type Collector struct {
	store      *db.Store
	client     Storefront
	regions    []config.Region
	maxPages   int
	pageDelay  time.Duration
	fetchDelay time.Duration
}

// NewCollector creates a collector for the configured regions.
func NewCollector(store *db.Store, client Storefront, cfg *config.Config) *Collector {
	return &Collector{
		store:      store,
		client:     client,
		regions:    cfg.Regions,
		maxPages:   cfg.Steam.MaxPages,
		pageDelay:  time.Duration(cfg.Steam.PageDelayMS) * time.Millisecond,
		fetchDelay: time.Duration(cfg.Steam.FetchDelayMS) * time.Millisecond,
	}
}

// Run performs one full collection pass. Individual games that fail to
// fetch or parse are logged and skipped; only discovery and storage
// failures abort the run.
func (c *Collector) Run(ctx context.Context) error {
	start := time.Now()
	defer metrics.RecordCollectDuration(start)

	ctx, span := tracing.StartSpan(ctx, "ingest.Run")
	defer span.End()

	for _, region := range c.regions {
		if err := c.store.UpsertRegion(ctx, region.Code, region.Name, region.Currency); err != nil {
			tracing.RecordError(span, err)
			return fmt.Errorf("seed regions: %w", err)
		}
	}

	appIDs, err := c.client.DiscoverAppIDs(ctx, c.maxPages, c.pageDelay)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("discover app ids: %w", err)
	}
	logging.Info("starting collection", "apps", len(appIDs), "regions", len(c.regions))

	var stored, skipped int
	for _, appID := range appIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := c.collectGame(ctx, appID)
		if err != nil {
			tracing.RecordError(span, err)
			return err
		}
		if ok {
			stored++
			metrics.GamesCollected.WithLabelValues("stored").Inc()
		} else {
			skipped++
			metrics.GamesCollected.WithLabelValues("skipped").Inc()
		}
	}

	tracing.AddSpanAttributes(span,
		attribute.Int("collect.stored", stored),
		attribute.Int("collect.skipped", skipped),
	)
	tracing.SetSpanOK(span)
	logging.Info("collection finished", "stored", stored, "skipped", skipped,
		"duration", time.Since(start).Round(time.Millisecond).String())
	return nil
}

// collectGame fetches one app across all regions. The first region that
// answers successfully supplies the game metadata; every successful
// region contributes one price record. Returns false when no region had
// usable data.
func (c *Collector) collectGame(ctx context.Context, appID int64) (bool, error) {
	stored := false

	for _, region := range c.regions {
		details, err := c.client.AppDetails(ctx, appID, region.Code)
		if err != nil {
			logging.Warn("appdetails fetch failed", "app", appID, "region", region.Code, "error", err)
			continue
		}
		if details == nil {
			logging.Debug("no data for region", "app", appID, "region", region.Code)
			continue
		}

		if !stored {
			if details.Name == "" {
				logging.Warn("skipping app without a name", "app", appID)
				return false, nil
			}
			if err := c.storeGame(ctx, appID, details); err != nil {
				return false, err
			}
			stored = true
		}

		if err := c.storePrice(ctx, appID, region.Code, details); err != nil {
			return false, err
		}

		if c.fetchDelay > 0 {
			select {
			case <-ctx.Done():
				return stored, ctx.Err()
			case <-time.After(c.fetchDelay):
			}
		}
	}

	return stored, nil
}

func (c *Collector) storeGame(ctx context.Context, appID int64, details *steam.AppDetails) error {
	title, edition := splitTitle(details.Name)

	err := c.store.UpsertGame(ctx, db.GameRecord{
		ID:          appID,
		Title:       title,
		Edition:     edition,
		Free:        details.IsFree,
		RequiredAge: int(details.RequiredAge.Int64()),
		ReleaseDate: details.ReleaseDate.Date,
		Languages:   details.SupportedLanguages,
	})
	if err != nil {
		return fmt.Errorf("store game %d: %w", appID, err)
	}

	for _, name := range details.Developers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		devID, err := c.store.UpsertDeveloper(ctx, name)
		if err != nil {
			return fmt.Errorf("store developer for game %d: %w", appID, err)
		}
		if err := c.store.LinkGameDeveloper(ctx, appID, devID); err != nil {
			return err
		}
	}

	for _, name := range details.Publishers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		pubID, err := c.store.UpsertPublisher(ctx, name)
		if err != nil {
			return fmt.Errorf("store publisher for game %d: %w", appID, err)
		}
		if err := c.store.LinkGamePublisher(ctx, appID, pubID); err != nil {
			return err
		}
	}

	// Genres and categories share one tag namespace; relevance records
	// the order they arrived in.
	relevance := 1
	for _, g := range details.Genres {
		if err := c.storeTag(ctx, appID, g, "Genre", relevance); err != nil {
			return err
		}
		relevance++
	}
	for _, cat := range details.Categories {
		if err := c.storeTag(ctx, appID, cat, "Feature", relevance); err != nil {
			return err
		}
		relevance++
	}

	return nil
}

func (c *Collector) storeTag(ctx context.Context, appID int64, tag steam.TagInfo, category string, relevance int) error {
	if tag.Description == "" {
		return nil
	}
	if err := c.store.UpsertTag(ctx, tag.ID.Int64(), tag.Description, category); err != nil {
		return fmt.Errorf("store tag for game %d: %w", appID, err)
	}
	if err := c.store.LinkGameTag(ctx, appID, tag.ID.Int64(), relevance); err != nil {
		return fmt.Errorf("link tag for game %d: %w", appID, err)
	}
	return nil
}

// storePrice writes one price record. A missing price overview means the
// game is free or unpriced in that region; it is recorded as zero so the
// search engine can infer the free state.
func (c *Collector) storePrice(ctx context.Context, appID int64, regionCode string, details *steam.AppDetails) error {
	rec := db.PriceRecord{GameID: appID, Region: regionCode}

	if p := details.PriceOverview; p != nil {
		initial := p.InitialMajor()
		final := p.FinalMajor()
		rec.Original = &initial
		rec.Final = &final
		rec.Discount = p.DiscountPercent
	} else {
		zero := 0.0
		rec.Original = &zero
		rec.Final = &zero
	}

	if err := c.store.InsertPriceRecord(ctx, rec); err != nil {
		return fmt.Errorf("store price for game %d region %s: %w", appID, regionCode, err)
	}
	return nil
}

// splitTitle separates a storefront name into main title and edition on
// the first " - " marker.
func splitTitle(full string) (string, string) {
	if idx := strings.Index(full, " - "); idx >= 0 {
		return full[:idx], full[idx+3:]
	}
	return full, ""
}
