package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steamdex/steamdex/internal/config"
	"github.com/steamdex/steamdex/internal/db"
	"github.com/steamdex/steamdex/internal/steam"
)

// fakeStorefront serves canned app details keyed by app id and region.
type fakeStorefront struct {
	appIDs  []int64
	details map[int64]map[string]*steam.AppDetails
	errs    map[string]error
	fetches []string
}

func (f *fakeStorefront) DiscoverAppIDs(_ context.Context, _ int, _ time.Duration) ([]int64, error) {
	return f.appIDs, nil
}

func (f *fakeStorefront) AppDetails(_ context.Context, appID int64, region string) (*steam.AppDetails, error) {
	key := region
	f.fetches = append(f.fetches, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	byRegion, ok := f.details[appID]
	if !ok {
		return nil, nil
	}
	return byRegion[region], nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Regions = []config.Region{
		{Code: "tw", Name: "Taiwan", Currency: "TWD"},
		{Code: "us", Name: "United States", Currency: "USD"},
	}
	cfg.Steam.FetchDelayMS = 0
	cfg.Steam.PageDelayMS = 0
	return cfg
}

func openIngestDB(t *testing.T) (*db.DB, *db.Store) {
	t.Helper()
	ctx := context.Background()
	handle, err := db.Open(ctx, filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })
	return handle, db.NewStore(handle)
}

func priced(name string, finalMinor int64) *steam.AppDetails {
	return &steam.AppDetails{
		Name: name,
		PriceOverview: &steam.PriceOverview{
			Initial: finalMinor,
			Final:   finalMinor,
		},
	}
}

func TestCollectorRun_StoresGamesAndPrices(t *testing.T) {
	ctx := context.Background()
	_, store := openIngestDB(t)

	front := &fakeStorefront{
		appIDs: []int64{100},
		details: map[int64]map[string]*steam.AppDetails{
			100: {
				"tw": priced("Alpha", 30000),
				"us": priced("Alpha", 999),
			},
		},
	}

	c := NewCollector(store, front, testConfig())
	require.NoError(t, c.Run(ctx))

	games, err := store.FindGames(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Alpha", games[0].Title)
	assert.False(t, games[0].Free)

	prices, err := store.PriceRecords(ctx, []int64{100})
	require.NoError(t, err)
	require.Len(t, prices[100], 2)
	byRegion := map[string]float64{}
	for _, row := range prices[100] {
		require.NotNil(t, row.Price)
		byRegion[row.Region] = *row.Price
	}
	assert.Equal(t, 300.0, byRegion["tw"])
	assert.InDelta(t, 9.99, byRegion["us"], 0.001)
}

func TestCollectorRun_FirstRegionMetadataWins(t *testing.T) {
	ctx := context.Background()
	_, store := openIngestDB(t)

	tw := priced("Alpha", 30000)
	tw.Developers = []string{"Studio One"}
	us := priced("Alpha Remastered", 999)
	us.Developers = []string{"Studio Two"}

	front := &fakeStorefront{
		appIDs: []int64{100},
		details: map[int64]map[string]*steam.AppDetails{
			100: {"tw": tw, "us": us},
		},
	}

	c := NewCollector(store, front, testConfig())
	require.NoError(t, c.Run(ctx))

	games, err := store.FindGames(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Alpha", games[0].Title)
}

func TestCollectorRun_RegionFailureSkipped(t *testing.T) {
	ctx := context.Background()
	_, store := openIngestDB(t)

	front := &fakeStorefront{
		appIDs: []int64{100},
		details: map[int64]map[string]*steam.AppDetails{
			100: {"us": priced("Alpha", 999)},
		},
		errs: map[string]error{"tw": errors.New("storefront down")},
	}

	c := NewCollector(store, front, testConfig())
	require.NoError(t, c.Run(ctx))

	games, err := store.FindGames(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, games, 1)

	prices, err := store.PriceRecords(ctx, []int64{100})
	require.NoError(t, err)
	require.Len(t, prices[100], 1)
	assert.Equal(t, "us", prices[100][0].Region)
}

func TestCollectorRun_FreeGameRecordsZeroPrices(t *testing.T) {
	ctx := context.Background()
	_, store := openIngestDB(t)

	details := &steam.AppDetails{Name: "Beta Quest", IsFree: true}
	front := &fakeStorefront{
		appIDs: []int64{200},
		details: map[int64]map[string]*steam.AppDetails{
			200: {"tw": details, "us": details},
		},
	}

	c := NewCollector(store, front, testConfig())
	require.NoError(t, c.Run(ctx))

	games, err := store.FindGames(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.True(t, games[0].Free)

	prices, err := store.PriceRecords(ctx, []int64{200})
	require.NoError(t, err)
	require.Len(t, prices[200], 2)
	for _, row := range prices[200] {
		require.NotNil(t, row.Price)
		assert.Equal(t, 0.0, *row.Price)
	}
}

func TestCollectorRun_NamelessAppSkipped(t *testing.T) {
	ctx := context.Background()
	_, store := openIngestDB(t)

	front := &fakeStorefront{
		appIDs: []int64{300},
		details: map[int64]map[string]*steam.AppDetails{
			300: {"tw": {Name: ""}},
		},
	}

	c := NewCollector(store, front, testConfig())
	require.NoError(t, c.Run(ctx))

	games, err := store.FindGames(ctx, "", nil)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestCollectorRun_TagsLinked(t *testing.T) {
	ctx := context.Background()
	_, store := openIngestDB(t)

	details := priced("Alpha", 30000)
	details.Genres = []steam.TagInfo{{ID: 1, Description: "Action"}}
	details.Categories = []steam.TagInfo{{ID: 2, Description: "Multiplayer"}}

	front := &fakeStorefront{
		appIDs: []int64{100},
		details: map[int64]map[string]*steam.AppDetails{
			100: {"tw": details},
		},
	}

	c := NewCollector(store, front, testConfig())
	require.NoError(t, c.Run(ctx))

	tags, err := store.AllTagNames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Action", "Multiplayer"}, tags)

	ids, err := store.GameIDsByTag(ctx, []string{"%Action%"})
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, ids)
}

func TestSplitTitle(t *testing.T) {
	cases := []struct {
		in, title, edition string
	}{
		{"Alpha", "Alpha", ""},
		{"Alpha - Deluxe Edition", "Alpha", "Deluxe Edition"},
		{"Alpha - Gold - Remaster", "Alpha", "Gold - Remaster"},
	}
	for _, tc := range cases {
		title, edition := splitTitle(tc.in)
		assert.Equal(t, tc.title, title, tc.in)
		assert.Equal(t, tc.edition, edition, tc.in)
	}
}
