package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Gauges
	GamesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "steamdex_games_total",
		Help: "Total number of games in the catalog.",
	})
	TagsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "steamdex_tags_total",
		Help: "Total number of distinct tags.",
	})
	PriceRecordsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "steamdex_price_records_total",
		Help: "Total number of per-region price records.",
	})
	RegionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "steamdex_regions_total",
		Help: "Total number of configured storefront regions.",
	})

	// Collector Performance
	CollectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "steamdex_collect_duration_seconds",
		Help:    "Duration of catalog collection runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	StorefrontRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steamdex_storefront_requests_total",
		Help: "Total number of storefront API requests.",
	}, []string{"endpoint", "status"}) // status: ok, error, miss

	GamesCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steamdex_games_collected_total",
		Help: "Total number of games processed during collection runs.",
	}, []string{"status"}) // status: stored, skipped

	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steamdex_searches_total",
		Help: "Total number of catalog searches served.",
	}, []string{"status"}) // status: ok, invalid, error
)

// UpdateDBMetrics refreshes gauges that reflect the current state of the database.
func UpdateDBMetrics(db *sql.DB) error {
	var games, tags, prices, regions int

	if err := db.QueryRow("SELECT COUNT(*) FROM games").Scan(&games); err != nil {
		return err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&tags); err != nil {
		return err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM price_records").Scan(&prices); err != nil {
		return err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM regions").Scan(&regions); err != nil {
		return err
	}

	GamesTotal.Set(float64(games))
	TagsTotal.Set(float64(tags))
	PriceRecordsTotal.Set(float64(prices))
	RegionsTotal.Set(float64(regions))

	return nil
}

// RecordCollectDuration records the time taken by a collection run.
func RecordCollectDuration(start time.Time) {
	CollectDuration.Observe(time.Since(start).Seconds())
}
