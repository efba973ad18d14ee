package db

import (
	"context"
	"fmt"
	"time"
)

// GameRecord is a full game row as written by ingestion.
type GameRecord struct {
	ID          int64
	Title       string
	Edition     string
	Free        bool
	RequiredAge int
	ReleaseDate string
	Languages   string
}

// PriceRecord is one per-region price observation as written by ingestion.
// Prices are in the region's native currency major units; nil means no
// price was recorded.
type PriceRecord struct {
	GameID     int64
	Region     string
	Original   *float64
	Final      *float64
	Discount   int
	RecordedAt time.Time
}

// UpsertRegion inserts a region if it is not already present.
func (s *Store) UpsertRegion(ctx context.Context, code, name, currency string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO regions (code, name, currency) VALUES (?, ?, ?)
	`, code, name, currency)
	if err != nil {
		return fmt.Errorf("upsert region %s: %w", code, err)
	}
	return nil
}

// UpsertGame inserts or replaces a game row.
func (s *Store) UpsertGame(ctx context.Context, g GameRecord) error {
	free := 0
	if g.Free {
		free = 1
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO games
		(id, title, edition, is_free, required_age, release_date, languages)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Title, nullable(g.Edition), free, g.RequiredAge, nullable(g.ReleaseDate), nullable(g.Languages))
	if err != nil {
		return fmt.Errorf("upsert game %d: %w", g.ID, err)
	}
	return nil
}

// UpsertTag inserts a tag if it is not already present.
func (s *Store) UpsertTag(ctx context.Context, id int64, name, category string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO tags (id, name, category) VALUES (?, ?, ?)
	`, id, name, category)
	if err != nil {
		return fmt.Errorf("upsert tag %d: %w", id, err)
	}
	return nil
}

// LinkGameTag records that a game carries a tag with the given relevance.
func (s *Store) LinkGameTag(ctx context.Context, gameID, tagID int64, relevance int) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO game_tags (game_id, tag_id, relevance) VALUES (?, ?, ?)
	`, gameID, tagID, relevance)
	if err != nil {
		return fmt.Errorf("link game %d tag %d: %w", gameID, tagID, err)
	}
	return nil
}

// UpsertDeveloper inserts a developer by name and returns its id.
func (s *Store) UpsertDeveloper(ctx context.Context, name string) (int64, error) {
	return s.upsertNamed(ctx, "developers", name)
}

// UpsertPublisher inserts a publisher by name and returns its id.
func (s *Store) UpsertPublisher(ctx context.Context, name string) (int64, error) {
	return s.upsertNamed(ctx, "publishers", name)
}

func (s *Store) upsertNamed(ctx context.Context, table, name string) (int64, error) {
	if _, err := s.conn.ExecContext(ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name) VALUES (?)", table), name); err != nil {
		return 0, fmt.Errorf("upsert into %s: %w", table, err)
	}
	var id int64
	err := s.conn.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE name = ?", table), name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup %s id: %w", table, err)
	}
	return id, nil
}

// LinkGameDeveloper records a developer credit for a game.
func (s *Store) LinkGameDeveloper(ctx context.Context, gameID, developerID int64) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO game_developers (developer_id, game_id) VALUES (?, ?)
	`, developerID, gameID)
	if err != nil {
		return fmt.Errorf("link game %d developer %d: %w", gameID, developerID, err)
	}
	return nil
}

// LinkGamePublisher records a publisher credit for a game.
func (s *Store) LinkGamePublisher(ctx context.Context, gameID, publisherID int64) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO game_publishers (publisher_id, game_id) VALUES (?, ?)
	`, publisherID, gameID)
	if err != nil {
		return fmt.Errorf("link game %d publisher %d: %w", gameID, publisherID, err)
	}
	return nil
}

// InsertPriceRecord appends one price observation.
func (s *Store) InsertPriceRecord(ctx context.Context, rec PriceRecord) error {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO price_records
		(game_id, region_code, original_price, final_price, discount_percent, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.GameID, rec.Region, rec.Original, rec.Final, rec.Discount, recordedAt.Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("insert price record for game %d: %w", rec.GameID, err)
	}
	return nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
