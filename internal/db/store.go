package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/steamdex/steamdex/internal/catalog"
)

// Store exposes catalog reads and ingestion writes over the database.
// The read side implements catalog.Store.
type Store struct {
	conn *sql.DB
}

// NewStore creates a store over an open database connection.
func NewStore(db *DB) *Store {
	return &Store{conn: db.Conn()}
}

var _ catalog.Store = (*Store)(nil)

// GameIDsByTag returns the distinct ids of games having at least one tag
// whose name LIKE-matches any of the given patterns.
func (s *Store) GameIDsByTag(ctx context.Context, patterns []string) ([]int64, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	where := strings.TrimSuffix(strings.Repeat("t.name LIKE ? OR ", len(patterns)), " OR ")
	args := make([]any, len(patterns))
	for i, p := range patterns {
		args[i] = p
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT gt.game_id
		FROM game_tags gt
		JOIN tags t ON t.id = gt.tag_id
		WHERE %s
		ORDER BY gt.game_id
	`, where)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query game ids by tag: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindGames returns games whose title contains nameSubstring, restricted
// to ids when ids is non-nil. An empty substring matches all titles.
func (s *Store) FindGames(ctx context.Context, nameSubstring string, ids []int64) ([]catalog.Game, error) {
	query := "SELECT id, title, is_free FROM games WHERE 1=1"
	var args []any

	if nameSubstring != "" {
		query += " AND title LIKE ?"
		args = append(args, "%"+nameSubstring+"%")
	}
	if ids != nil {
		if len(ids) == 0 {
			return nil, nil
		}
		query += " AND id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += " ORDER BY id"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var games []catalog.Game
	for rows.Next() {
		var g catalog.Game
		var title sql.NullString
		var isFree int
		if err := rows.Scan(&g.ID, &title, &isFree); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Title = title.String
		g.Free = isFree == 1
		games = append(games, g)
	}
	return games, rows.Err()
}

// PriceRecords returns the price rows currently recorded for each of the
// given games, in insertion order.
func (s *Store) PriceRecords(ctx context.Context, gameIDs []int64) (map[int64][]catalog.PriceRow, error) {
	out := make(map[int64][]catalog.PriceRow)
	if len(gameIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT game_id, region_code, final_price
		FROM price_records
		WHERE game_id IN (` + placeholders(len(gameIDs)) + `)
		ORDER BY id
	`
	args := make([]any, len(gameIDs))
	for i, id := range gameIDs {
		args[i] = id
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query price records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var gameID int64
		var region string
		var price sql.NullFloat64
		if err := rows.Scan(&gameID, &region, &price); err != nil {
			return nil, fmt.Errorf("scan price record: %w", err)
		}
		row := catalog.PriceRow{Region: region}
		if price.Valid {
			v := price.Float64
			row.Price = &v
		}
		out[gameID] = append(out[gameID], row)
	}
	return out, rows.Err()
}

// AllTitles returns all non-empty game titles in ascending order.
func (s *Store) AllTitles(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT title FROM games
		WHERE title IS NOT NULL AND TRIM(title) <> ''
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanStrings(rows)
}

// AllTagNames returns all distinct non-empty tag names in ascending order.
func (s *Store) AllTagNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT DISTINCT name FROM tags
		WHERE name IS NOT NULL AND TRIM(name) <> ''
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query tag names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan string: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
