package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"sjsage522/dealbite/internal/model"
	"sjsage522/dealbite/logger"
	apperrors "sjsage522/dealbite/pkg/errors"
)

const (
	// DefaultLimit is the number of deals returned when no limit is given
	DefaultLimit = 200
	// MaxLimit caps caller supplied limits
	MaxLimit = 1000
)

// Filter narrows a deal listing. Empty fields match everything.
type Filter struct {
	Market     string
	Restaurant string
	Limit      int
}

// Store persists deals in a SQL table keyed on
// (restaurant, market, title, source_url).
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	log     *logger.Logger
}

// Open connects to the database named by dsn and verifies the connection
func Open(ctx context.Context, dsn string) (*Store, error) {
	dialect := DetectDialect(dsn)

	db, err := sql.Open(dialect.driver(), dsn)
	if err != nil {
		return nil, apperrors.NewStorage(string(dialect), "failed to open db", err)
	}

	if dialect == DialectSQLite {
		// one writer keeps SQLite from returning SQLITE_BUSY under the worker
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA busy_timeout = 10000", "PRAGMA journal_mode = WAL"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, apperrors.NewStorage(string(dialect), "failed to apply pragma", err)
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewStorage(string(dialect), "failed to ping db", err)
	}

	return &Store{
		db:      db,
		dialect: dialect,
		now:     time.Now,
		log:     logger.ForStore(),
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the SQL dialect in use
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Migrate creates the deals table and its indexes when missing
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, s.dialect.schema()); err != nil {
		return apperrors.NewStorage(string(s.dialect), "failed to execute schema", err)
	}
	return nil
}

// Insert stores d unless a deal with the same identity fields exists.
// It reports whether a row was written. A zero CreatedAt is set to now.
// created_at is never touched again once a row exists.
func (s *Store) Insert(ctx context.Context, d model.Deal) (bool, error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	prices := d.AllPrices
	if prices == nil {
		prices = []string{}
	}
	encoded, err := json.Marshal(prices)
	if err != nil {
		return false, apperrors.NewStorage(d.Restaurant, "failed to encode prices", err)
	}

	var startingPrice sql.NullFloat64
	if d.StartingPrice != nil {
		startingPrice = sql.NullFloat64{Float64: *d.StartingPrice, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`
INSERT INTO deals (restaurant, market, title, starting_price, all_prices, source_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (restaurant, market, title, source_url) DO NOTHING
`), d.Restaurant, d.Market, d.Title, startingPrice, string(encoded), d.SourceURL, d.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, apperrors.NewStorage(d.Restaurant, "failed to insert deal", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.NewStorage(d.Restaurant, "failed to read affected rows", err)
	}
	return n > 0, nil
}

// Upsert inserts every deal that is not stored yet and returns the ones that
// were written, in input order, with CreatedAt filled in. Each insert commits
// on its own, so on error the deals returned so far are already persisted.
func (s *Store) Upsert(ctx context.Context, deals []model.Deal) ([]model.Deal, error) {
	var added []model.Deal
	for _, d := range deals {
		d.CreatedAt = s.now().UTC()
		inserted, err := s.Insert(ctx, d)
		if err != nil {
			return added, err
		}
		if !inserted {
			s.log.Debug().Str("title", d.Title).Msg("Deal already stored")
			continue
		}
		added = append(added, d)
	}
	return added, nil
}

// ListDeals returns stored deals newest first
func (s *Store) ListDeals(ctx context.Context, f Filter) ([]model.Deal, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Market != "" {
		where = append(where, "market = ?")
		args = append(args, f.Market)
	}
	if f.Restaurant != "" {
		where = append(where, "LOWER(restaurant) = LOWER(?)")
		args = append(args, f.Restaurant)
	}

	query := `
SELECT restaurant, market, title, starting_price, all_prices, source_url, created_at
FROM deals`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY id DESC\nLIMIT ?"
	args = append(args, clampLimit(f.Limit, DefaultLimit, MaxLimit))

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, apperrors.NewStorage("deals", "failed to query deals", err)
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		var (
			d             model.Deal
			startingPrice sql.NullFloat64
			allPrices     string
			createdAt     interface{}
		)
		if err := rows.Scan(
			&d.Restaurant,
			&d.Market,
			&d.Title,
			&startingPrice,
			&allPrices,
			&d.SourceURL,
			&createdAt,
		); err != nil {
			return nil, apperrors.NewStorage("deals", "failed to scan deal", err)
		}

		if startingPrice.Valid {
			d.StartingPrice = model.Float(startingPrice.Float64)
		}
		if err := json.Unmarshal([]byte(allPrices), &d.AllPrices); err != nil {
			return nil, apperrors.NewStorage("deals", "failed to decode prices", err)
		}
		if d.AllPrices == nil {
			d.AllPrices = []string{}
		}
		if d.CreatedAt, err = scanTime(createdAt); err != nil {
			return nil, apperrors.NewStorage("deals", "failed to decode created_at", err)
		}

		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorage("deals", "failed to iterate deals", err)
	}
	return deals, nil
}

// Count returns the number of stored deals
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals`).Scan(&n); err != nil {
		return 0, apperrors.NewStorage("deals", "failed to count deals", err)
	}
	return n, nil
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// scanTime accepts the shapes drivers return for created_at: Postgres yields
// time.Time, SQLite yields the stored RFC3339 text.
func scanTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	default:
		return time.Time{}, fmt.Errorf("unsupported created_at type %T", v)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
