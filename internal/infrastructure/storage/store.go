// Package storage persists match records in a SQL database. SQLite (pure Go,
// modernc.org/sqlite) and PostgreSQL (lib/pq) are supported.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/pricelens/skumatch/internal/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultTable is the table match records are written to.
	DefaultTable = "matched_skus"

	dateLayout = "2006-01-02"
)

// Config selects the database backing a Store.
type Config struct {
	Driver string
	DSN    string
	Table  string
}

// Store is a domain.MatchRepository backed by database/sql.
type Store struct {
	db     *sql.DB
	driver string
	table  string
	now    func() time.Time
}

// Open connects to the configured database and creates the match table if it
// does not exist.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		cfg.Driver = DriverSQLite
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", domain.ErrStorage, cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: empty dsn", domain.ErrStorage)
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if cfg.Driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY on concurrent runs
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: cfg.Driver, table: pq.QuoteIdentifier(cfg.Table), now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	ddl := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		id ` + id + `,
		run_id TEXT NOT NULL,
		country TEXT NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		locality TEXT NOT NULL DEFAULT '',
		competitor_name TEXT NOT NULL,
		competitor_sku_name TEXT NOT NULL,
		competitor_price DOUBLE PRECISION NOT NULL,
		special_price DOUBLE PRECISION,
		competitor_url TEXT,
		gift_or_extra_prod TEXT,
		matched_sku TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: creating table: %v", domain.ErrStorage, err)
	}
	idx := `CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(strings.Trim(s.table, `"`)+"_country_date") +
		` ON ` + s.table + ` (country, date)`
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("%w: creating index: %v", domain.ErrStorage, err)
	}
	return nil
}

// SaveMatches writes records in one transaction.
func (s *Store) SaveMatches(ctx context.Context, runID string, records []domain.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO `+s.table+` (
		run_id, country, date, type, locality, competitor_name, competitor_sku_name,
		competitor_price, special_price, competitor_url, gift_or_extra_prod,
		matched_sku, confidence, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer stmt.Close()

	created := s.now().UTC().Format(time.RFC3339)
	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			runID, r.Country, formatDate(r.Date), r.Type, r.Locality, r.CompetitorName, r.Name,
			r.Price, nullFloat(r.SpecialPrice), nullString(r.URL), nullString(r.GiftOrExtra),
			r.MatchedSKU, r.Confidence, created,
		)
		if err != nil {
			return fmt.Errorf("%w: inserting %q: %v", domain.ErrStorage, r.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// ProcessedCompetitors lists competitors with stored records for country and
// date, sorted by name.
func (s *Store) ProcessedCompetitors(ctx context.Context, country string, date time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT DISTINCT competitor_name FROM `+s.table+` WHERE country = ? AND date = ? ORDER BY competitor_name`),
		country, formatDate(date))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return out, nil
}

// ListMatches returns stored records for country and date, best first.
func (s *Store) ListMatches(ctx context.Context, country string, date time.Time) ([]domain.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT
		country, date, type, locality, competitor_name, competitor_sku_name,
		competitor_price, special_price, competitor_url, gift_or_extra_prod,
		matched_sku, confidence
		FROM `+s.table+` WHERE country = ? AND date = ? ORDER BY confidence DESC, id`),
		country, formatDate(date))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	out := []domain.MatchRecord{}
	for rows.Next() {
		var (
			r       domain.MatchRecord
			day     string
			special sql.NullFloat64
			url     sql.NullString
			gift    sql.NullString
		)
		err := rows.Scan(&r.Country, &day, &r.Type, &r.Locality, &r.CompetitorName, &r.Name,
			&r.Price, &special, &url, &gift, &r.MatchedSKU, &r.Confidence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		if day != "" {
			if r.Date, err = time.Parse(dateLayout, day); err != nil {
				return nil, fmt.Errorf("%w: bad date %q: %v", domain.ErrStorage, day, err)
			}
		}
		if special.Valid {
			r.SpecialPrice = &special.Float64
		}
		if url.Valid {
			r.URL = &url.String
		}
		if gift.Valid {
			r.GiftOrExtra = &gift.String
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return out, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
