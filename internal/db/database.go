package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	ErrNoRound           = errors.New("no such round")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

type Database struct {
	db *sql.DB
}

// RoundRow is one settled round.
type RoundRow struct {
	ID          string
	StartedAt   time.Time
	SettledAt   time.Time
	DealerCards string
	DealerValue int
}

// SeatRow is one participant result inside a round.
type SeatRow struct {
	Role    string
	Bet     int
	Cards   string
	Value   int
	Outcome string
	Delta   int
	Chips   int
}

// NewDatabase opens the round-history database and creates its tables.
// For sqlite3 the DSN is a file path (":memory:" is allowed); for postgres it
// is a libpq connection string.
func NewDatabase(driver, dsn string) (*Database, error) {
	var (
		db  *sql.DB
		err error
	)

	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = sql.Open(DriverPostgres, dsn)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(time.Hour)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if err := initTables(db, driver); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db: db}, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		dsn += "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	}

	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	// one connection: an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)
	return db, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(db *sql.DB, driver string) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		serial = "SERIAL PRIMARY KEY"
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			settled_at TIMESTAMP NOT NULL,
			dealer_cards TEXT NOT NULL,
			dealer_value INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating rounds table: %w", err)
	}

	_, err = db.Exec(strings.Replace(`
		CREATE TABLE IF NOT EXISTS round_results (
			id SERIAL_PK,
			round_id TEXT NOT NULL REFERENCES rounds (id),
			role TEXT NOT NULL,
			bet INTEGER NOT NULL,
			cards TEXT NOT NULL,
			hand_value INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			delta INTEGER NOT NULL,
			chips INTEGER NOT NULL
		)
	`, "SERIAL_PK", serial, 1))
	if err != nil {
		return fmt.Errorf("error creating round_results table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS round_results_role ON round_results (role)`)
	if err != nil {
		return fmt.Errorf("error creating round_results index: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveRound writes a round and its seat results in one transaction.
func (d *Database) SaveRound(ctx context.Context, round RoundRow, seats []SeatRow) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rounds (id, started_at, settled_at, dealer_cards, dealer_value)
		VALUES ($1, $2, $3, $4, $5)
	`, round.ID, round.StartedAt.UTC(), round.SettledAt.UTC(), round.DealerCards, round.DealerValue)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert round %s: %w", round.ID, err)
	}

	for _, s := range seats {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO round_results (round_id, role, bet, cards, hand_value, outcome, delta, chips)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, round.ID, s.Role, s.Bet, s.Cards, s.Value, s.Outcome, s.Delta, s.Chips)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert result %s/%s: %w", round.ID, s.Role, err)
		}
	}

	return tx.Commit()
}

// GetRound retrieves a round and its seats by ID
func (d *Database) GetRound(ctx context.Context, id string) (RoundRow, []SeatRow, error) {
	var r RoundRow
	err := d.db.QueryRowContext(ctx, `
		SELECT id, started_at, settled_at, dealer_cards, dealer_value FROM rounds WHERE id = $1
	`, id).Scan(&r.ID, &r.StartedAt, &r.SettledAt, &r.DealerCards, &r.DealerValue)
	if err != nil {
		if err == sql.ErrNoRows {
			return RoundRow{}, nil, ErrNoRound
		}
		return RoundRow{}, nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT role, bet, cards, hand_value, outcome, delta, chips
		FROM round_results WHERE round_id = $1 ORDER BY role
	`, id)
	if err != nil {
		return RoundRow{}, nil, err
	}
	defer rows.Close()

	var seats []SeatRow
	for rows.Next() {
		var s SeatRow
		if err := rows.Scan(&s.Role, &s.Bet, &s.Cards, &s.Value, &s.Outcome, &s.Delta, &s.Chips); err != nil {
			return RoundRow{}, nil, err
		}
		seats = append(seats, s)
	}
	return r, seats, rows.Err()
}

// ListRounds returns rounds newest first. limit <= 0 means 50.
func (d *Database) ListRounds(ctx context.Context, limit int) ([]RoundRow, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, started_at, settled_at, dealer_cards, dealer_value
		FROM rounds ORDER BY settled_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoundRow
	for rows.Next() {
		var r RoundRow
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.SettledAt, &r.DealerCards, &r.DealerValue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SeatsForRole returns every result recorded for role along with the
// settlement time of its round, oldest first.
func (d *Database) SeatsForRole(ctx context.Context, role string) ([]SeatRow, []time.Time, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT rr.role, rr.bet, rr.cards, rr.hand_value, rr.outcome, rr.delta, rr.chips, r.settled_at
		FROM round_results rr JOIN rounds r ON r.id = rr.round_id
		WHERE rr.role = $1 ORDER BY r.settled_at
	`, role)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		seats   []SeatRow
		settled []time.Time
	)
	for rows.Next() {
		var (
			s  SeatRow
			at time.Time
		)
		if err := rows.Scan(&s.Role, &s.Bet, &s.Cards, &s.Value, &s.Outcome, &s.Delta, &s.Chips, &at); err != nil {
			return nil, nil, err
		}
		seats = append(seats, s)
		settled = append(settled, at)
	}
	return seats, settled, rows.Err()
}
