package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore keeps history in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, log: o.logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kills (
			id INTEGER PRIMARY KEY,
			timestamp TEXT NOT NULL,
			killer TEXT NOT NULL,
			victim TEXT NOT NULL,
			weapon TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_kills_timestamp ON kills(timestamp);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append inserts one event.
func (s *SQLiteStore) Append(ctx context.Context, ev event.KillEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kills (timestamp, killer, victim, weapon) VALUES (?, ?, ?, ?)`,
		ev.Timestamp.Format(time.RFC3339Nano), ev.Killer, ev.Victim, ev.Weapon)
	if err != nil {
		return fmt.Errorf("insert kill: %w", err)
	}
	return nil
}

// Load returns every stored event in insertion order. Rows with an
// unparsable timestamp or empty field are skipped.
func (s *SQLiteStore) Load(ctx context.Context) ([]event.KillEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, killer, victim, weapon FROM kills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query kills: %w", err)
	}
	defer rows.Close()

	var events []event.KillEvent
	for rows.Next() {
		var (
			id                     int64
			ts                     string
			killer, victim, weapon string
		)
		if err := rows.Scan(&id, &ts, &killer, &victim, &weapon); err != nil {
			return nil, err
		}
		t, err := ParseTimestamp(ts)
		if err != nil {
			s.log.Debug("skipping history row", "id", id, "error", err)
			continue
		}
		ev, err := event.New(t, killer, victim, weapon)
		if err != nil {
			s.log.Debug("skipping history row", "id", id, "error", err)
			continue
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
