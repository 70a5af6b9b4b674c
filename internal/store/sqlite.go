package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

// SQLite persists world state in a single SQLite database with WAL
// journaling. Entity state is stored as JSON keyed by (kind, key); events
// live in an append-only table whose AUTOINCREMENT id is the sequence.
type SQLite struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the database at path. ":memory:" works for
// throwaway stores.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		kind TEXT NOT NULL,
		key TEXT NOT NULL,
		state TEXT NOT NULL,
		PRIMARY KEY (kind, key)
	);

	CREATE TABLE IF NOT EXISTS world_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		player TEXT NOT NULL DEFAULT '',
		faction TEXT NOT NULL DEFAULT '',
		npc TEXT NOT NULL DEFAULT '',
		quest TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_events_player ON world_events(player);
	CREATE INDEX IF NOT EXISTS idx_events_faction ON world_events(faction);
	CREATE INDEX IF NOT EXISTS idx_events_category ON world_events(category);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Get unmarshals the state for (kind, key) into out.
func (s *SQLite) Get(kind Kind, key string, out any) (bool, error) {
	var raw string
	err := s.conn.Get(&raw, "SELECT state FROM entities WHERE kind = ? AND key = ?", kind, key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s/%s: %w", kind, key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", kind, key, err)
	}
	return true, nil
}

// Keys lists all keys stored under kind.
func (s *SQLite) Keys(kind Kind) ([]string, error) {
	var keys []string
	err := s.conn.Select(&keys, "SELECT key FROM entities WHERE kind = ? ORDER BY key", kind)
	return keys, err
}

// Apply commits the batch in one transaction.
func (s *SQLite) Apply(b *Batch) ([]event.Event, error) {
	tx, err := s.conn.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for _, p := range b.Puts {
		raw, err := json.Marshal(p.State)
		if err != nil {
			return nil, fmt.Errorf("encode %s/%s: %w", p.Kind, p.Key, err)
		}
		_, err = tx.Exec(
			"INSERT OR REPLACE INTO entities (kind, key, state) VALUES (?, ?, ?)",
			p.Kind, p.Key, string(raw),
		)
		if err != nil {
			return nil, fmt.Errorf("put %s/%s: %w", p.Kind, p.Key, err)
		}
	}

	committed := make([]event.Event, 0, len(b.Events))
	for _, e := range b.Events {
		res, err := tx.Exec(
			`INSERT INTO world_events (ts, category, description, player, faction, npc, quest)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Timestamp, e.Category, e.Description, e.Player, e.Faction, e.NPC, e.Quest,
		)
		if err != nil {
			return nil, fmt.Errorf("append event: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		committed = append(committed, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return committed, nil
}

// Events returns events matching the filter, oldest first.
func (s *SQLite) Events(f event.Filter) ([]event.Event, error) {
	query := "SELECT seq, ts, category, description, player, faction, npc, quest FROM world_events WHERE 1=1"
	args := []any{}
	if f.Player != "" {
		query += " AND player = ?"
		args = append(args, f.Player)
	}
	if f.Faction != "" {
		query += " AND faction = ?"
		args = append(args, f.Faction)
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if !f.Since.IsZero() {
		query += " AND ts >= ?"
		args = append(args, f.Since)
	}
	query += " ORDER BY seq"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	var events []event.Event
	err := s.conn.Select(&events, query, args...)
	return events, err
}

// EventCount returns the total number of committed events.
func (s *SQLite) EventCount() (uint64, error) {
	var n uint64
	err := s.conn.Get(&n, "SELECT COUNT(*) FROM world_events")
	return n, err
}
