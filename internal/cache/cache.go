package cache

import (
	"database/sql"
	"fmt"
	"time"

	// Registers the embedded "stoolap" database/sql driver.
	_ "github.com/stoolap/stoolap/pkg/driver"
)

// Cache is the shared persistent storage behind the stores: snapshot
// payloads for rehydration and the change-signal timestamps that
// sibling processes watch. Signal keys match what the web storefront
// writes to localStorage, so both sides observe each other.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the embedded database at path and ensures
// the schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("stoolap", "db://"+path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// NewWithDB wraps an existing database handle. Used by tests.
func NewWithDB(db *sql.DB) *Cache {
	return &Cache{db: db}
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS store_state (name TEXT PRIMARY KEY, payload TEXT, updated_at INTEGER)`,
		`CREATE TABLE IF NOT EXISTS signals (name TEXT PRIMARY KEY, updated_at INTEGER)`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate cache: %w", err)
		}
	}
	return nil
}

// SaveState upserts a named store snapshot.
func (c *Cache) SaveState(name string, payload []byte) error {
	now := time.Now().UnixMilli()
	res, err := c.db.Exec(`UPDATE store_state SET payload = ?, updated_at = ? WHERE name = ?`,
		string(payload), now, name)
	if err != nil {
		return fmt.Errorf("save state %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	if _, err := c.db.Exec(`INSERT INTO store_state (name, payload, updated_at) VALUES (?, ?, ?)`,
		name, string(payload), now); err != nil {
		return fmt.Errorf("save state %q: %w", name, err)
	}
	return nil
}

// LoadState returns a named snapshot, reporting whether one exists.
func (c *Cache) LoadState(name string) ([]byte, bool, error) {
	var payload string
	err := c.db.QueryRow(`SELECT payload FROM store_state WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load state %q: %w", name, err)
	}
	return []byte(payload), true, nil
}

// SetSignal upserts a change-signal timestamp under the given key.
func (c *Cache) SetSignal(name string, at time.Time) error {
	ms := at.UnixMilli()
	res, err := c.db.Exec(`UPDATE signals SET updated_at = ? WHERE name = ?`, ms, name)
	if err != nil {
		return fmt.Errorf("set signal %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	if _, err := c.db.Exec(`INSERT INTO signals (name, updated_at) VALUES (?, ?)`, name, ms); err != nil {
		return fmt.Errorf("set signal %q: %w", name, err)
	}
	return nil
}

// Signals returns all signal timestamps keyed by signal name.
func (c *Cache) Signals() (map[string]time.Time, error) {
	rows, err := c.db.Query(`SELECT name, updated_at FROM signals`)
	if err != nil {
		return nil, fmt.Errorf("read signals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var ms int64
		if err := rows.Scan(&name, &ms); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		out[name] = time.UnixMilli(ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read signals: %w", err)
	}
	return out, nil
}
