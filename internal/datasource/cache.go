// Package datasource fetches pathway descriptions and base images
// from the KEGG REST API, with a local SQLite cache so repeated runs
// against the same pathway stay off the network.
package datasource

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is a URL-keyed response cache backed by SQLite.
type Cache struct {
	db *sql.DB
}

// DefaultCacheDir returns the XDG cache directory for kegganim.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "kegganim")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "kegganim")
}

// OpenCache opens (creating if needed) the cache database in dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(dir, "cache.db"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open cache database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			url        TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			body       BLOB NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached body for a URL, or ok=false on a miss.
func (c *Cache) Get(url string) (body []byte, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	row := c.db.QueryRow(`SELECT body FROM responses WHERE url = ?`, url)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}
	return body, true, nil
}

// Put stores a response body for a URL, replacing any prior entry.
func (c *Cache) Put(url string, body []byte) error {
	if c == nil {
		return nil
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (url, fetched_at, body) VALUES (?, ?, ?)`,
		url, time.Now().Unix(), body,
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
