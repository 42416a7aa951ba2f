// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists OCR responses keyed by input content, so re-running
// the pipeline on unchanged input skips the paid API call.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ocr-engine/pkg/types"
)

const dbFile = "cache.db"

// Cache is a SQLite-backed store of OCR responses.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database under dir. An empty dir places
// it in <user cache dir>/ocr-engine.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locating user cache directory: %w", err)
		}
		dir = filepath.Join(base, "ocr-engine")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		format TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

// Key derives the cache key for one OCR request: the provider, model,
// format, and a digest of every page image all feed the hash, so any
// change in input or settings misses the cache.
func Key(provider, model string, format types.OutputFormat, images [][]byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00", provider, model, format)
	for _, img := range images {
		digest := sha256.Sum256(img)
		h.Write(digest[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached response text for key, with ok reporting whether
// an entry exists.
func (c *Cache) Get(key string) (text string, ok bool, err error) {
	err = c.db.QueryRow(`SELECT text FROM responses WHERE key = ?`, key).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	return text, true, nil
}

// Put stores (or replaces) the response text for key.
func (c *Cache) Put(key, provider, model string, format types.OutputFormat, text string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (key, provider, model, format, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, provider, model, string(format), text, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
