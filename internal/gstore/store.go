// Package gstore implements a content-addressed cache of compiled
// Modules backed by SQLite, so a host running the same bytecode
// repeatedly (spec.md §6's Host API: invoke(module, ...)) can skip
// re-decoding it from the wire format on every run. Grounded on the
// teacher's moduleCache field and import-cycle detection pattern
// (internal/vm/vm.go's PersistentMap-backed moduleCache), translated
// from an in-memory persistent map to on-disk storage since this is a
// cross-process cache rather than a single run's import memo.
package gstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/xelis-go/funxyvm/internal/gmodule"
	"github.com/xelis-go/funxyvm/internal/gwire"
)

// Cache stores encoded Modules keyed by the SHA-256 of their wire
// bytes, so identical bytecode submitted twice hits the same row.
type Cache struct {
	db *sql.DB
}

func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening module cache %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS modules (
			hash TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing module cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// ContentHash is the cache key a host computes from a module's raw
// wire bytes before checking/storing it.
func ContentHash(wireBytes []byte) string {
	sum := sha256.Sum256(wireBytes)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached, already-decoded Module for hash, or
// ok=false on a cache miss.
func (c *Cache) Get(ctx context.Context, hash string) (*gmodule.Module, bool, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, `SELECT data FROM modules WHERE hash = ?`, hash).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying module cache: %w", err)
	}
	mod, err := gwire.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decoding cached module %s: %w", hash, err)
	}
	return mod, true, nil
}

// Put stores wireBytes under hash, replacing any existing entry.
func (c *Cache) Put(ctx context.Context, hash string, wireBytes []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO modules (hash, data) VALUES (?, ?)
		ON CONFLICT(hash) DO UPDATE SET data = excluded.data
	`, hash, wireBytes)
	if err != nil {
		return fmt.Errorf("storing module %s in cache: %w", hash, err)
	}
	return nil
}
