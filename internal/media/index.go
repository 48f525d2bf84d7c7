package media

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Index is the SQLite bookkeeping for the media blob cache: one row per
// cached file with its content type and cache-validation metadata. The
// wrapper serializes access through a single connection.
type Index struct {
	db    *sql.DB
	mutex sync.Mutex
}

// Entry describes one cached blob
type Entry struct {
	CacheKey    string
	Path        string
	ContentType string
	ETag        string
	Size        int64
	CreatedAt   time.Time
}

// NewIndex opens the cache index database
func NewIndex(path string) (*Index, error) {
	dsn := path + "?_journal_mode=WAL&_foreign_keys=on"

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	// Single connection keeps writes serialized
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return &Index{db: sqlDB}, nil
}

// Migrate creates the cache table
func (ix *Index) Migrate() error {
	ix.mutex.Lock()
	defer ix.mutex.Unlock()

	_, err := ix.db.Exec(`
		CREATE TABLE IF NOT EXISTS media_cache (
			cache_key TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			content_type TEXT NOT NULL,
			etag TEXT NOT NULL,
			size INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = ix.db.Exec("CREATE INDEX IF NOT EXISTS idx_media_cache_created ON media_cache(created_at)")
	return err
}

// Get returns the entry for a cache key, or nil when absent
func (ix *Index) Get(cacheKey string) (*Entry, error) {
	ix.mutex.Lock()
	defer ix.mutex.Unlock()

	var e Entry
	err := ix.db.QueryRow(
		"SELECT cache_key, path, content_type, etag, size, created_at FROM media_cache WHERE cache_key = ?",
		cacheKey,
	).Scan(&e.CacheKey, &e.Path, &e.ContentType, &e.ETag, &e.Size, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Put inserts or replaces an entry
func (ix *Index) Put(e Entry) error {
	ix.mutex.Lock()
	defer ix.mutex.Unlock()

	_, err := ix.db.Exec(
		"INSERT OR REPLACE INTO media_cache (cache_key, path, content_type, etag, size, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.CacheKey, e.Path, e.ContentType, e.ETag, e.Size, e.CreatedAt.UTC(),
	)
	return err
}

// Delete removes an entry
func (ix *Index) Delete(cacheKey string) error {
	ix.mutex.Lock()
	defer ix.mutex.Unlock()

	_, err := ix.db.Exec("DELETE FROM media_cache WHERE cache_key = ?", cacheKey)
	return err
}

// Stale returns entries created before the cutoff
func (ix *Index) Stale(cutoff time.Time) ([]Entry, error) {
	ix.mutex.Lock()
	defer ix.mutex.Unlock()

	rows, err := ix.db.Query(
		"SELECT cache_key, path, content_type, etag, size, created_at FROM media_cache WHERE created_at < ?",
		cutoff.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.CacheKey, &e.Path, &e.ContentType, &e.ETag, &e.Size, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the index database
func (ix *Index) Close() error {
	return ix.db.Close()
}
