package lookup

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"itemize/internal/domain"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS lookup_cache (
	supplier_name  TEXT NOT NULL,
	description    TEXT NOT NULL,
	original_uom   TEXT NOT NULL,
	canonical_uom  TEXT NOT NULL,
	pack_quantity  INTEGER,
	confidence     REAL NOT NULL,
	escalation     INTEGER NOT NULL,
	created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (supplier_name, description, original_uom)
);`

// Cache stores external resolution results in a local SQLite file so repeat
// runs over the same supplier catalog skip the external call. All methods are
// safe on a nil receiver, which disables caching.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize lookup cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached result for (supplier, description, unit) and whether
// one exists.
func (c *Cache) Get(ctx context.Context, supplierName, description, originalUOM string) (domain.LookupResult, bool) {
	if c == nil {
		return domain.LookupResult{}, false
	}

	var (
		res  domain.LookupResult
		pack sql.NullInt64
		esc  int
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT canonical_uom, pack_quantity, confidence, escalation
		 FROM lookup_cache
		 WHERE supplier_name = ? AND description = ? AND original_uom = ?`,
		supplierName, description, originalUOM,
	).Scan(&res.CanonicalUOM, &pack, &res.Confidence, &esc)
	if err == sql.ErrNoRows {
		return domain.LookupResult{}, false
	}
	if err != nil {
		log.Printf("lookup.Cache: read failed: %v", err)
		return domain.LookupResult{}, false
	}

	if pack.Valid {
		p := int(pack.Int64)
		res.DetectedPackQuantity = &p
	}
	res.Escalation = esc != 0
	return res, true
}

// Put stores a resolution result. Write failures are logged, not returned:
// the cache is an optimization and must never fail a document.
func (c *Cache) Put(ctx context.Context, supplierName, description, originalUOM string, res domain.LookupResult) {
	if c == nil {
		return
	}

	var pack sql.NullInt64
	if res.DetectedPackQuantity != nil {
		pack = sql.NullInt64{Int64: int64(*res.DetectedPackQuantity), Valid: true}
	}
	esc := 0
	if res.Escalation {
		esc = 1
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO lookup_cache
		 (supplier_name, description, original_uom, canonical_uom, pack_quantity, confidence, escalation)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		supplierName, description, originalUOM, res.CanonicalUOM, pack, res.Confidence, esc,
	)
	if err != nil {
		log.Printf("lookup.Cache: write failed: %v", err)
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}
