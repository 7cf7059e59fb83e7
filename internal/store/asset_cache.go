package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/cache"
)

// tsLayout is fixed width so expires_at compares correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// KeyFromURL is the stable cache key for a remote asset URL.
func KeyFromURL(u string) string {
	h := sha256.Sum256([]byte(u))
	return hex.EncodeToString(h[:])
}

// AssetCache is a cache.Cache persisted in the assets table, so fetched
// assets survive restarts.
type AssetCache struct {
	db   *DB
	opts cache.Options
	now  func() time.Time
}

func NewAssetCache(db *DB, opts cache.Options) *AssetCache {
	return &AssetCache{db: db, opts: opts, now: time.Now}
}

func (c *AssetCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	raw, err := cache.Encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = c.opts.DefaultTTL
	}
	now := c.now().UTC()
	expires := ""
	if ttl > 0 {
		expires = now.Add(ttl).Format(tsLayout)
	}

	_, err = c.db.Pool.ExecContext(ctx, `
INSERT OR REPLACE INTO assets(key, bytes, stored_at, expires_at)
VALUES(?,?,?,?);`,
		key, raw, now.Format(tsLayout), expires,
	)
	return err
}

func (c *AssetCache) Get(ctx context.Context, key string, value interface{}) error {
	var raw []byte
	var expires string
	err := c.db.Pool.QueryRowContext(ctx,
		`SELECT bytes, expires_at FROM assets WHERE key = ? LIMIT 1;`, key,
	).Scan(&raw, &expires)
	if err == sql.ErrNoRows {
		return cache.ErrNotFound
	}
	if err != nil {
		return err
	}

	if expires != "" {
		at, perr := time.Parse(tsLayout, expires)
		if perr == nil && c.now().After(at) {
			_ = c.Delete(ctx, key)
			return cache.ErrNotFound
		}
	}
	return cache.Decode(raw, value)
}

func (c *AssetCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.Pool.ExecContext(ctx, `DELETE FROM assets WHERE key = ?;`, key)
	return err
}

func (c *AssetCache) Clear(ctx context.Context) error {
	_, err := c.db.Pool.ExecContext(ctx, `DELETE FROM assets;`)
	return err
}

// Prune removes expired rows and reports how many were deleted.
func (c *AssetCache) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.Pool.ExecContext(ctx, `
DELETE FROM assets
WHERE expires_at != '' AND expires_at < ?;`,
		c.now().UTC().Format(tsLayout),
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (c *AssetCache) Close() error {
	return c.db.Close()
}
