package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StockCache caches rendered stock level reports in Redis. Invalidation is
// by version key: every committed workflow bumps the organization's version,
// which orphans all cached reports built under older versions and lets TTL
// reap them.
type StockCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StockCache{rdb: rdb, ttl: ttl}
}

// allOrgs is the slot for cross-organization reports. Any organization's
// commit makes them stale, so Invalidate bumps this slot's version too.
const allOrgs = "all"

func orgKey(orgID *string) string {
	if orgID == nil {
		return "none"
	}
	return *orgID
}

// slot picks the version namespace a report lives under.
func slot(orgID *string, crossOrg bool) string {
	if crossOrg {
		return allOrgs
	}
	return orgKey(orgID)
}

func verKey(org string) string { return fmt.Sprintf("stock:ver:%s", org) }

func reportKey(org string, ver int64, fingerprint string) string {
	return fmt.Sprintf("stock:lv:%s:%d:%s", org, ver, fingerprint)
}

func (c *StockCache) version(ctx context.Context, org string) int64 {
	v, err := c.rdb.Get(ctx, verKey(org)).Int64()
	if err != nil {
		return 0
	}
	return v
}

// Get returns a cached report payload for the filter fingerprint, if any.
func (c *StockCache) Get(ctx context.Context, orgID *string, crossOrg bool, fingerprint string) ([]byte, bool) {
	org := slot(orgID, crossOrg)
	b, err := c.rdb.Get(ctx, reportKey(org, c.version(ctx, org), fingerprint)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores a report payload under the slot's current version.
func (c *StockCache) Set(ctx context.Context, orgID *string, crossOrg bool, fingerprint string, payload []byte) {
	org := slot(orgID, crossOrg)
	_ = c.rdb.Set(ctx, reportKey(org, c.version(ctx, org), fingerprint), payload, c.ttl).Err()
}

// Invalidate bumps the organization's report version after a committed
// workflow, and the cross-org version with it; readers immediately stop
// seeing pre-commit reports.
func (c *StockCache) Invalidate(ctx context.Context, orgID *string) {
	pipe := c.rdb.TxPipeline()
	for _, org := range []string{orgKey(orgID), allOrgs} {
		pipe.Incr(ctx, verKey(org))
		pipe.Expire(ctx, verKey(org), 24*time.Hour)
	}
	_, _ = pipe.Exec(ctx)
}
