package fetch

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Cache is the on-disk probe cache. Entries are keyed by
// (identity, path, calendar day): the day component keeps same-day reruns
// from writing new files, while freshness itself is a strict age check
// against the entry's write timestamp.
type Cache struct {
	dir     string
	ttl     time.Duration
	maxBody int
	logger  *zap.Logger
	now     func() time.Time
}

type cacheEntry struct {
	Status    int       `json:"status"`
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewCache returns a cache rooted at dir. The directory is created lazily on
// first write.
func NewCache(dir string, ttl time.Duration, maxBody int, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if maxBody <= 0 {
		maxBody = 200_000
	}
	return &Cache{
		dir:     dir,
		ttl:     ttl,
		maxBody: maxBody,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns a fresh cached result for (identity, path), if one exists.
// Freshness is the entry's age, not its key: entries written on earlier days
// within the TTL window still hit, so the lookup walks back one day-key at a
// time. Corrupt or unreadable entries count as misses.
func (c *Cache) Get(identity, path string) (Result, bool) {
	days := int(c.ttl/(24*time.Hour)) + 1
	for back := 0; back < days; back++ {
		day := c.now().UTC().AddDate(0, 0, -back)
		raw, err := os.ReadFile(c.entryPath(identity, path, day))
		if err != nil {
			continue
		}
		var entry cacheEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			c.logger.Debug("Discarding corrupt cache entry",
				zap.String("identity", identity),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		if c.now().Sub(entry.FetchedAt) >= c.ttl {
			continue
		}
		return Result{StatusCode: entry.Status, Body: entry.Body, FromCache: true}, true
	}
	return Result{}, false
}

// Put stores res for (identity, path), capping the body. Write failures are
// swallowed; caching is best-effort.
func (c *Cache) Put(identity, path string, res Result) {
	body := res.Body
	if len(body) > c.maxBody {
		body = body[:c.maxBody]
	}
	payload, err := json.Marshal(cacheEntry{
		Status:    res.StatusCode,
		Body:      body,
		FetchedAt: c.now().UTC(),
	})
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		c.logger.Warn("Cache dir unavailable", zap.String("dir", c.dir), zap.Error(err))
		return
	}
	if err := os.WriteFile(c.entryPath(identity, path, c.now().UTC()), payload, 0o600); err != nil {
		c.logger.Warn("Cache write failed",
			zap.String("identity", identity),
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

func (c *Cache) entryPath(identity, path string, day time.Time) string {
	key := fmt.Sprintf("%s|%s|%s", identity, path, day.Format("2006-01-02"))
	sum := sha1.Sum([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
