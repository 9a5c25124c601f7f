// Package qcache remembers recently accepted questions per cache key so the
// acquisition pipeline can reject duplicates and near-duplicates.
package qcache

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhisek/quizwhiz/internal/content"
	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/logger"
)

// maxOverlappingOptions is how many overlapping options a candidate may
// share with one cached question before it counts as a duplicate.
const maxOverlappingOptions = 2

// Config controls retention.
type Config struct {
	// SweepInterval is how often expired entries are dropped.
	SweepInterval time.Duration

	// Retention is how long an accepted question blocks duplicates.
	Retention time.Duration

	// ClearFingerprintsOnSweep empties the global fingerprint set on every
	// sweep, regardless of entry age. Entries accepted before a clear no
	// longer count toward the set, even when the same question is accepted
	// again afterwards.
	ClearFingerprintsOnSweep bool

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig sweeps every 30 minutes and retains entries for 12 hours.
func DefaultConfig() Config {
	return Config{
		SweepInterval: 30 * time.Minute,
		Retention:     12 * time.Hour,
	}
}

// ConfigFromEnv overlays QUIZWHIZ_CACHE_RETENTION,
// QUIZWHIZ_CACHE_SWEEP_INTERVAL and QUIZWHIZ_CACHE_LEGACY_CLEAR on
// DefaultConfig. Unparseable values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if d, err := time.ParseDuration(os.Getenv("QUIZWHIZ_CACHE_RETENTION")); err == nil && d > 0 {
		cfg.Retention = d
	}
	if d, err := time.ParseDuration(os.Getenv("QUIZWHIZ_CACHE_SWEEP_INTERVAL")); err == nil && d > 0 {
		cfg.SweepInterval = d
	}
	if b, err := strconv.ParseBool(os.Getenv("QUIZWHIZ_CACHE_LEGACY_CLEAR")); err == nil {
		cfg.ClearFingerprintsOnSweep = b
	}
	return cfg
}

// MakeKey builds the "subject|grade|topic|level" cache key.
func MakeKey(subject curriculum.Subject, grade int, topic string, level curriculum.Level) string {
	return fmt.Sprintf("%s|%d|%s|%s", subject, grade, topic, level)
}

type entry struct {
	id          uint64
	text        string
	normText    string
	normOptions []string
	fingerprint string
	epoch       uint64 // fingerprint epoch the entry was counted in
	acceptedAt  time.Time
}

type bucket struct {
	mu      sync.Mutex
	entries []entry
	// dead is set once a sweep has removed the bucket from the map; a
	// transaction that races with the removal must fetch a fresh bucket.
	dead bool
}

// Cache is the uniqueness cache. It is safe for concurrent use.
//
// Lock order: bucket.mu before Cache.mu, bucket.mu before Cache.fpMu.
type Cache struct {
	cfg Config
	log *logger.Logger
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	fpMu         sync.Mutex
	fingerprints map[string]int
	fpEpoch      uint64

	nextID atomic.Uint64

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New creates an empty cache. Call Start to begin periodic sweeps.
func New(cfg Config, log *logger.Logger) *Cache {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultConfig().Retention
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		cfg:          cfg,
		log:          log,
		now:          now,
		buckets:      make(map[string]*bucket),
		fingerprints: make(map[string]int),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Now returns the cache's clock reading.
func (c *Cache) Now() time.Time {
	return c.now()
}

// Start launches the sweep loop. Calling it more than once is a no-op.
func (c *Cache) Start() {
	c.startOnce.Do(func() {
		go c.loop()
	})
}

// Stop ends the sweep loop and waits for it to exit. Safe to call without
// Start and more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	started := true
	c.startOnce.Do(func() { started = false })
	if started {
		<-c.done
	}
}

func (c *Cache) loop() {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Sweep(c.now())
		}
	}
}

// Begin locks the bucket for key and returns a transaction holding that
// lock. The duplicate check and the accept made through one Txn are atomic
// with respect to every other Txn on the same key. Close must be called.
func (c *Cache) Begin(key string) *Txn {
	for {
		c.mu.Lock()
		b, ok := c.buckets[key]
		if !ok {
			b = &bucket{}
			c.buckets[key] = b
		}
		c.mu.Unlock()

		b.mu.Lock()
		if !b.dead {
			return &Txn{c: c, key: key, b: b}
		}
		b.mu.Unlock()
	}
}

// IsDuplicate is a single-call convenience over Begin.
func (c *Cache) IsDuplicate(key, text string, options []string) bool {
	tx := c.Begin(key)
	defer tx.Close()
	return tx.IsDuplicate(text, options)
}

// Accept is a single-call convenience over Begin.
func (c *Cache) Accept(key, text string, options []string, at time.Time) {
	tx := c.Begin(key)
	defer tx.Close()
	tx.Accept(text, options, at)
}

// Recent returns up to n of the most recently accepted question texts for
// key, newest first.
func (c *Cache) Recent(key string, n int) []string {
	c.mu.Lock()
	b, ok := c.buckets[key]
	c.mu.Unlock()
	if !ok || n <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, min(n, len(b.entries)))
	for i := len(b.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.entries[i].text)
	}
	return out
}

// Len returns the number of entries under key.
func (c *Cache) Len(key string) int {
	c.mu.Lock()
	b, ok := c.buckets[key]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Keys returns the number of live cache keys.
func (c *Cache) Keys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// Fingerprints returns the size of the global fingerprint set.
func (c *Cache) Fingerprints() int {
	c.fpMu.Lock()
	defer c.fpMu.Unlock()
	return len(c.fingerprints)
}

// Sweep drops entries older than the retention window as of now and
// removes keys left empty. Each bucket is locked only while it is pruned.
func (c *Cache) Sweep(now time.Time) {
	c.mu.Lock()
	snapshot := make(map[string]*bucket, len(c.buckets))
	for k, b := range c.buckets {
		snapshot[k] = b
	}
	c.mu.Unlock()

	cutoff := now.Add(-c.cfg.Retention)
	dropped, removedKeys := 0, 0

	for key, b := range snapshot {
		b.mu.Lock()
		kept := b.entries[:0]
		var expired []entry
		for _, e := range b.entries {
			if e.acceptedAt.Before(cutoff) {
				expired = append(expired, e)
				continue
			}
			kept = append(kept, e)
		}
		clear(b.entries[len(kept):])
		b.entries = kept
		dropped += len(expired)
		c.releaseFingerprints(expired)

		if len(b.entries) == 0 {
			b.dead = true
			c.mu.Lock()
			if c.buckets[key] == b {
				delete(c.buckets, key)
			}
			c.mu.Unlock()
			removedKeys++
		}
		b.mu.Unlock()
	}

	if c.cfg.ClearFingerprintsOnSweep {
		c.fpMu.Lock()
		clear(c.fingerprints)
		c.fpEpoch++
		c.fpMu.Unlock()
	}

	c.log.Debug("question cache swept",
		"dropped_entries", dropped,
		"removed_keys", removedKeys,
		"fingerprints", c.Fingerprints())
}

func (c *Cache) holdsFingerprint(fp string) bool {
	c.fpMu.Lock()
	defer c.fpMu.Unlock()
	return c.fingerprints[fp] > 0
}

// retainFingerprint counts fp and returns the epoch it was counted in.
func (c *Cache) retainFingerprint(fp string) uint64 {
	c.fpMu.Lock()
	defer c.fpMu.Unlock()
	c.fingerprints[fp]++
	return c.fpEpoch
}

// releaseFingerprints uncounts the fingerprints of removed entries.
// Entries counted before the last clear were already dropped with it.
func (c *Cache) releaseFingerprints(entries []entry) {
	if len(entries) == 0 {
		return
	}
	c.fpMu.Lock()
	defer c.fpMu.Unlock()
	for _, e := range entries {
		if e.epoch != c.fpEpoch {
			continue
		}
		n, ok := c.fingerprints[e.fingerprint]
		if !ok {
			continue
		}
		if n <= 1 {
			delete(c.fingerprints, e.fingerprint)
		} else {
			c.fingerprints[e.fingerprint] = n - 1
		}
	}
}

// remove drops the entry with id from key, if it is still cached.
func (c *Cache) remove(key string, id uint64) {
	c.mu.Lock()
	b, ok := c.buckets[key]
	c.mu.Unlock()
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dead {
		return
	}
	for i, e := range b.entries {
		if e.id != id {
			continue
		}
		b.entries = slices.Delete(b.entries, i, i+1)
		c.releaseFingerprints([]entry{e})
		if len(b.entries) == 0 {
			b.dead = true
			c.mu.Lock()
			if c.buckets[key] == b {
				delete(c.buckets, key)
			}
			c.mu.Unlock()
		}
		return
	}
}

// Txn is an exclusive view of one cache key.
type Txn struct {
	c      *Cache
	key    string
	b      *bucket
	closed bool
}

// Key returns the cache key this transaction holds.
func (t *Txn) Key() string {
	return t.key
}

// IsDuplicate reports whether the question matches an accepted
// fingerprint anywhere in the cache, repeats the normalized text of an
// entry under this key, or shares more than two overlapping options with
// one of them.
func (t *Txn) IsDuplicate(text string, options []string) bool {
	if t.c.holdsFingerprint(content.Fingerprint(text, options)) {
		return true
	}

	normText := content.NormalizeForComparison(text)
	normOptions := normalizeAll(options)
	for _, e := range t.b.entries {
		if e.normText == normText {
			return true
		}
		if overlapCount(e.normOptions, normOptions) > maxOverlappingOptions {
			return true
		}
	}
	return false
}

// Accept records the question under this key.
func (t *Txn) Accept(text string, options []string, at time.Time) {
	t.add(text, options, at)
}

// Reserve records the question like Accept but lets the caller take it
// back with Abort until Commit is called. While reserved it blocks
// duplicates exactly as an accepted question does.
func (t *Txn) Reserve(text string, options []string, at time.Time) *Reservation {
	return &Reservation{c: t.c, key: t.key, id: t.add(text, options, at)}
}

func (t *Txn) add(text string, options []string, at time.Time) uint64 {
	fp := content.Fingerprint(text, options)
	id := t.c.nextID.Add(1)
	t.b.entries = append(t.b.entries, entry{
		id:          id,
		text:        text,
		normText:    content.NormalizeForComparison(text),
		normOptions: normalizeAll(options),
		fingerprint: fp,
		epoch:       t.c.retainFingerprint(fp),
		acceptedAt:  at,
	})
	return id
}

// Close releases the key. A key that is still empty is dropped. It is safe
// to call more than once.
func (t *Txn) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if len(t.b.entries) == 0 {
		t.b.dead = true
		t.c.mu.Lock()
		if t.c.buckets[t.key] == t.b {
			delete(t.c.buckets, t.key)
		}
		t.c.mu.Unlock()
	}
	t.b.mu.Unlock()
}

// Reservation is a provisionally accepted question. Exactly one of Commit
// or Abort takes effect; later calls are no-ops. Neither may be called
// while a Txn on the same key is open in the same goroutine.
type Reservation struct {
	c    *Cache
	key  string
	id   uint64
	once sync.Once
}

// Commit keeps the question in the cache.
func (r *Reservation) Commit() {
	r.once.Do(func() {})
}

// Abort removes the question and releases its fingerprint.
func (r *Reservation) Abort() {
	r.once.Do(func() {
		r.c.remove(r.key, r.id)
	})
}

func normalizeAll(options []string) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = content.NormalizeForComparison(o)
	}
	return out
}

// overlapCount counts candidate options that overlap at least one cached
// option.
func overlapCount(cached, candidate []string) int {
	n := 0
	for _, opt := range candidate {
		for _, prev := range cached {
			if content.Overlapping(prev, opt) {
				n++
				break
			}
		}
	}
	return n
}
