package qcache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwhiz/internal/curriculum"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, clock *fakeClock, mutate ...func(*Config)) *Cache {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Clock = clock.Now
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg, nil)
}

var (
	key      = MakeKey(curriculum.Mathematics, 3, "multiplication", curriculum.VeryEasy)
	baseText = "Sam has 3 bags with 4 apples each. How many apples in all?"
	baseOpts = []string{"7 apples", "12 apples", "10 apples", "15 apples"}
)

func TestMakeKey(t *testing.T) {
	assert.Equal(t, "mathematics|3|multiplication|very_easy", key)
}

func TestDuplicateRejection(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Accept(key, baseText, baseOpts, clock.Now())

	tests := []struct {
		name    string
		key     string
		text    string
		options []string
		want    bool
	}{
		{"exact repeat", key, baseText, baseOpts, true},
		{"same text different options", key, "sam has 3 bags with 4 apples each how many apples in all", []string{"a", "b", "c", "d"}, true},
		{"three overlapping options", key, "Another apples question entirely?",
			[]string{"7 apples", "12 apples total", "10 apples", "99"}, true},
		{"two overlapping options", key, "Another apples question entirely?",
			[]string{"7 apples", "12 apples", "31", "99"}, false},
		{"short options only match exactly", key, "Short options?",
			[]string{"7", "12", "10", "15"}, false},
		{"distinct", key, "What is 6 × 7?", []string{"42", "36", "48", "49"}, false},
		{"same fingerprint under another key", MakeKey(curriculum.Mathematics, 3, "multiplication", curriculum.Easy),
			baseText, baseOpts, true},
		{"same text under another key", MakeKey(curriculum.Mathematics, 3, "division", curriculum.VeryEasy),
			baseText, []string{"a", "b", "c", "d"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsDuplicate(tt.key, tt.text, tt.options))
		})
	}
}

func TestRecentNewestFirst(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Accept(key, "q1", []string{"a"}, clock.Now())
	c.Accept(key, "q2", []string{"b"}, clock.Now())
	c.Accept(key, "q3", []string{"c"}, clock.Now())

	assert.Equal(t, []string{"q3", "q2"}, c.Recent(key, 2))
	assert.Equal(t, []string{"q3", "q2", "q1"}, c.Recent(key, 10))
	assert.Nil(t, c.Recent("missing", 3))
}

func TestSweepUniformRetention(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)

	c.Accept(key, baseText, baseOpts, clock.Now())
	clock.Advance(6 * time.Hour)
	other := MakeKey(curriculum.English, 2, "grammar", curriculum.Medium)
	c.Accept(other, "Which word is a noun?", []string{"run", "dog", "blue", "fast"}, clock.Now())

	clock.Advance(time.Hour)
	c.Sweep(clock.Now())
	assert.Equal(t, 2, c.Keys())
	assert.Equal(t, 2, c.Fingerprints())
	assert.True(t, c.IsDuplicate(key, baseText, baseOpts), "fingerprints survive sweeps inside retention")

	clock.Advance(5*time.Hour + time.Minute)
	c.Sweep(clock.Now())
	assert.Equal(t, 1, c.Keys())
	assert.Equal(t, 0, c.Len(key))
	assert.Equal(t, 1, c.Fingerprints())
	assert.False(t, c.IsDuplicate(key, baseText, baseOpts))

	clock.Advance(7 * time.Hour)
	c.Sweep(clock.Now())
	assert.Equal(t, 0, c.Keys())
	assert.Equal(t, 0, c.Fingerprints())
}

func TestSweepLegacyFingerprintClearing(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock, func(cfg *Config) { cfg.ClearFingerprintsOnSweep = true })

	c.Accept(key, baseText, baseOpts, clock.Now())
	c.Sweep(clock.Now())

	assert.Equal(t, 0, c.Fingerprints())
	assert.Equal(t, 1, c.Len(key))
	// Text still matches for the rest of the retention window.
	assert.True(t, c.IsDuplicate(key, baseText, baseOpts))
	other := MakeKey(curriculum.Mathematics, 3, "multiplication", curriculum.Easy)
	assert.False(t, c.IsDuplicate(other, baseText, baseOpts))

	clock.Advance(13 * time.Hour)
	c.Sweep(clock.Now())
	assert.Equal(t, 0, c.Keys())
}

func TestFingerprintRefcount(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	a := MakeKey(curriculum.Mathematics, 3, "multiplication", curriculum.VeryEasy)
	b := MakeKey(curriculum.Mathematics, 4, "fractions", curriculum.VeryEasy)

	c.Accept(a, baseText, baseOpts, clock.Now())
	clock.Advance(2 * time.Hour)
	c.Accept(b, baseText, baseOpts, clock.Now())
	assert.Equal(t, 1, c.Fingerprints())

	clock.Advance(11 * time.Hour)
	c.Sweep(clock.Now())
	assert.Equal(t, 1, c.Fingerprints(), "second owner keeps the fingerprint alive")
	assert.True(t, c.IsDuplicate(a, baseText, baseOpts))
}

func TestReservationAbort(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)

	tx := c.Begin(key)
	r := tx.Reserve(baseText, baseOpts, clock.Now())
	tx.Close()

	assert.True(t, c.IsDuplicate(key, baseText, baseOpts), "a reserved question blocks duplicates")
	assert.Equal(t, []string{baseText}, c.Recent(key, 5))

	r.Abort()
	assert.Equal(t, 0, c.Len(key))
	assert.Equal(t, 0, c.Keys())
	assert.Equal(t, 0, c.Fingerprints())
	assert.False(t, c.IsDuplicate(key, baseText, baseOpts))

	r.Abort()
	r.Commit()
	assert.Equal(t, 0, c.Len(key))
}

func TestReservationCommit(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	c.Accept(key, "What is 6 × 7?", []string{"42", "36", "48", "49"}, clock.Now())

	tx := c.Begin(key)
	r := tx.Reserve(baseText, baseOpts, clock.Now())
	tx.Close()

	r.Commit()
	r.Abort()
	assert.Equal(t, 2, c.Len(key))
	assert.Equal(t, 2, c.Fingerprints())
	assert.True(t, c.IsDuplicate(key, baseText, baseOpts))
}

func TestReservationAbortAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)

	tx := c.Begin(key)
	r := tx.Reserve(baseText, baseOpts, clock.Now())
	tx.Close()

	clock.Advance(13 * time.Hour)
	c.Sweep(clock.Now())
	c.Accept(key, baseText, baseOpts, clock.Now())

	r.Abort()
	assert.Equal(t, 1, c.Len(key), "abort only removes its own entry")
	assert.Equal(t, 1, c.Fingerprints())
}

func TestLegacyClearIgnoresStaleRelease(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock, func(cfg *Config) { cfg.ClearFingerprintsOnSweep = true })
	a := MakeKey(curriculum.Mathematics, 3, "multiplication", curriculum.VeryEasy)
	b := MakeKey(curriculum.Mathematics, 4, "fractions", curriculum.VeryEasy)

	tx := c.Begin(a)
	r := tx.Reserve(baseText, baseOpts, clock.Now())
	tx.Close()
	c.Sweep(clock.Now())
	require.Equal(t, 0, c.Fingerprints())

	c.Accept(b, baseText, baseOpts, clock.Now())
	require.Equal(t, 1, c.Fingerprints())

	// The entry under a was counted before the clear; dropping it must not
	// release the fingerprint now held by b.
	r.Abort()
	assert.Equal(t, 0, c.Len(a))
	assert.Equal(t, 1, c.Fingerprints())
	assert.True(t, c.IsDuplicate(a, baseText, baseOpts))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZWHIZ_CACHE_RETENTION", "")
	t.Setenv("QUIZWHIZ_CACHE_SWEEP_INTERVAL", "")
	t.Setenv("QUIZWHIZ_CACHE_LEGACY_CLEAR", "")
	assert.Equal(t, DefaultConfig(), ConfigFromEnv())

	t.Setenv("QUIZWHIZ_CACHE_RETENTION", "2h")
	t.Setenv("QUIZWHIZ_CACHE_SWEEP_INTERVAL", "5m")
	t.Setenv("QUIZWHIZ_CACHE_LEGACY_CLEAR", "true")
	cfg := ConfigFromEnv()
	assert.Equal(t, 2*time.Hour, cfg.Retention)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.True(t, cfg.ClearFingerprintsOnSweep)

	t.Setenv("QUIZWHIZ_CACHE_RETENTION", "soon")
	t.Setenv("QUIZWHIZ_CACHE_LEGACY_CLEAR", "maybe")
	cfg = ConfigFromEnv()
	assert.Equal(t, DefaultConfig().Retention, cfg.Retention)
	assert.False(t, cfg.ClearFingerprintsOnSweep)
}

func TestTxnSerializesCheckAndAccept(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)

	const workers = 16
	var accepted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			tx := c.Begin(key)
			defer tx.Close()
			if !tx.IsDuplicate(baseText, baseOpts) {
				tx.Accept(baseText, baseOpts, clock.Now())
				accepted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load())
	assert.Equal(t, 1, c.Len(key))
}

func TestSweepDuringTransactions(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			k := MakeKey(curriculum.Mathematics, 1+i%5, "numbers", curriculum.LevelAt(i%5))
			tx := c.Begin(k)
			if !tx.IsDuplicate("q", []string{"a", "b", "c", "d"}) {
				tx.Accept("q", []string{"a", "b", "c", "d"}, clock.Now().Add(-24*time.Hour))
			}
			tx.Close()
		}()
		go func() {
			defer wg.Done()
			c.Sweep(clock.Now())
		}()
	}
	wg.Wait()
	c.Sweep(clock.Now())
	assert.Equal(t, 0, c.Keys())
	assert.Equal(t, 0, c.Fingerprints())
}

func TestTxnCloseIdempotent(t *testing.T) {
	c := newTestCache(t, newFakeClock())
	tx := c.Begin(key)
	assert.Equal(t, key, tx.Key())
	tx.Close()
	tx.Close()

	tx = c.Begin(key)
	tx.Close()
}

func TestStartStop(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock, func(cfg *Config) { cfg.SweepInterval = time.Millisecond })
	c.Accept(key, baseText, baseOpts, clock.Now())
	clock.Advance(13 * time.Hour)

	c.Start()
	c.Start()
	require.Eventually(t, func() bool { return c.Keys() == 0 }, time.Second, time.Millisecond)
	c.Stop()
	c.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	c := New(DefaultConfig(), nil)
	c.Stop()
}
