package storage

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func openTestBolt(t *testing.T, opts Options) (*boltStore, *fakeClock) {
	t.Helper()
	s, err := openBolt(filepath.Join(t.TempDir(), "rescue.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.now
	s.nextPrune = clock.t.Add(opts.CleanupInterval)
	return s, clock
}

func countEvents(t *testing.T, s *boltStore) int {
	t.Helper()
	n := 0
	if err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(eventBucket).Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

func TestBoltStoreMarksAndExpiresEvents(t *testing.T) {
	s, clock := openTestBolt(t, Options{EventTTL: time.Hour, CleanupInterval: 24 * time.Hour})
	const id = "animal_listed:downtown:1"

	seen, err := s.SeenEvent(id)
	if err != nil || seen {
		t.Fatalf("expected unseen event, seen=%v err=%v", seen, err)
	}
	if err := s.MarkEvent(id); err != nil {
		t.Fatalf("MarkEvent: %v", err)
	}
	seen, err = s.SeenEvent(id)
	if err != nil || !seen {
		t.Fatalf("expected event marked as seen, got seen=%v err=%v", seen, err)
	}

	clock.advance(time.Hour + time.Second)
	seen, err = s.SeenEvent(id)
	if err != nil {
		t.Fatalf("SeenEvent after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected event to expire")
	}
}

func TestBoltStorePrunesOnCadence(t *testing.T) {
	s, clock := openTestBolt(t, Options{EventTTL: time.Hour, CleanupInterval: 2 * time.Hour})

	if err := s.MarkEvent("old"); err != nil {
		t.Fatalf("MarkEvent old: %v", err)
	}
	clock.advance(90 * time.Minute)
	if err := s.MarkEvent("fresh"); err != nil {
		t.Fatalf("MarkEvent fresh: %v", err)
	}
	if n := countEvents(t, s); n != 2 {
		t.Fatalf("prune ran too early, %d events left", n)
	}

	clock.advance(time.Hour)
	if err := s.MarkEvent("newest"); err != nil {
		t.Fatalf("MarkEvent newest: %v", err)
	}
	// "old" and "fresh" are past their TTL once the cadence elapsed
	if n := countEvents(t, s); n != 1 {
		t.Fatalf("expected only the newest event after prune, got %d", n)
	}
}

func TestBoltStoreRemarkKeepsFirstSeen(t *testing.T) {
	s, clock := openTestBolt(t, Options{EventTTL: time.Hour, CleanupInterval: time.Hour})
	first := clock.t

	if err := s.MarkEvent("id"); err != nil {
		t.Fatalf("MarkEvent: %v", err)
	}
	clock.advance(30 * time.Minute)
	if err := s.MarkEvent("id"); err != nil {
		t.Fatalf("MarkEvent again: %v", err)
	}

	var rec eventRecord
	if err := s.db.View(func(tx *bolt.Tx) error {
		return json.Unmarshal(tx.Bucket(eventBucket).Get([]byte("id")), &rec)
	}); err != nil {
		t.Fatalf("read record: %v", err)
	}
	if !rec.FirstSeen.Equal(first) || !rec.Expires.Equal(clock.t.Add(time.Hour)) {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestBoltStorePersistsCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rescue.db")

	store, err := NewStore(TypeBBolt, path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	err = store.SaveCookies("rescue.example.com", []*http.Cookie{
		{Name: "SESSION", Value: "abc", Path: "/", HttpOnly: true},
		{Name: "", Value: "ignored"},
	})
	if err != nil {
		t.Fatalf("SaveCookies: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore(TypeBBolt, path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	cookies, err := reopened.LoadCookies("rescue.example.com")
	if err != nil {
		t.Fatalf("LoadCookies: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Name != "SESSION" || cookies[0].Value != "abc" || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %#v", cookies)
	}

	if err := reopened.SaveCookies("rescue.example.com", nil); err != nil {
		t.Fatalf("SaveCookies clear: %v", err)
	}
	cookies, err = reopened.LoadCookies("rescue.example.com")
	if err != nil || len(cookies) != 0 {
		t.Fatalf("expected cleared cookies, got %v err=%v", cookies, err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkEvent("x"); err != nil {
		t.Fatalf("noop store MarkEvent: %v", err)
	}
	if cookies, err := store.LoadCookies("host"); err != nil || cookies != nil {
		t.Fatalf("noop store LoadCookies: %v %v", cookies, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
