package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	eventBucket  = []byte("events")
	cookieBucket = []byte("cookies")
)

// eventRecord is the value stored per published event id.
type eventRecord struct {
	FirstSeen time.Time `json:"first_seen"`
	Expires   time.Time `json:"expires"`
}

func (r eventRecord) live(now time.Time) bool {
	return r.Expires.After(now)
}

// boltStore keeps published event ids and cookies in a single bbolt file.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	pruneEvery time.Duration
	mu         sync.Mutex
	nextPrune  time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}

	// The lock timeout surfaces a second process on the same file as an error.
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{eventBucket, cookieBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &boltStore{
		db:         db,
		ttl:        opts.EventTTL,
		now:        time.Now,
		pruneEvery: opts.CleanupInterval,
	}
	s.nextPrune = s.now().Add(s.pruneEvery)
	return s, nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

// SeenEvent reports whether id was marked and has not expired yet.
func (s *boltStore) SeenEvent(id string) (bool, error) {
	var rec eventRecord
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(eventBucket).Get([]byte(id))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			// unreadable records count as unseen and get pruned
			return nil
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("lookup event %s: %w", id, err)
	}
	return found && rec.live(s.now()), nil
}

// MarkEvent records id as published for the configured TTL. A re-marked id
// keeps its original first-seen time.
func (s *boltStore) MarkEvent(id string) error {
	now := s.now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventBucket)
		rec := eventRecord{FirstSeen: now}
		if raw := b.Get([]byte(id)); raw != nil {
			var prev eventRecord
			if json.Unmarshal(raw, &prev) == nil && !prev.FirstSeen.IsZero() {
				rec.FirstSeen = prev.FirstSeen
			}
		}
		rec.Expires = now.Add(s.ttl)

		value, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), value)
	})
	if err != nil {
		return fmt.Errorf("mark event %s: %w", id, err)
	}

	if s.pruneDue(now) {
		if _, err := s.prune(now); err != nil {
			return err
		}
	}
	return nil
}

func (s *boltStore) pruneDue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Before(s.nextPrune) {
		return false
	}
	s.nextPrune = now.Add(s.pruneEvery)
	return true
}

// prune deletes expired or unreadable event records and returns how many went.
func (s *boltStore) prune(now time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec eventRecord
			if json.Unmarshal(v, &rec) == nil && rec.live(now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune expired events: %w", err)
	}
	return removed, nil
}
