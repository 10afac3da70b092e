// Package cache provides a file-backed, TTL-aware store shared by concurrent
// burnline invocations.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const fileExt = ".json"

// ErrInvalidKey is returned for keys that are empty or contain path elements.
var ErrInvalidKey = errors.New("cache: invalid key")

// Freshness classifies the result of a Read.
type Freshness int

// Read outcomes.
const (
	Miss Freshness = iota
	Fresh
	Stale
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	}
	return "miss"
}

// Entry is the on-disk envelope around a cached payload.
type Entry struct {
	Key       string        `json:"key"`
	Payload   []byte        `json:"payload"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
}

// FreshAt reports whether the entry is within its TTL at now.
func (e Entry) FreshAt(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// Age returns how long ago the entry was fetched.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Store persists one file per key. Writes are atomic (temp file + rename) so
// concurrent readers never observe a partial entry.
type Store struct {
	dir string
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for freshness.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates the cache directory if needed and returns a Store rooted there.
func Open(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	s := &Store{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.now() }

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

// Read returns the entry for key and its freshness. Missing, unreadable and
// corrupt files all read as a Miss.
func (s *Store) Read(key string) (Entry, Freshness) {
	path, err := s.path(key)
	if err != nil {
		return Entry{}, Miss
	}
	e, err := readEntry(path)
	if err != nil || e.Key != key {
		return Entry{}, Miss
	}
	if e.FreshAt(s.now()) {
		return e, Fresh
	}
	return e, Stale
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := sonic.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if e.FetchedAt.IsZero() {
		return Entry{}, fmt.Errorf("decoding %s: missing fetched_at", filepath.Base(path))
	}
	return e, nil
}

// Write stores payload under key with the given TTL, replacing any previous
// entry atomically.
func (s *Store) Write(key string, payload []byte, ttl time.Duration) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := sonic.Marshal(Entry{
		Key:       key,
		Payload:   payload,
		FetchedAt: s.now().UTC(),
		TTL:       ttl,
	})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}

// Entries returns every readable entry in the store, sorted by key.
func (s *Store) Entries() ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+fileExt))
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, p := range paths {
		e, err := readEntry(p)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Clear removes all cache entries and lock files. Other files in the
// directory (such as the session log) are left alone.
func (s *Store) Clear() error {
	var errs []error
	for _, pattern := range []string{"*" + fileExt, "*" + lockExt, "*.tmp"} {
		paths, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, p := range paths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
