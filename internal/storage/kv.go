// ABOUTME: Key-value Repository backed by Charm Cloud KV or a local Badger directory.
// ABOUTME: Whole records are stored as JSON under entry:<user>:<date> and profile:<user> keys.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/coach/internal/models"
)

const (
	// CharmDBName is the Charm KV database holding coach data.
	CharmDBName = "coach"

	// DefaultCharmHost is the Charm server used when none is configured.
	DefaultCharmHost = "charm.2389.dev"

	entryPrefix   = "entry:"
	profilePrefix = "profile:"
)

// kvBackend is the subset of the Charm KV API the store needs.
// *kv.KV satisfies it directly; badgerKV adapts a plain Badger DB.
type kvBackend interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	IsReadOnly() bool
	Close() error
}

// KVStore is a Repository over a key-value backend.
type KVStore struct {
	kv       kvBackend
	mu       sync.RWMutex
	locks    keyLock
	autoSync bool
	now      func() time.Time
}

// OpenCharm opens the Charm KV database, pulling remote data on startup.
// Writes sync back to Charm Cloud automatically. When another process holds
// the local lock the store opens read-only.
func OpenCharm(host string) (*KVStore, error) {
	if host == "" {
		host = DefaultCharmHost
	}
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, unavailable("set charm host", err)
	}

	db, err := kv.OpenWithDefaultsFallback(CharmDBName)
	if err != nil {
		return nil, unavailable("open charm kv", err)
	}

	s := newKVStore(db)
	s.autoSync = true
	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return s, nil
}

// OpenBadger opens a local Badger database in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*KVStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, unavailable("create badger directory", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, unavailable("open badger", err)
	}
	return newKVStore(&badgerKV{db: db}), nil
}

func newKVStore(b kvBackend) *KVStore {
	return &KVStore{kv: b, now: utcNow}
}

// CharmUserID returns the Charm account ID for the linked device.
func CharmUserID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Close closes the KV database.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Close()
}

// IsReadOnly reports whether another process holds the database lock.
func (s *KVStore) IsReadOnly() bool {
	return s.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud. It is a no-op for Badger.
func (s *KVStore) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kv.IsReadOnly() {
		return nil
	}
	if err := s.kv.Sync(); err != nil {
		return unavailable("sync", err)
	}
	return nil
}

// SetAutoSync enables or disables sync after every write.
func (s *KVStore) SetAutoSync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSync = enabled
}

// Reset wipes local data and rebuilds it from Charm Cloud.
func (s *KVStore) Reset() error {
	r, ok := s.kv.(interface{ Reset() error })
	if !ok {
		return fmt.Errorf("reset: not supported by this backend")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.Reset()
}

// UpsertEntry stores e as a whole record, keeping the ID of any entry it replaces.
func (s *KVStore) UpsertEntry(e *models.Entry) error {
	key := entryKey(e.UserID, e.Date)
	unlock := s.locks.Lock(key)
	defer unlock()

	existing, err := getJSON[models.Entry](s, key)
	if err != nil {
		return unavailable("upsert entry", err)
	}
	if existing != nil {
		e.ID = existing.ID
	}
	e.Timestamp = s.now()

	if err := s.setJSON(key, e); err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// GetEntry returns the entry for (user, date), or nil if there is none.
func (s *KVStore) GetEntry(userID, date string) (*models.Entry, error) {
	e, err := getJSON[models.Entry](s, entryKey(userID, date))
	if err != nil {
		return nil, unavailable("get entry", err)
	}
	return e, nil
}

// ListEntries returns a user's entries on or after since, newest date first.
func (s *KVStore) ListEntries(userID, since string) ([]*models.Entry, error) {
	keys, err := s.userEntryKeys(userID)
	if err != nil {
		return nil, unavailable("list entries", err)
	}

	var entries []*models.Entry
	for _, key := range keys {
		if date := key[strings.LastIndex(key, ":")+1:]; date < since {
			continue
		}
		e, err := getJSON[models.Entry](s, key)
		if err != nil {
			return nil, unavailable("list entries", err)
		}
		if e != nil {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
	return entries, nil
}

// DeleteEntry removes the entry for (user, date) and reports whether one existed.
func (s *KVStore) DeleteEntry(userID, date string) (bool, error) {
	key := entryKey(userID, date)
	unlock := s.locks.Lock(key)
	defer unlock()

	existing, err := getJSON[models.Entry](s, key)
	if err != nil {
		return false, unavailable("delete entry", err)
	}
	if existing == nil {
		return false, nil
	}
	if err := s.write(func() error { return s.kv.Delete([]byte(key)) }); err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	return true, nil
}

// EntryStats summarises a user's entries from their keys alone.
func (s *KVStore) EntryStats(userID string) (*models.EntryStats, error) {
	keys, err := s.userEntryKeys(userID)
	if err != nil {
		return nil, unavailable("entry stats", err)
	}

	weekStart := models.WeekStart(models.LocalDate(s.now()))
	stats := &models.EntryStats{}
	for _, key := range keys {
		date := key[strings.LastIndex(key, ":")+1:]
		stats.TotalCount++
		if stats.MinDate == "" || date < stats.MinDate {
			stats.MinDate = date
		}
		if date > stats.MaxDate {
			stats.MaxDate = date
		}
		if date >= weekStart {
			stats.CountLast7Days++
		}
	}
	return stats, nil
}

// GetProfile returns the user's profile, storing a default one on first access.
func (s *KVStore) GetProfile(userID string) (*models.Profile, error) {
	key := profileKey(userID)
	p, err := getJSON[models.Profile](s, key)
	if err != nil {
		return nil, unavailable("get profile", err)
	}
	if p != nil {
		return p, nil
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	// Another writer may have saved one while we waited.
	p, err = getJSON[models.Profile](s, key)
	if err != nil {
		return nil, unavailable("get profile", err)
	}
	if p != nil {
		return p, nil
	}

	p = models.NewProfile(userID)
	p.UpdatedAt = s.now()
	if s.kv.IsReadOnly() {
		return p, nil
	}
	if err := s.setJSON(key, p); err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}
	return p, nil
}

// SaveProfile replaces the user's profile.
func (s *KVStore) SaveProfile(p *models.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("save profile: user_id is required")
	}
	key := profileKey(p.UserID)
	unlock := s.locks.Lock(key)
	defer unlock()

	p.UpdatedAt = s.now()
	if err := s.setJSON(key, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ListUsers returns every user with an entry or a profile.
func (s *KVStore) ListUsers() ([]string, error) {
	keys, err := s.keys()
	if err != nil {
		return nil, unavailable("list users", err)
	}

	seen := make(map[string]bool)
	for _, key := range keys {
		switch {
		case strings.HasPrefix(key, profilePrefix):
			seen[strings.TrimPrefix(key, profilePrefix)] = true
		case strings.HasPrefix(key, entryPrefix):
			rest := strings.TrimPrefix(key, entryPrefix)
			if i := strings.LastIndex(rest, ":"); i > 0 {
				seen[rest[:i]] = true
			}
		}
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

// userEntryKeys returns the entry keys belonging to exactly this user.
func (s *KVStore) userEntryKeys(userID string) ([]string, error) {
	keys, err := s.keys()
	if err != nil {
		return nil, err
	}
	prefix := entryKey(userID, "")
	var out []string
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		// Skip users whose ID extends this one, e.g. "ann" vs "ann:b".
		if date := strings.TrimPrefix(key, prefix); len(date) == len(models.DateLayout) && !strings.Contains(date, ":") {
			out = append(out, key)
		}
	}
	return out, nil
}

func (s *KVStore) keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.kv.Keys()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, string(k))
	}
	return keys, nil
}

// getJSON returns nil, nil for a missing key.
func getJSON[T any](s *KVStore, key string) (*T, error) {
	s.mu.RLock()
	data, err := s.kv.Get([]byte(key))
	s.mu.RUnlock()
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("corrupt record %s: %w", key, err)
	}
	return &v, nil
}

func (s *KVStore) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.write(func() error { return s.kv.Set([]byte(key), data) })
}

// write runs a mutation then syncs when auto-sync is on. The sync runs after
// the write lock is released so readers are not held up by the network.
func (s *KVStore) write(fn func() error) error {
	autoSync, err := s.mutate(fn)
	if err != nil {
		return err
	}
	if autoSync {
		_ = s.Sync()
	}
	return nil
}

func (s *KVStore) mutate(fn func() error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv.IsReadOnly() {
		return false, unavailable("write", ErrReadOnly)
	}
	if err := fn(); err != nil {
		return false, unavailable("write", err)
	}
	return s.autoSync, nil
}

// badgerKV adapts a local Badger database to kvBackend.
type badgerKV struct {
	db *badger.DB
}

func (b *badgerKV) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (b *badgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (b *badgerKV) Sync() error      { return nil }
func (b *badgerKV) IsReadOnly() bool { return false }
func (b *badgerKV) Close() error     { return b.db.Close() }
