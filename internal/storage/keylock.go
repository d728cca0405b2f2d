// ABOUTME: Per-key mutex so writes to one entry or profile never interleave.
// ABOUTME: Locks are reference counted and dropped once no writer holds them.
package storage

import "sync"

type keyLock struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyLock) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func entryKey(userID, date string) string {
	return "entry:" + userID + ":" + date
}

func profileKey(userID string) string {
	return "profile:" + userID
}
