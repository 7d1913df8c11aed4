package gallery

import "sync"

// lockTable hands out one mutex per character id. Entries are never
// reclaimed; the table grows with the roster and each entry is tiny.
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its unlock function.
func (t *lockTable) lock(key string) func() {
	t.mu.Lock()
	if t.entries == nil {
		t.entries = make(map[string]*sync.Mutex)
	}
	entry, ok := t.entries[key]
	if !ok {
		entry = &sync.Mutex{}
		t.entries[key] = entry
	}
	t.mu.Unlock()

	entry.Lock()
	return entry.Unlock
}
