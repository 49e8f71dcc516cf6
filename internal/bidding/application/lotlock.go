package application

import "sync"

// lotLocks hands out one mutex per lot so that bids on the same lot are
// serialized in-process while bids on different lots proceed fully in
// parallel. Entries are kept for the process lifetime; the set of live lots
// is small and bounded by the catalog.
type lotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLotLocks() *lotLocks {
	return &lotLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for lotID and returns its unlock func.
func (l *lotLocks) Lock(lotID string) func() {
	l.mu.Lock()
	m, ok := l.locks[lotID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[lotID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
