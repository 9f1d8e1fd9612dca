// Package sessionlock serializes turns per session. Two concurrent turns for
// the same session would otherwise race on the read-modify-write progress
// cycle; with the keyed mutex the second turn simply waits for the first.
package sessionlock

import "sync"

type KeyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// Lock acquires the mutex for the given key and returns the unlock function.
//
//	defer locks.Lock(sessionID)()
func (m *KeyedMutex) Lock(key string) func() {
	value, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
