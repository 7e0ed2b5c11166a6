package lifecycle

import (
	"sync"

	"github.com/google/uuid"
)

// KeyedMutex serializes work per goal. Different goals never block each other.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*refLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *KeyedMutex) Lock(key uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len reports how many keys are currently held or waited on.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
