package media

import "sync"

// keyLocks hands out one mutex per cache key so concurrent requests for
// the same blob download it once while different blobs proceed in
// parallel.
type keyLocks struct {
	mutex sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the lock for a key, creating it on first use
func (kl *keyLocks) get(key string) *sync.Mutex {
	kl.mutex.Lock()
	defer kl.mutex.Unlock()

	lock, exists := kl.locks[key]
	if !exists {
		lock = &sync.Mutex{}
		kl.locks[key] = lock
	}
	return lock
}

// Lock acquires the lock for a key
func (kl *keyLocks) Lock(key string) {
	kl.get(key).Lock()
}

// Unlock releases the lock for a key
func (kl *keyLocks) Unlock(key string) {
	kl.get(key).Unlock()
}
