package seedstore

import (
	"fmt"
	"sync"
)

// keyMutex hands out one mutex per key, so check-then-write sequences on the
// same key are serialised while unrelated keys proceed in parallel.
type keyMutex struct {
	mapMtx  sync.Mutex
	mutexes map[string]*cntMutex
}

// cntMutex counts the callers holding or waiting for the mutex so the entry
// can be dropped once nobody needs it.
type cntMutex struct {
	cnt int
	sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{mutexes: make(map[string]*cntMutex)}
}

func (k *keyMutex) Lock(key string) {
	k.mapMtx.Lock()
	mtx, ok := k.mutexes[key]
	if ok {
		mtx.cnt++
	} else {
		mtx = &cntMutex{cnt: 1}
		k.mutexes[key] = mtx
	}
	k.mapMtx.Unlock()

	mtx.Lock()
}

func (k *keyMutex) Unlock(key string) {
	k.mapMtx.Lock()
	mtx, ok := k.mutexes[key]
	if !ok {
		k.mapMtx.Unlock()
		panic(fmt.Sprintf("double unlock for key %q", key))
	}
	mtx.cnt--
	if mtx.cnt == 0 {
		delete(k.mutexes, key)
	}
	k.mapMtx.Unlock()

	mtx.Unlock()
}
