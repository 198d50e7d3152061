package incident

import (
	"context"
	"sync"
)

// keyedMutex serializes holders of the same key in the order Lock was called.
// Each holder waits for its predecessor's channel to close, so a key forms a
// FIFO chain. Keys are dropped once nobody holds or waits on them.
type keyedMutex struct {
	mu      sync.Mutex
	tails   map[string]chan struct{}
	waiters map[string]int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		tails:   make(map[string]chan struct{}),
		waiters: make(map[string]int),
	}
}

func (k *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	prev := k.tails[key]
	mine := make(chan struct{})
	k.tails[key] = mine
	k.waiters[key]++
	k.mu.Unlock()

	release := func() {
		k.mu.Lock()
		k.waiters[key]--
		if k.waiters[key] == 0 {
			delete(k.waiters, key)
			delete(k.tails, key)
		}
		k.mu.Unlock()
		close(mine)
	}

	if prev == nil {
		return release, nil
	}

	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		// Keep the chain intact: our successor may only run once prev is done.
		go func() {
			<-prev
			release()
		}()
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) pending(key string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.waiters[key]
}
