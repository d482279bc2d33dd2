package keymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockUnlock(t *testing.T) {
	km := New()
	km.Lock("a")
	km.Unlock("a")
	km.Lock("a")
	km.Unlock("a")
}

func TestSerializesSameKey(t *testing.T) {
	km := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("emp-001|2026-08-10")
			counter++
			km.Unlock("emp-001|2026-08-10")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	km := New()

	km.Lock("a")
	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()
	<-done
	km.Unlock("a")
}

func TestEntriesAreReclaimed(t *testing.T) {
	km := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("k")
			km.Unlock("k")
		}()
	}
	wg.Wait()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
