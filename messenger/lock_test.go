package messenger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("CHAT01")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)

	// Released keys leave no entry behind
	locks.mu.Lock()
	defer locks.mu.Unlock()
	require.Empty(t, locks.locks)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locks := newKeyedMutex()

	unlockA := locks.Lock("CHAT01")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("CHAT02")
		unlockB()
		close(done)
	}()

	// Must not deadlock while CHAT01 is held
	<-done
}
