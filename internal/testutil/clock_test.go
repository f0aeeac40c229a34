package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_Start(t *testing.T) {
	assert.Equal(t, int64(0), NewManualClock(0).Current())
	assert.Equal(t, int64(500), NewManualClock(500).Current())
}

func TestManualClock_AdvanceSetReset(t *testing.T) {
	clock := NewManualClock(0)

	assert.Equal(t, int64(24000), clock.Advance(24000))
	assert.Equal(t, int64(24001), clock.Advance(1))

	clock.Set(10)
	assert.Equal(t, int64(10), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
}

func TestManualClock_ThreadSafe(t *testing.T) {
	clock := NewManualClock(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				clock.Advance(1)
				_ = clock.Current()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), clock.Current())
}
