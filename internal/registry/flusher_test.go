package registry

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlusherCoalesces(t *testing.T) {
	var flushes int32
	f := NewFlusher(50*time.Millisecond, func() error {
		atomic.AddInt32(&flushes, 1)
		return nil
	})
	defer f.Stop()

	// a burst of mutations inside the window yields one write
	for i := 0; i < 10; i++ {
		f.Schedule()
		time.Sleep(time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&flushes))
}

func TestFlusherFlushNowCancelsPending(t *testing.T) {
	var flushes int32
	f := NewFlusher(50*time.Millisecond, func() error {
		atomic.AddInt32(&flushes, 1)
		return nil
	})
	defer f.Stop()

	f.Schedule()
	assert.NoError(t, f.FlushNow())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&flushes))
}

func TestFlusherStopCancelsWithoutWriting(t *testing.T) {
	var flushes int32
	f := NewFlusher(50*time.Millisecond, func() error {
		atomic.AddInt32(&flushes, 1)
		return nil
	})

	f.Schedule()
	f.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&flushes))
}

func TestFlusherScheduleAfterStop(t *testing.T) {
	var flushes int32
	f := NewFlusher(20*time.Millisecond, func() error {
		atomic.AddInt32(&flushes, 1)
		return nil
	})
	defer f.Stop()

	f.Schedule()
	f.Stop()
	f.Schedule()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&flushes))
}
