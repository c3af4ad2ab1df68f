package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	const goroutines = 100
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				c.AddBytesCopied(256)
				c.AddBlocks(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	expected := int64(goroutines * opsPerGoroutine)
	assert.Equal(t, expected*256, s.BytesCopied)
	assert.Equal(t, expected, s.Blocks)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		BytesCopied: 4096,
		Blocks:      2,
		BytesTotal:  8192,
	}
	assert.Equal(t, "bytes=4096 blocks=2 total=8192", s.String())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.input))
		})
	}
}

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.startTime.IsZero())
	assert.InDelta(t, 0, c.Elapsed().Seconds(), 1)
}

func TestSetBytesTotal(t *testing.T) {
	c := NewCollector()
	c.SetBytesTotal(1024 * 1024)
	assert.Equal(t, int64(1024*1024), c.Snapshot().BytesTotal)
}

func TestRollingSpeed(t *testing.T) {
	c := NewCollector()
	assert.Zero(t, c.RollingSpeed(10), "no samples yet")

	c.AddBytesCopied(1000)
	c.Tick()
	c.AddBytesCopied(3000)
	c.Tick()

	// Two samples: 1000 and 3000 bytes.
	assert.InDelta(t, 2000, c.RollingSpeed(10), 0.001)
	assert.InDelta(t, 3000, c.RollingSpeed(1), 0.001)
}

func TestRollingSpeedWrapsRing(t *testing.T) {
	c := NewCollector()
	for i := 0; i < ringSize+10; i++ {
		c.AddBytesCopied(100)
		c.Tick()
	}
	assert.InDelta(t, 100, c.RollingSpeed(ringSize), 0.001)
}

func TestETA(t *testing.T) {
	c := NewCollector()
	assert.Zero(t, c.ETA(), "unbounded budget has no ETA")

	c.SetBytesTotal(10000)
	c.AddBytesCopied(1000)
	c.Tick()
	eta := c.ETA()
	assert.Greater(t, eta.Seconds(), 0.0)
}
