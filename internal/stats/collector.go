package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks copy progress using lock-free atomic counters.
type Collector struct {
	bytesCopied atomic.Int64
	blocks      atomic.Int64
	bytesTotal  atomic.Int64 // budget; 0 when unbounded
	startTime   time.Time

	// Ring buffer — written only by the presenter's Tick(), not the engine.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per second
	ringIdx    int
	ringCount  int // samples written so far, capped at ringSize
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetBytesTotal records the copy budget when one is known up front.
func (c *Collector) SetBytesTotal(n int64) { c.bytesTotal.Store(n) }

// AddBytesCopied atomically adds to the copied byte count.
func (c *Collector) AddBytesCopied(n int64) { c.bytesCopied.Add(n) }

// AddBlocks atomically adds to the completed block count.
func (c *Collector) AddBlocks(n int64) { c.blocks.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BytesCopied int64
	Blocks      int64
	BytesTotal  int64
	Elapsed     time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		BytesCopied: c.bytesCopied.Load(),
		Blocks:      c.blocks.Load(),
		BytesTotal:  c.bytesTotal.Load(),
		Elapsed:     c.Elapsed(),
	}
}

// Tick snapshots the byte delta into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	currentBytes := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	delta := currentBytes - c.lastBytes
	c.lastBytes = currentBytes

	c.throughput[c.ringIdx] = delta
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := seconds
	if count > c.ringCount {
		count = c.ringCount
	}
	if count == 0 {
		return 0
	}
	var sum int64
	for i := 0; i < count; i++ {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
// Returns 0 when the budget is unbounded or the speed is unknown.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf("bytes=%d blocks=%d total=%d", s.BytesCopied, s.Blocks, s.BytesTotal)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
