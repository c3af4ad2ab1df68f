package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"rawdd/internal/event"
	"rawdd/internal/stats"
)

// DefaultBlockSize is the read/write block size when none is given.
const DefaultBlockSize = 4 << 20 // 4 MiB

// Job describes a single block copy between two streams.
type Job struct {
	Source string
	Dest   string

	// SrcSkip and DestSkip are byte offsets seeked to from the start of the
	// respective stream before any transfer.
	SrcSkip  int64
	DestSkip int64

	// BlockSize is the size of each read. Must be at least 1.
	BlockSize int

	// Count is the byte budget. Negative means copy until the source is
	// exhausted.
	Count int64

	CreateDest    bool
	TruncateDest  bool
	SrcExclusive  bool
	DestExclusive bool
	DestReadable  bool

	// BWLimit caps throughput in bytes/sec. Zero means unlimited.
	BWLimit int64

	// Verify re-reads both copied ranges after the loop and compares
	// BLAKE3 digests.
	Verify bool

	// Events receives best-effort progress observations. May be nil.
	// Emission never affects control flow or the copy outcome.
	Events chan<- event.Event

	// Stats collects byte and block counters. May be nil.
	Stats *stats.Collector
}

// Result reports the outcome of a copy job.
type Result struct {
	BytesCopied int64
	Blocks      int64
	Err         error
}

// Run executes the job: open source, open destination, seek, then the
// read/write loop. Every handle is released on every exit path. There are no
// retries anywhere; the first I/O failure aborts the job.
func Run(job Job) Result {
	if job.Stats == nil {
		job.Stats = stats.NewCollector()
	}
	if job.Count >= 0 {
		job.Stats.SetBytesTotal(job.Count)
	}

	res := runCopy(job)
	if res.Err != nil {
		emitEvent(job.Events, event.Event{Type: event.CopyFailed, Error: res.Err})
		return res
	}
	emitEvent(job.Events, event.Event{Type: event.CopyCompleted, Size: res.BytesCopied})

	if job.Verify && res.BytesCopied > 0 {
		if err := verifyCopy(job, res.BytesCopied); err != nil {
			res.Err = err
		}
	}
	return res
}

func runCopy(job Job) Result {
	var res Result

	if job.BlockSize < 1 {
		res.Err = fmt.Errorf("block size must be at least 1, got %d", job.BlockSize)
		return res
	}
	if job.SrcSkip < 0 || job.DestSkip < 0 {
		res.Err = errors.New("skip offsets must not be negative")
		return res
	}

	src, err := openFile(job.Source, os.O_RDONLY, 0, job.SrcExclusive)
	if err != nil {
		res.Err = fmt.Errorf("open source %s: %w", job.Source, err)
		return res
	}
	defer src.Close()

	if job.SrcSkip > 0 {
		if _, err := src.Seek(job.SrcSkip, io.SeekStart); err != nil {
			res.Err = fmt.Errorf("seek source to %d: %w", job.SrcSkip, err)
			return res
		}
	}

	dstFlag := os.O_WRONLY
	if job.DestReadable {
		dstFlag = os.O_RDWR
	}
	if job.CreateDest {
		dstFlag |= os.O_CREATE
	}
	if job.TruncateDest {
		dstFlag |= os.O_TRUNC
	}
	dst, err := openFile(job.Dest, dstFlag, 0o644, job.DestExclusive)
	if err != nil {
		res.Err = fmt.Errorf("open destination %s: %w", job.Dest, err)
		return res
	}
	defer dst.Close()

	if job.DestSkip > 0 {
		if _, err := dst.Seek(job.DestSkip, io.SeekStart); err != nil {
			res.Err = fmt.Errorf("seek destination to %d: %w", job.DestSkip, err)
			return res
		}
	}

	emitEvent(job.Events, event.Event{Type: event.CopyStarted, Remaining: job.Count})

	var reader io.Reader = src
	if job.BWLimit > 0 {
		limiter := NewBWLimiter(job.BWLimit)
		// The burst must cover one full block read or WaitN rejects it.
		if job.BlockSize > limiter.Burst() {
			limiter.SetBurst(job.BlockSize)
		}
		reader = newRateLimitedReader(context.Background(), src, limiter)
	}

	return copyBlocks(job, reader, dst)
}

// copyBlocks is the block loop between an already positioned reader and
// writer. It is split from the open/seek plumbing so the write path can be
// exercised without real files.
func copyBlocks(job Job, src io.Reader, dst io.Writer) Result {
	var res Result
	buf := make([]byte, job.BlockSize)
	remaining := job.Count // negative: unbounded

	for remaining != 0 {
		toRead := len(buf)
		if remaining > 0 && remaining < int64(toRead) {
			toRead = int(remaining)
		}

		n, rerr := src.Read(buf[:toRead])
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			if werr != nil {
				res.Err = fmt.Errorf("write %d bytes to destination: %w", n, werr)
				return res
			}
			if w != n {
				res.Err = fmt.Errorf("wrote %d of %d bytes: %w", w, n, io.ErrShortWrite)
				return res
			}

			// The budget decreases by the read count, never the write count.
			if remaining > 0 {
				remaining -= int64(n)
			}
			res.BytesCopied += int64(n)
			res.Blocks++
			job.Stats.AddBytesCopied(int64(n))
			job.Stats.AddBlocks(1)
			emitEvent(job.Events, event.Event{
				Type:      event.BlockCopied,
				Size:      int64(n),
				Remaining: remaining,
			})
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break // source exhausted, not a failure
			}
			res.Err = fmt.Errorf("read %d bytes from source: %w", toRead, rerr)
			return res
		}
		if n == 0 {
			// A zero-byte read terminates the loop even with budget left.
			break
		}
	}

	return res
}

// verifyCopy re-reads the copied ranges of source and destination and
// compares their digests. Runs after both handles are closed so exclusive
// destinations can be reopened.
func verifyCopy(job Job, copied int64) error {
	emitEvent(job.Events, event.Event{Type: event.VerifyStarted})

	srcSum, err := hashRange(job.Source, job.SrcSkip, copied)
	if err != nil {
		emitEvent(job.Events, event.Event{Type: event.VerifyFailed, Error: err})
		return fmt.Errorf("verify source: %w", err)
	}
	dstSum, err := hashRange(job.Dest, job.DestSkip, copied)
	if err != nil {
		emitEvent(job.Events, event.Event{Type: event.VerifyFailed, Error: err})
		return fmt.Errorf("verify destination: %w", err)
	}
	if srcSum != dstSum {
		err := fmt.Errorf("verify mismatch: source %s destination %s", srcSum, dstSum)
		emitEvent(job.Events, event.Event{Type: event.VerifyFailed, Error: err})
		return err
	}

	emitEvent(job.Events, event.Event{Type: event.VerifyOK})
	return nil
}

// emitEvent sends ev best-effort: a nil or full channel drops the event
// rather than blocking the copy loop.
func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
