package ui

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rawdd/internal/event"
	"rawdd/internal/stats"
)

func TestNewPresenterSelection(t *testing.T) {
	collector := stats.NewCollector()

	t.Run("quiet wins", func(t *testing.T) {
		p := NewPresenter(Config{Quiet: true, IsTTY: true, Stats: collector})
		assert.IsType(t, &quietPresenter{}, p)
	})

	t.Run("non-tty gets plain", func(t *testing.T) {
		p := NewPresenter(Config{IsTTY: false, Stats: collector})
		assert.IsType(t, &plainPresenter{}, p)
	})

	t.Run("no-progress gets plain", func(t *testing.T) {
		p := NewPresenter(Config{IsTTY: true, NoProgress: true, Stats: collector})
		assert.IsType(t, &plainPresenter{}, p)
	})

	t.Run("tty gets inline", func(t *testing.T) {
		p := NewPresenter(Config{IsTTY: true, Stats: collector})
		assert.IsType(t, &inlinePresenter{}, p)
	})
}

func TestQuietPresenterSilent(t *testing.T) {
	collector := stats.NewCollector()
	p := &quietPresenter{stats: collector}

	events := make(chan Event, 4)
	events <- Event{Type: event.CopyStarted}
	events <- Event{Type: event.BlockCopied, Size: 1024}
	events <- Event{Type: event.CopyCompleted, Size: 1024}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Empty(t, p.Summary())
}

func TestPlainPresenterVerifyEvents(t *testing.T) {
	var out, errOut bytes.Buffer
	collector := stats.NewCollector()
	p := &plainPresenter{w: &out, errW: &errOut, stats: collector}

	events := make(chan Event, 4)
	events <- Event{Type: event.VerifyStarted}
	events <- Event{Type: event.VerifyFailed}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Contains(t, out.String(), "verifying...")
	assert.Contains(t, out.String(), "MISMATCH")
}

func TestPlainPresenterSummary(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddBytesCopied(2048)
	collector.AddBlocks(2)
	p := &plainPresenter{w: &bytes.Buffer{}, errW: &bytes.Buffer{}, stats: collector}

	s := p.Summary()
	assert.Contains(t, s, "2.0 KiB copied")
	assert.Contains(t, s, "2 blocks")
}

func TestInlinePresenterDrawsAndClears(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetBytesTotal(4096)
	collector.AddBytesCopied(1024)

	p := &inlinePresenter{w: &out, stats: collector}
	events := make(chan Event, 2)
	events <- Event{Type: event.BlockCopied, Size: 1024, Remaining: 3072}
	close(events)

	require.NoError(t, p.Run(events))

	got := out.String()
	assert.Contains(t, got, "\r")
	assert.Contains(t, got, "3.0 KiB remain")
	// The final clear overwrites the line with spaces.
	assert.True(t, strings.HasSuffix(got, "\r"))
}

func TestInlinePresenterUnboundedBudget(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.AddBytesCopied(512)

	p := &inlinePresenter{w: &out, stats: collector}
	p.draw()

	assert.Contains(t, out.String(), "512 B copied")
}

func TestInlinePresenterClampsToTerminalWidth(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetBytesTotal(1 << 30)
	collector.AddBytesCopied(1 << 20)

	p := &inlinePresenter{w: &out, stats: collector, width: 20}
	p.draw()

	line := strings.TrimPrefix(out.String(), "\r")
	assert.LessOrEqual(t, utf8.RuneCountInString(line), 19,
		"a wrapped line cannot be overwritten in place")
}
