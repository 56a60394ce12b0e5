package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fired(d *Debouncer) bool {
	select {
	case <-d.C():
		return true
	default:
		return false
	}
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	d := NewDebouncer(clk, 300*time.Millisecond, 0)

	for _, text := range []string{"c", "ca", "cap"} {
		_, now := d.Submit(text)
		require.False(t, now)
		clk.Step(100 * time.Millisecond)
		require.False(t, fired(d), "window restarted by %q should not have elapsed", text)
	}

	clk.Step(199 * time.Millisecond)
	assert.False(t, fired(d))

	clk.Step(time.Millisecond)
	require.True(t, fired(d))

	text, ok := d.Fire()
	require.True(t, ok)
	assert.Equal(t, "cap", text)

	_, pending := d.Pending()
	assert.False(t, pending)
	assert.Nil(t, d.C())
}

func TestDebouncer_EmptyTextEmitsImmediately(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	d := NewDebouncer(clk, 300*time.Millisecond, 0)

	d.Submit("cap")
	text, now := d.Submit("")
	require.True(t, now)
	assert.Equal(t, "", text)

	_, pending := d.Pending()
	assert.False(t, pending, "empty submit should drop the pending text")

	clk.Step(time.Second)
	assert.False(t, fired(d))
}

func TestDebouncer_WhitespaceCountsAsEmpty(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(newFakeClock(), 300*time.Millisecond, 0)
	text, now := d.Submit("   ")
	assert.True(t, now)
	assert.Equal(t, "   ", text)
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	d := NewDebouncer(clk, 300*time.Millisecond, 0)

	_, ok := d.Flush()
	assert.False(t, ok, "flush with nothing pending is a no-op")

	d.Submit("headphones")
	text, ok := d.Flush()
	require.True(t, ok)
	assert.Equal(t, "headphones", text)

	clk.Step(time.Second)
	assert.False(t, fired(d), "flushed text must not fire again")
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	d := NewDebouncer(clk, 300*time.Millisecond, 0)

	assert.False(t, d.Cancel())

	d.Submit("lamp")
	assert.True(t, d.Cancel())

	clk.Step(time.Second)
	assert.False(t, fired(d))

	_, ok := d.Fire()
	assert.False(t, ok)
}

func TestDebouncer_MaxWaitCapsContinuousTyping(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	d := NewDebouncer(clk, 300*time.Millisecond, 500*time.Millisecond)

	d.Submit("h")
	clk.Step(200 * time.Millisecond)
	d.Submit("he")
	clk.Step(200 * time.Millisecond)
	d.Submit("hea") // 100ms left before the ceiling

	clk.Step(99 * time.Millisecond)
	assert.False(t, fired(d))

	clk.Step(time.Millisecond)
	require.True(t, fired(d))

	text, ok := d.Fire()
	require.True(t, ok)
	assert.Equal(t, "hea", text)
}

func TestDebouncer_MaxWaitElapsedEmitsOnSubmit(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	d := NewDebouncer(clk, 300*time.Millisecond, 500*time.Millisecond)

	d.Submit("h")
	clk.Step(250 * time.Millisecond)
	d.Submit("he")
	clk.Step(250 * time.Millisecond)

	// The timer for "he" fired at the ceiling, but the loop has not read it yet
	text, now := d.Submit("hea")
	require.True(t, now)
	assert.Equal(t, "hea", text)

	// A new burst starts fresh
	d.Submit("head")
	clk.Step(299 * time.Millisecond)
	assert.False(t, fired(d))
	clk.Step(time.Millisecond)
	assert.True(t, fired(d))
}

func TestDebouncer_ZeroWindow(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	d := NewDebouncer(clk, 0, 0)

	d.Submit("x")
	clk.Step(0)
	require.True(t, fired(d))

	text, ok := d.Fire()
	require.True(t, ok)
	assert.Equal(t, "x", text)
}
