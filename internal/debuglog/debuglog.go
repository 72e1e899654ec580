// Package debuglog keeps a bounded in-memory buffer of diagnostic
// lines for the operator. Oldest lines fall off first once the buffer
// is full.
package debuglog

import (
	"fmt"
	"time"
)

// Capacity is the maximum number of retained lines.
const Capacity = 10_000

// Buffer is a fixed-capacity FIFO ring of log lines. The zero value is
// not usable; call New.
type Buffer struct {
	ring  []string
	start int
	count int
	now   func() time.Time
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{ring: make([]string, Capacity), now: time.Now}
}

// Logf formats and appends one line, evicting the oldest line when the
// buffer is full.
func (b *Buffer) Logf(format string, args ...any) {
	line := b.now().Format("15:04:05") + " " + fmt.Sprintf(format, args...)
	idx := (b.start + b.count) % len(b.ring)
	b.ring[idx] = line
	if b.count < len(b.ring) {
		b.count++
	} else {
		b.start = (b.start + 1) % len(b.ring)
	}
}

// Lines returns the retained lines, oldest first.
func (b *Buffer) Lines() []string {
	out := make([]string, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.ring[(b.start+i)%len(b.ring)]
	}
	return out
}

// Len returns how many lines are retained.
func (b *Buffer) Len() int { return b.count }

// Reset discards all lines.
func (b *Buffer) Reset() {
	b.start = 0
	b.count = 0
}
