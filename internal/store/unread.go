package store

import (
	"meshdeck/internal/mesh"
)

// noActiveChannel is the active-channel value while the operator is
// looking at a non-channel view.
const noActiveChannel = -1

// UnreadTracker keeps per-channel unread counters, gated on the view
// the operator currently has open. Totals are derived, never stored.
type UnreadTracker struct {
	counts map[int]int
	active int
}

// NewUnreadTracker starts with no active channel.
func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{counts: make(map[int]int), active: noActiveChannel}
}

// OnAppend observes a newly appended channel message and bumps the
// channel's counter, unless the operator sent it or is already looking
// at that channel.
func (t *UnreadTracker) OnAppend(channel int, sender, own mesh.NodeID) {
	if sender == own {
		return
	}
	if channel == t.active {
		return
	}
	t.counts[channel]++
}

// Activate records the channel the operator switched to and marks it
// read. Pass a negative value when leaving the channel views.
func (t *UnreadTracker) Activate(channel int) {
	if channel < 0 {
		t.active = noActiveChannel
		return
	}
	t.active = channel
	t.MarkRead(channel)
}

// MarkRead zeroes one channel's counter.
func (t *UnreadTracker) MarkRead(channel int) {
	delete(t.counts, channel)
}

// Count returns one channel's unread counter.
func (t *UnreadTracker) Count(channel int) int {
	return t.counts[channel]
}

// Total sums the counters across all channels.
func (t *UnreadTracker) Total() int {
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// Reset zeroes all counters and forgets the active channel.
func (t *UnreadTracker) Reset() {
	t.counts = make(map[int]int)
	t.active = noActiveChannel
}
