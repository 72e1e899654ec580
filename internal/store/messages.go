// Package store owns the message-side state: the unified feed with its
// per-channel buckets, direct-message conversations, and unread
// bookkeeping. All three are kept consistent by the engine under one
// lock; nothing here locks on its own.
package store

import (
	"meshdeck/internal/mesh"
)

// MessageStore holds the unified message feed and per-channel buckets.
// The packet index is an internal acceleration structure and is rebuilt
// wholesale after bulk removals rather than patched in place.
type MessageStore struct {
	feed     []mesh.Message
	channels map[int][]mesh.Message
	index    map[mesh.PacketID]int // packet id -> position in feed
}

// NewMessageStore builds an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		channels: make(map[int][]mesh.Message),
		index:    make(map[mesh.PacketID]int),
	}
}

// Append ingests a message. A packet id already present merges in
// place; anything else inserts as new. Returns true when the message
// merged into an existing entry.
func (s *MessageStore) Append(m mesh.Message) bool {
	if m.PacketID != nil {
		if pos, ok := s.index[*m.PacketID]; ok {
			prev := s.feed[pos]
			merged := mesh.MergeMessage(prev, m)
			s.feed[pos] = merged
			s.propagateToBucket(prev.Channel, merged)
			return true
		}
	}

	s.feed = append(s.feed, m)
	s.channels[m.Channel] = append(s.channels[m.Channel], m)
	if m.PacketID != nil {
		s.index[*m.PacketID] = len(s.feed) - 1
	}
	return false
}

// propagateToBucket writes a merged message into its channel bucket. A
// merge can reassign the channel, in which case the entry moves out of
// the old bucket so no bucket holds a stale copy.
func (s *MessageStore) propagateToBucket(prevChannel int, merged mesh.Message) {
	if prevChannel != merged.Channel {
		s.channels[prevChannel] = removeByPacketID(s.channels[prevChannel], *merged.PacketID)
		s.channels[merged.Channel] = append(s.channels[merged.Channel], merged)
		return
	}
	bucket := s.channels[merged.Channel]
	for i := range bucket {
		if bucket[i].PacketID != nil && *bucket[i].PacketID == *merged.PacketID {
			bucket[i] = merged
			return
		}
	}
	// Bucket entry missing (should not happen); repair by appending.
	s.channels[merged.Channel] = append(bucket, merged)
}

func removeByPacketID(bucket []mesh.Message, id mesh.PacketID) []mesh.Message {
	out := bucket[:0]
	for _, m := range bucket {
		if m.PacketID != nil && *m.PacketID == id {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ClearChannel removes every message for the channel from both the
// bucket and the unified feed, then rebuilds the packet index from
// what remains.
func (s *MessageStore) ClearChannel(channel int) {
	delete(s.channels, channel)

	kept := s.feed[:0]
	for _, m := range s.feed {
		if m.Channel == channel {
			continue
		}
		kept = append(kept, m)
	}
	s.feed = kept
	s.rebuildIndex()
}

func (s *MessageStore) rebuildIndex() {
	s.index = make(map[mesh.PacketID]int, len(s.feed))
	for i, m := range s.feed {
		if m.PacketID != nil {
			s.index[*m.PacketID] = i
		}
	}
}

// FindByPacketID returns a copy of the feed entry for id.
func (s *MessageStore) FindByPacketID(id mesh.PacketID) (mesh.Message, bool) {
	pos, ok := s.index[id]
	if !ok {
		return mesh.Message{}, false
	}
	return s.feed[pos], true
}

// ApplyReaction appends a reaction to the target message in the feed
// and its channel bucket. Repeat taps by the same reactor with the
// same emoji are dropped. Returns false when the target is unknown.
func (s *MessageStore) ApplyReaction(emoji string, reactor mesh.NodeID, target mesh.PacketID) bool {
	pos, ok := s.index[target]
	if !ok {
		return false
	}
	m := s.feed[pos]
	if m.HasReaction(emoji, reactor) {
		return true
	}
	m.Reactions = append(m.Reactions, mesh.Reaction{Emoji: emoji, From: reactor})
	s.feed[pos] = m
	s.propagateToBucket(m.Channel, m)
	return true
}

// ApplyDelivery sets the delivery state on the feed and bucket copies,
// never regressing to DeliveryNone. Returns false when the target is
// unknown.
func (s *MessageStore) ApplyDelivery(target mesh.PacketID, state mesh.DeliveryState) bool {
	pos, ok := s.index[target]
	if !ok {
		return false
	}
	if state == mesh.DeliveryNone {
		return true
	}
	m := s.feed[pos]
	m.Delivery = state
	s.feed[pos] = m
	s.propagateToBucket(m.Channel, m)
	return true
}

// Feed returns a copy of the unified feed in arrival order.
func (s *MessageStore) Feed() []mesh.Message {
	return cloneMessages(s.feed)
}

// Channel returns a copy of one channel's bucket in arrival order.
func (s *MessageStore) Channel(channel int) []mesh.Message {
	return cloneMessages(s.channels[channel])
}

// Channels returns the channel indices that currently hold messages,
// unordered.
func (s *MessageStore) Channels() []int {
	out := make([]int, 0, len(s.channels))
	for ch := range s.channels {
		out = append(out, ch)
	}
	return out
}

// Reset drops everything.
func (s *MessageStore) Reset() {
	s.feed = nil
	s.channels = make(map[int][]mesh.Message)
	s.index = make(map[mesh.PacketID]int)
}

func cloneMessages(in []mesh.Message) []mesh.Message {
	if len(in) == 0 {
		return nil
	}
	out := make([]mesh.Message, len(in))
	copy(out, in)
	return out
}
