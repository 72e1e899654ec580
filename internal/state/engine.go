package state

import (
	"sort"
	"sync"

	"meshdeck/internal/debuglog"
	"meshdeck/internal/mesh"
	"meshdeck/internal/nodes"
	"meshdeck/internal/store"
)

// Engine owns all in-memory mesh state and serializes every mutation
// behind one lock. Views query it read-only; the feed goroutine is the
// single writer.
type Engine struct {
	mu sync.RWMutex

	nodes    *nodes.Registry
	messages *store.MessageStore
	convos   *store.ConversationRegistry
	unread   *store.UnreadTracker
	log      *debuglog.Buffer

	ownID       mesh.NodeID
	operatorPos *mesh.Coordinate
}

// New builds an engine for the operator's node id. operatorPos is the
// explicitly configured position, nil when unset; it takes precedence
// over the own node's reported GPS when computing distances.
func New(ownID mesh.NodeID, operatorPos *mesh.Coordinate) *Engine {
	e := &Engine{
		ownID:       ownID,
		operatorPos: operatorPos,
		unread:      store.NewUnreadTracker(),
		log:         debuglog.New(),
	}
	e.nodes = nodes.NewRegistry(ownID, func() *mesh.Coordinate { return e.operatorPos })
	e.convos = store.NewConversationRegistry(func(id mesh.NodeID) (string, string) {
		return e.nodes.Label(id), nodes.ColorFor(id)
	})
	e.messages = store.NewMessageStore()
	return e
}

// OwnID returns the operator's node id.
func (e *Engine) OwnID() mesh.NodeID { return e.ownID }

// SetOperatorPosition swaps the configured position and refreshes all
// distances against the new fallback chain.
func (e *Engine) SetOperatorPosition(pos *mesh.Coordinate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.operatorPos = pos
	e.nodes.RecalculateAll()
}

// HandleNodeUpdate ingests a decoded node sighting.
func (e *Engine) HandleNodeUpdate(n mesh.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes.Upsert(n)
}

// HandleMessage ingests a decoded message. Broadcasts land in the
// unified feed and their channel bucket and feed the channel unread
// counters; direct messages additionally land in the partner's
// conversation, which tracks its own unread flag instead.
func (e *Engine) HandleMessage(m mesh.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged := e.messages.Append(m)
	if m.Direct() {
		e.convos.AddOrUpdate(m, e.ownID)
	} else if !merged {
		// A retransmission merged into an existing row is not new
		// traffic and must not bump counters.
		e.unread.OnAppend(m.Channel, m.From, e.ownID)
	}
}

// HandleDelivery applies a transport acknowledgement. The packet id
// may live in the channel space, the conversation space, both, or
// neither; each store is tried independently.
func (e *Engine) HandleDelivery(target mesh.PacketID, state mesh.DeliveryState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inFeed := e.messages.ApplyDelivery(target, state)
	inConvo := e.convos.ApplyDelivery(target, state)
	if !inFeed && !inConvo {
		e.log.Logf("delivery update for unknown packet %d (%s)", target, state)
	}
}

// HandleReaction applies an emoji reaction, fanning out the same way
// delivery updates do.
func (e *Engine) HandleReaction(emoji string, reactor mesh.NodeID, target mesh.PacketID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inFeed := e.messages.ApplyReaction(emoji, reactor, target)
	inConvo := e.convos.ApplyReaction(emoji, reactor, target)
	if !inFeed && !inConvo {
		e.log.Logf("reaction %s from %s for unknown packet %d", emoji, reactor.Hex(), target)
	}
}

// SetActiveChannel records which channel view the operator opened and
// marks it read. Pass a negative channel when leaving channel views.
func (e *Engine) SetActiveChannel(channel int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unread.Activate(channel)
}

// OpenConversation marks the partner's conversation read.
func (e *Engine) OpenConversation(partner mesh.NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.convos.MarkRead(partner)
}

// ClearChannel drops a channel's history everywhere it lives.
func (e *Engine) ClearChannel(channel int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages.ClearChannel(channel)
	e.unread.MarkRead(channel)
	e.log.Logf("cleared channel %d", channel)
}

// ClearConversation empties the partner's history but keeps the
// conversation.
func (e *Engine) ClearConversation(partner mesh.NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.convos.Clear(partner)
}

// Logf appends a diagnostic line to the debug buffer.
func (e *Engine) Logf(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Logf(format, args...)
}

// Reset clears all in-memory state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes.Reset()
	e.messages.Reset()
	e.convos.Reset()
	e.unread.Reset()
	e.log.Reset()
}

// SoftReset clears transient connection state (per-node signal
// readings) while preserving nodes, channels, messages, and
// conversations for rehydration by the durable collaborator.
func (e *Engine) SoftReset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes.ClearSignalMetrics()
	e.log.Logf("soft reset: cleared link metrics")
}

// Nodes returns the filtered, sorted node list.
func (e *Engine) Nodes(query string) []mesh.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nodes.FilteredList(query)
}

// Node returns one node by id.
func (e *Engine) Node(id mesh.NodeID) (mesh.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nodes.Lookup(id)
}

// NodeLabel returns the display name for id, synthesizing one for
// unknown nodes.
func (e *Engine) NodeLabel(id mesh.NodeID) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nodes.Label(id)
}

// Feed returns the unified message feed in arrival order.
func (e *Engine) Feed() []mesh.Message {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.messages.Feed()
}

// ChannelMessages returns one channel's messages in arrival order.
func (e *Engine) ChannelMessages(channel int) []mesh.Message {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.messages.Channel(channel)
}

// Channels returns the populated channel indices in ascending order.
func (e *Engine) Channels() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	chs := e.messages.Channels()
	sort.Ints(chs)
	return chs
}

// FindByPacketID resolves a packet id in the unified feed.
func (e *Engine) FindByPacketID(id mesh.PacketID) (mesh.Message, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.messages.FindByPacketID(id)
}

// ChannelUnread returns one channel's unread count.
func (e *Engine) ChannelUnread(channel int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.unread.Count(channel)
}

// UnreadTotal sums unread counts across all channels.
func (e *Engine) UnreadTotal() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.unread.Total()
}

// Conversations returns all conversations sorted by display name.
func (e *Engine) Conversations() []store.Conversation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	convos := e.convos.List()
	sort.Slice(convos, func(i, j int) bool { return convos[i].Name < convos[j].Name })
	return convos
}

// Conversation returns the history with one partner.
func (e *Engine) Conversation(partner mesh.NodeID) (store.Conversation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.convos.Get(partner)
}

// UnreadConversations counts conversations with the unread flag set.
func (e *Engine) UnreadConversations() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.convos.UnreadCount()
}

// DebugLines returns the retained diagnostic lines, oldest first.
func (e *Engine) DebugLines() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Lines()
}
