package store

import (
	"meshdeck/internal/mesh"
)

// Conversation is the direct-message history with one partner node.
// Name and color are resolved from the node registry when the
// conversation is created and stay fixed afterwards.
type Conversation struct {
	Partner  mesh.NodeID
	Name     string
	Color    string
	Messages []mesh.Message
	Unread   bool
}

// PartnerResolver supplies the display name and color for a partner
// node at conversation-creation time.
type PartnerResolver func(id mesh.NodeID) (name, color string)

// ConversationRegistry owns one conversation per direct-message
// partner. Its message space is independent from the unified feed: a
// packet id present here says nothing about the channel stores.
type ConversationRegistry struct {
	convos  map[mesh.NodeID]*Conversation
	resolve PartnerResolver
}

// NewConversationRegistry builds an empty registry around a resolver.
func NewConversationRegistry(resolve PartnerResolver) *ConversationRegistry {
	if resolve == nil {
		resolve = func(id mesh.NodeID) (string, string) { return "Node " + id.Hex(), "" }
	}
	return &ConversationRegistry{
		convos:  make(map[mesh.NodeID]*Conversation),
		resolve: resolve,
	}
}

// Ensure returns the conversation for partner, creating it lazily.
func (r *ConversationRegistry) Ensure(partner mesh.NodeID) *Conversation {
	if c, ok := r.convos[partner]; ok {
		return c
	}
	name, color := r.resolve(partner)
	c := &Conversation{Partner: partner, Name: name, Color: color}
	r.convos[partner] = c
	return c
}

// AddOrUpdate routes a direct message into the conversation with
// whichever endpoint is not own. Same-identity arrivals merge in
// place. The unread flag is raised only for inbound messages.
func (r *ConversationRegistry) AddOrUpdate(m mesh.Message, own mesh.NodeID) {
	partner := m.From
	if partner == own {
		partner = m.To
	}
	c := r.Ensure(partner)

	if m.PacketID != nil {
		for i := range c.Messages {
			if c.Messages[i].PacketID != nil && *c.Messages[i].PacketID == *m.PacketID {
				c.Messages[i] = mesh.MergeMessage(c.Messages[i], m)
				if m.From != own {
					c.Unread = true
				}
				return
			}
		}
	}

	c.Messages = append(c.Messages, m)
	if m.From != own {
		c.Unread = true
	}
}

// Get returns a copy of the conversation for partner.
func (r *ConversationRegistry) Get(partner mesh.NodeID) (Conversation, bool) {
	c, ok := r.convos[partner]
	if !ok {
		return Conversation{}, false
	}
	dup := *c
	dup.Messages = cloneMessages(c.Messages)
	return dup, true
}

// List returns copies of all conversations, unordered.
func (r *ConversationRegistry) List() []Conversation {
	out := make([]Conversation, 0, len(r.convos))
	for _, c := range r.convos {
		dup := *c
		dup.Messages = cloneMessages(c.Messages)
		out = append(out, dup)
	}
	return out
}

// Clear empties the conversation's history but keeps the conversation.
func (r *ConversationRegistry) Clear(partner mesh.NodeID) {
	if c, ok := r.convos[partner]; ok {
		c.Messages = nil
		c.Unread = false
	}
}

// MarkRead lowers the unread flag; called when the operator opens the
// conversation.
func (r *ConversationRegistry) MarkRead(partner mesh.NodeID) {
	if c, ok := r.convos[partner]; ok {
		c.Unread = false
	}
}

// UnreadCount returns how many conversations have the unread flag set.
func (r *ConversationRegistry) UnreadCount() int {
	count := 0
	for _, c := range r.convos {
		if c.Unread {
			count++
		}
	}
	return count
}

// ApplyReaction scans every conversation for the target packet id and
// appends the reaction where found, idempotently per reactor+emoji.
// There is no cross-store index, so a miss here is normal.
func (r *ConversationRegistry) ApplyReaction(emoji string, reactor mesh.NodeID, target mesh.PacketID) bool {
	for _, c := range r.convos {
		for i := range c.Messages {
			m := &c.Messages[i]
			if m.PacketID == nil || *m.PacketID != target {
				continue
			}
			if !m.HasReaction(emoji, reactor) {
				m.Reactions = append(m.Reactions, mesh.Reaction{Emoji: emoji, From: reactor})
			}
			return true
		}
	}
	return false
}

// ApplyDelivery scans every conversation for the target packet id and
// sets the delivery state where found, never regressing to
// DeliveryNone.
func (r *ConversationRegistry) ApplyDelivery(target mesh.PacketID, state mesh.DeliveryState) bool {
	for _, c := range r.convos {
		for i := range c.Messages {
			m := &c.Messages[i]
			if m.PacketID == nil || *m.PacketID != target {
				continue
			}
			if state != mesh.DeliveryNone {
				m.Delivery = state
			}
			return true
		}
	}
	return false
}

// Reset removes all conversations.
func (r *ConversationRegistry) Reset() {
	r.convos = make(map[mesh.NodeID]*Conversation)
}
