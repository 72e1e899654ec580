package store

import (
	"testing"

	"meshdeck/internal/mesh"
)

const own = mesh.NodeID(0x01)

func directMsg(id uint32, from, to mesh.NodeID, body string) mesh.Message {
	return mesh.Message{PacketID: pid(id), From: from, To: to, Body: body}
}

func testResolver(id mesh.NodeID) (string, string) {
	if id == 0x42 {
		return "Basecamp", "#50FA7B"
	}
	return "Node " + id.Hex(), ""
}

func TestEnsure_CreatesLazilyAndOnce(t *testing.T) {
	r := NewConversationRegistry(testResolver)

	c := r.Ensure(0x42)
	if c.Name != "Basecamp" || c.Color != "#50FA7B" {
		t.Fatalf("resolved conversation = %q/%q", c.Name, c.Color)
	}
	if again := r.Ensure(0x42); again != c {
		t.Fatal("Ensure created a second conversation for the same partner")
	}

	unknown := r.Ensure(0x99)
	if unknown.Name != "Node !00000099" {
		t.Fatalf("fallback label = %q", unknown.Name)
	}
}

func TestAddOrUpdate_PartnerResolution(t *testing.T) {
	r := NewConversationRegistry(testResolver)

	// Outbound: sender is own, partner is the recipient.
	r.AddOrUpdate(directMsg(1, own, 0x42, "on my way"), own)
	// Inbound: sender is the partner.
	r.AddOrUpdate(directMsg(2, 0x42, own, "copy that"), own)

	c, ok := r.Get(0x42)
	if !ok {
		t.Fatal("conversation missing")
	}
	if len(c.Messages) != 2 {
		t.Fatalf("messages = %d, want both directions in one conversation", len(c.Messages))
	}
	if len(r.List()) != 1 {
		t.Fatalf("conversations = %d, want 1", len(r.List()))
	}
}

func TestAddOrUpdate_UnreadOnlyForInbound(t *testing.T) {
	r := NewConversationRegistry(testResolver)

	r.AddOrUpdate(directMsg(1, own, 0x42, "ping"), own)
	if c, _ := r.Get(0x42); c.Unread {
		t.Fatal("own outbound message raised unread")
	}

	r.AddOrUpdate(directMsg(2, 0x42, own, "pong"), own)
	if c, _ := r.Get(0x42); !c.Unread {
		t.Fatal("inbound message did not raise unread")
	}
	if r.UnreadCount() != 1 {
		t.Fatalf("UnreadCount = %d, want 1", r.UnreadCount())
	}

	r.MarkRead(0x42)
	if r.UnreadCount() != 0 {
		t.Fatalf("UnreadCount = %d after MarkRead, want 0", r.UnreadCount())
	}
}

func TestAddOrUpdate_DedupWithinConversation(t *testing.T) {
	r := NewConversationRegistry(testResolver)

	r.AddOrUpdate(directMsg(7, 0x42, own, "hello"), own)
	r.AddOrUpdate(directMsg(7, 0x42, own, ""), own)

	c, _ := r.Get(0x42)
	if len(c.Messages) != 1 {
		t.Fatalf("messages = %d, want 1 after duplicate", len(c.Messages))
	}
	if c.Messages[0].Body != "hello" {
		t.Fatalf("body = %q, want hello preserved", c.Messages[0].Body)
	}
}

func TestClear_KeepsConversation(t *testing.T) {
	r := NewConversationRegistry(testResolver)
	r.AddOrUpdate(directMsg(1, 0x42, own, "hello"), own)

	r.Clear(0x42)

	c, ok := r.Get(0x42)
	if !ok {
		t.Fatal("Clear deleted the conversation itself")
	}
	if len(c.Messages) != 0 || c.Unread {
		t.Fatalf("Clear left state behind: %d messages, unread=%v", len(c.Messages), c.Unread)
	}
	if c.Name != "Basecamp" {
		t.Fatal("Clear dropped the resolved name")
	}
}

func TestConversationReactionAndDelivery(t *testing.T) {
	r := NewConversationRegistry(testResolver)
	r.AddOrUpdate(directMsg(7, own, 0x42, "hello"), own)

	if !r.ApplyReaction("❤️", 0x42, 7) {
		t.Fatal("reaction on known packet reported miss")
	}
	r.ApplyReaction("❤️", 0x42, 7)
	if r.ApplyReaction("❤️", 0x42, 999) {
		t.Fatal("reaction on unknown packet reported hit")
	}

	r.ApplyDelivery(7, mesh.DeliveryDelivered)
	r.ApplyDelivery(7, mesh.DeliveryNone)

	c, _ := r.Get(0x42)
	if len(c.Messages[0].Reactions) != 1 {
		t.Fatalf("reactions = %v, want 1", c.Messages[0].Reactions)
	}
	if c.Messages[0].Delivery != mesh.DeliveryDelivered {
		t.Fatalf("delivery = %v, want delivered", c.Messages[0].Delivery)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	r := NewConversationRegistry(testResolver)
	r.AddOrUpdate(directMsg(7, 0x42, own, "hello"), own)

	c, _ := r.Get(0x42)
	c.Messages[0].Body = "mutated"

	again, _ := r.Get(0x42)
	if again.Messages[0].Body != "hello" {
		t.Fatalf("caller mutation leaked into registry: %q", again.Messages[0].Body)
	}
}
