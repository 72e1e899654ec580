package mesh

import (
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestMergeNode_EmptyFieldsPreserveExisting(t *testing.T) {
	existing := Node{
		ID:        0x10,
		ShortName: "ALFA",
		LongName:  "Alpha Station",
		SNR:       floatPtr(8.5),
		RSSI:      intPtr(-92),
		Note:      "rooftop",
	}
	incoming := Node{ID: 0x10, LastHeard: time.Unix(1000, 0)}

	merged := MergeNode(existing, incoming)

	if merged.ShortName != "ALFA" || merged.LongName != "Alpha Station" {
		t.Fatalf("names overwritten by empty incoming: %q / %q", merged.ShortName, merged.LongName)
	}
	if merged.SNR == nil || *merged.SNR != 8.5 {
		t.Fatalf("SNR overwritten by absent incoming: %v", merged.SNR)
	}
	if merged.RSSI == nil || *merged.RSSI != -92 {
		t.Fatalf("RSSI overwritten by absent incoming: %v", merged.RSSI)
	}
	if merged.Note != "rooftop" {
		t.Fatalf("note overwritten: %q", merged.Note)
	}
	if !merged.LastHeard.Equal(time.Unix(1000, 0)) {
		t.Fatalf("LastHeard should always take incoming, got %v", merged.LastHeard)
	}
}

func TestMergeNode_NonEmptyFieldsReplace(t *testing.T) {
	existing := Node{ID: 0x10, ShortName: "ALFA", SNR: floatPtr(8.5)}
	incoming := Node{ID: 0x10, ShortName: "ALF2", LongName: "Alpha II", SNR: floatPtr(3.25)}

	merged := MergeNode(existing, incoming)

	if merged.ShortName != "ALF2" {
		t.Fatalf("ShortName = %q, want ALF2", merged.ShortName)
	}
	if merged.LongName != "Alpha II" {
		t.Fatalf("LongName = %q, want Alpha II", merged.LongName)
	}
	if merged.SNR == nil || *merged.SNR != 3.25 {
		t.Fatalf("SNR = %v, want 3.25", merged.SNR)
	}
}

func TestMergeNode_PinnedIsSticky(t *testing.T) {
	merged := MergeNode(Node{ID: 1, Pinned: true}, Node{ID: 1, Pinned: false})
	if !merged.Pinned {
		t.Fatal("pinned flag cleared by update")
	}
	merged = MergeNode(Node{ID: 1}, Node{ID: 1, Pinned: true})
	if !merged.Pinned {
		t.Fatal("pinned flag not adopted from incoming")
	}
}

func TestMergeMessage_BodyRule(t *testing.T) {
	pid := PacketID(7)
	existing := Message{PacketID: &pid, Body: "hello mesh"}

	merged := MergeMessage(existing, Message{PacketID: &pid, Body: ""})
	if merged.Body != "hello mesh" {
		t.Fatalf("empty body erased existing, got %q", merged.Body)
	}

	merged = MergeMessage(existing, Message{PacketID: &pid, Body: "edited"})
	if merged.Body != "edited" {
		t.Fatalf("non-empty body not adopted, got %q", merged.Body)
	}
}

func TestMergeMessage_DeliveryNeverRegressesToNone(t *testing.T) {
	pid := PacketID(7)
	existing := Message{PacketID: &pid, Delivery: DeliveryDelivered}

	merged := MergeMessage(existing, Message{PacketID: &pid, Delivery: DeliveryNone})
	if merged.Delivery != DeliveryDelivered {
		t.Fatalf("delivery regressed to %v", merged.Delivery)
	}

	merged = MergeMessage(Message{PacketID: &pid, Delivery: DeliveryPending},
		Message{PacketID: &pid, Delivery: DeliveryFailed})
	if merged.Delivery != DeliveryFailed {
		t.Fatalf("delivery = %v, want failed", merged.Delivery)
	}
}

func TestMergeMessage_ScalarsAlwaysReplace(t *testing.T) {
	pid := PacketID(7)
	existing := Message{PacketID: &pid, From: 1, To: Broadcast, Channel: 0, Encrypted: true}
	incoming := Message{PacketID: &pid, From: 2, To: 9, Channel: 3, RxTime: time.Unix(55, 0)}

	merged := MergeMessage(existing, incoming)
	if merged.From != 2 || merged.To != 9 || merged.Channel != 3 {
		t.Fatalf("scalars not replaced: %+v", merged)
	}
	if merged.Encrypted {
		t.Fatal("encrypted flag should take incoming value unconditionally")
	}
	if !merged.RxTime.Equal(time.Unix(55, 0)) {
		t.Fatalf("RxTime = %v", merged.RxTime)
	}
}

func TestMergeMessage_ReactionUnionIdempotent(t *testing.T) {
	pid := PacketID(7)
	existing := Message{PacketID: &pid, Reactions: []Reaction{{Emoji: "👍", From: 5}}}
	incoming := Message{PacketID: &pid, Reactions: []Reaction{
		{Emoji: "👍", From: 5},
		{Emoji: "🔥", From: 6},
	}}

	merged := MergeMessage(existing, incoming)
	if len(merged.Reactions) != 2 {
		t.Fatalf("reactions = %v, want exactly 2", merged.Reactions)
	}
}

func TestNodeDisplayName(t *testing.T) {
	cases := []struct {
		name string
		node Node
		want string
	}{
		{"both", Node{ID: 0xAB, LongName: "Base Camp", ShortName: "BASE"}, "Base Camp (BASE)"},
		{"long_only", Node{ID: 0xAB, LongName: "Base Camp"}, "Base Camp"},
		{"short_only", Node{ID: 0xAB, ShortName: "BASE"}, "BASE"},
		{"neither", Node{ID: 0xAB}, "!000000ab"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.node.DisplayName(); got != tc.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSignalDisplaySentinels(t *testing.T) {
	var n Node
	if n.SNRDisplay() != "-" || n.RSSIDisplay() != "-" || n.DistanceDisplay() != "-" {
		t.Fatalf("absent metrics should display as dash: %q %q %q",
			n.SNRDisplay(), n.RSSIDisplay(), n.DistanceDisplay())
	}
	n.SNR = floatPtr(6.25)
	n.RSSI = intPtr(-88)
	if n.SNRDisplay() != "6.2" && n.SNRDisplay() != "6.3" {
		t.Fatalf("SNRDisplay = %q", n.SNRDisplay())
	}
	if n.RSSIDisplay() != "-88" {
		t.Fatalf("RSSIDisplay = %q", n.RSSIDisplay())
	}
}
