// Package mesh defines the domain records shared by the state engine:
// peer nodes, messages, reactions, and the merge rules applied when the
// radio delivers the same logical record more than once.
package mesh

import (
	"fmt"
	"time"
)

// NodeID is the stable 32-bit address of a peer device on the mesh.
type NodeID uint32

// PacketID identifies a transmission for deduplication. Messages
// synthesized locally (status lines, drafts) carry no packet id and are
// never merged.
type PacketID uint32

// Broadcast is the recipient address for channel-wide messages.
const Broadcast NodeID = 0xFFFFFFFF

// Hex renders the id the way device firmware prints it (!hex).
func (id NodeID) Hex() string {
	return fmt.Sprintf("!%08x", uint32(id))
}

// DeliveryState tracks the transport acknowledgement lifecycle of a
// sent message.
type DeliveryState int

const (
	DeliveryNone DeliveryState = iota
	DeliveryPending
	DeliveryDelivered
	DeliveryFailed
)

// String returns the badge text shown next to a message.
func (s DeliveryState) String() string {
	switch s {
	case DeliveryPending:
		return "pending"
	case DeliveryDelivered:
		return "delivered"
	case DeliveryFailed:
		return "failed"
	default:
		return ""
	}
}

// Coordinate is a GPS fix. Altitude is meters above sea level.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// Node is one known peer device. Optional fields use pointers; nil
// means "no data available" and is never allowed to overwrite real
// data on merge.
type Node struct {
	ID        NodeID      `json:"id"`
	ShortName string      `json:"shortName,omitempty"`
	LongName  string      `json:"longName,omitempty"`
	SNR       *float64    `json:"snr,omitempty"`
	RSSI      *int        `json:"rssi,omitempty"`
	LastHeard time.Time   `json:"lastHeard"`
	Battery   *int        `json:"battery,omitempty"`
	Position  *Coordinate `json:"position,omitempty"`

	// DistanceM is derived from Position and the operator's own
	// coordinate; nil when no coordinate source resolves.
	DistanceM *float64 `json:"-"`

	Relayed bool   `json:"relayed,omitempty"` // heard via a secondary gateway, not directly
	Pinned  bool   `json:"pinned,omitempty"`  // user-set, survives merges
	Note    string `json:"note,omitempty"`
}

// DisplayName returns the composite label used in lists: the long name
// with the short name appended, falling back to the hex id.
func (n Node) DisplayName() string {
	switch {
	case n.LongName != "" && n.ShortName != "":
		return fmt.Sprintf("%s (%s)", n.LongName, n.ShortName)
	case n.LongName != "":
		return n.LongName
	case n.ShortName != "":
		return n.ShortName
	default:
		return n.ID.Hex()
	}
}

// SNRDisplay returns the numeric form or "-" when no reading exists.
func (n Node) SNRDisplay() string {
	if n.SNR == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *n.SNR)
}

// RSSIDisplay returns the numeric form or "-" when no reading exists.
func (n Node) RSSIDisplay() string {
	if n.RSSI == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n.RSSI)
}

// DistanceDisplay returns the formatted distance or "-" when no
// coordinate source resolves.
func (n Node) DistanceDisplay() string {
	if n.DistanceM == nil {
		return "-"
	}
	return FormatDistance(*n.DistanceM)
}

// Reaction is one emoji tapback on a message.
type Reaction struct {
	Emoji string `json:"emoji"`
	From  NodeID `json:"from"`
}

// Message is one text transmission or delivery-tracked unit.
type Message struct {
	PacketID  *PacketID     `json:"packetId,omitempty"`
	From      NodeID        `json:"from"`
	To        NodeID        `json:"to"`
	Channel   int           `json:"channel"`
	Body      string        `json:"body"`
	RxTime    time.Time     `json:"rxTime"`
	Delivery  DeliveryState `json:"delivery,omitempty"`
	Reactions []Reaction    `json:"reactions,omitempty"`
	Encrypted bool          `json:"encrypted,omitempty"`
	Relayed   bool          `json:"relayed,omitempty"`
	Alert     bool          `json:"alert,omitempty"`
}

// Direct reports whether the message targets a specific node rather
// than a broadcast channel.
func (m Message) Direct() bool {
	return m.To != Broadcast
}

// HasReaction reports whether reactor already left emoji on m.
func (m Message) HasReaction(emoji string, reactor NodeID) bool {
	for _, r := range m.Reactions {
		if r.Emoji == emoji && r.From == reactor {
			return true
		}
	}
	return false
}
