package mesh

// Merge rules for records that arrive more than once with the same
// logical identity. Field classes:
//
//   - text and optional fields: incoming wins only when it carries data
//   - scalar status fields: incoming always wins
//   - delivery state: incoming wins unless it is DeliveryNone
//   - pinned: monotonic union, never cleared by an update
//
// The merge is deliberately not commutative; callers must apply updates
// in true delivery order.

// MergeNode folds an incoming sighting of the same node into the
// existing record and returns the result. The id never changes.
func MergeNode(existing, incoming Node) Node {
	merged := existing

	if incoming.ShortName != "" {
		merged.ShortName = incoming.ShortName
	}
	if incoming.LongName != "" {
		merged.LongName = incoming.LongName
	}
	if incoming.Note != "" {
		merged.Note = incoming.Note
	}
	if incoming.SNR != nil {
		merged.SNR = incoming.SNR
	}
	if incoming.RSSI != nil {
		merged.RSSI = incoming.RSSI
	}
	if incoming.Battery != nil {
		merged.Battery = incoming.Battery
	}
	if incoming.Position != nil {
		merged.Position = incoming.Position
	}

	merged.LastHeard = incoming.LastHeard
	merged.Relayed = incoming.Relayed
	merged.Pinned = existing.Pinned || incoming.Pinned

	return merged
}

// MergeMessage folds a retransmission carrying the same packet id into
// the existing message and returns the result. Reactions accumulate;
// a duplicate reactor+emoji pair is dropped.
func MergeMessage(existing, incoming Message) Message {
	merged := existing

	if incoming.Body != "" {
		merged.Body = incoming.Body
	}
	if incoming.Delivery != DeliveryNone {
		merged.Delivery = incoming.Delivery
	}

	merged.From = incoming.From
	merged.To = incoming.To
	merged.Channel = incoming.Channel
	merged.RxTime = incoming.RxTime
	merged.Encrypted = incoming.Encrypted
	merged.Relayed = incoming.Relayed
	merged.Alert = incoming.Alert

	for _, r := range incoming.Reactions {
		if !merged.HasReaction(r.Emoji, r.From) {
			merged.Reactions = append(merged.Reactions, r)
		}
	}

	return merged
}
