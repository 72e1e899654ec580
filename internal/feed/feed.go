// Package feed ingests already-decoded mesh events. The external radio
// decoder writes one JSON event per line to a file or FIFO; this
// package reads that stream on a single goroutine and dispatches each
// event into the engine, satisfying its single-writer model.
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"meshdeck/internal/mesh"
	"meshdeck/internal/state"
)

// Event is one decoded line from the radio decoder. Type selects which
// payload field is populated.
type Event struct {
	Type string `json:"type"` // "node", "message", "delivery", "reaction"

	Node    *mesh.Node    `json:"node,omitempty"`
	Message *mesh.Message `json:"message,omitempty"`

	// Delivery events.
	PacketID mesh.PacketID      `json:"packetId,omitempty"`
	Delivery mesh.DeliveryState `json:"delivery,omitempty"`

	// Reaction events.
	Emoji   string      `json:"emoji,omitempty"`
	Reactor mesh.NodeID `json:"reactor,omitempty"`
}

// Dispatch routes one event into the engine. Unknown types and events
// missing their payload are recorded in the debug log and dropped.
func Dispatch(e *state.Engine, ev Event) {
	switch ev.Type {
	case "node":
		if ev.Node == nil {
			e.Logf("node event without payload")
			return
		}
		e.HandleNodeUpdate(*ev.Node)
	case "message":
		if ev.Message == nil {
			e.Logf("message event without payload")
			return
		}
		e.HandleMessage(*ev.Message)
	case "delivery":
		e.HandleDelivery(ev.PacketID, ev.Delivery)
	case "reaction":
		e.HandleReaction(ev.Emoji, ev.Reactor, ev.PacketID)
	default:
		e.Logf("unknown event type %q", ev.Type)
	}
}

// Consume reads JSON-lines events from r until EOF or ctx
// cancellation. Malformed lines are logged and skipped; ingest never
// aborts on bad input.
func Consume(ctx context.Context, e *state.Engine, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			e.Logf("malformed event line: %v", err)
			continue
		}
		Dispatch(e, ev)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read feed: %w", err)
	}
	return nil
}

// Start opens the feed path and consumes it on a background goroutine.
// It returns immediately; read failures are logged, not fatal.
func Start(ctx context.Context, e *state.Engine, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	go func() {
		defer file.Close()
		if err := Consume(ctx, e, file); err != nil && ctx.Err() == nil {
			log.Printf("feed stopped: %v", err)
		}
	}()
	return nil
}
