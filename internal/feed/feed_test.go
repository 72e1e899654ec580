package feed

import (
	"context"
	"strings"
	"testing"

	"meshdeck/internal/mesh"
	"meshdeck/internal/state"
)

func TestConsume_DispatchesEventTypes(t *testing.T) {
	e := state.New(0x01, nil)
	stream := strings.Join([]string{
		`{"type":"node","node":{"id":34,"longName":"Ridge"}}`,
		`{"type":"message","message":{"packetId":100,"from":34,"to":4294967295,"channel":1,"body":"hello"}}`,
		`{"type":"reaction","emoji":"👍","reactor":34,"packetId":100}`,
		`{"type":"delivery","packetId":100,"delivery":2}`,
	}, "\n")

	if err := Consume(context.Background(), e, strings.NewReader(stream)); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	if n, ok := e.Node(34); !ok || n.LongName != "Ridge" {
		t.Fatalf("node event not applied: %+v ok=%v", n, ok)
	}
	m, ok := e.FindByPacketID(100)
	if !ok {
		t.Fatal("message event not applied")
	}
	if m.Channel != 1 || m.Body != "hello" {
		t.Fatalf("message = %+v", m)
	}
	if len(m.Reactions) != 1 || m.Reactions[0].From != 34 {
		t.Fatalf("reaction not applied: %v", m.Reactions)
	}
	if m.Delivery != mesh.DeliveryDelivered {
		t.Fatalf("delivery = %v, want delivered", m.Delivery)
	}
}

func TestConsume_MalformedLinesAreSkipped(t *testing.T) {
	e := state.New(0x01, nil)
	stream := strings.Join([]string{
		`{"type":"message","message":{"packetId":1,"from":34,"to":4294967295,"body":"ok"}}`,
		`{not json`,
		``,
		`{"type":"warp-drive"}`,
		`{"type":"message"}`,
		`{"type":"message","message":{"packetId":2,"from":34,"to":4294967295,"body":"also ok"}}`,
	}, "\n")

	if err := Consume(context.Background(), e, strings.NewReader(stream)); err != nil {
		t.Fatalf("Consume aborted on bad input: %v", err)
	}

	if got := len(e.Feed()); got != 2 {
		t.Fatalf("feed = %d, want 2 good messages", got)
	}
	lines := e.DebugLines()
	if len(lines) != 3 {
		t.Fatalf("debug lines = %d, want 3 (malformed, unknown type, missing payload): %v", len(lines), lines)
	}
}

func TestConsume_CancelledContext(t *testing.T) {
	e := state.New(0x01, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Consume(ctx, e, strings.NewReader(`{"type":"delivery","packetId":1,"delivery":1}`+"\n"))
	if err == nil {
		t.Fatal("Consume ignored cancelled context")
	}
}
