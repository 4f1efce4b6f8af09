package telemetry

import (
	"encoding/json"
	"fmt"
	"testing"
)

type fakePublisher struct {
	connected bool
	topics    []string
	payloads  [][]byte
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) IsConnected() bool { return p.connected }

func TestEmitRejectsUnknownEventName(t *testing.T) {
	Clear()
	if _, err := Emit("info", "made.up", "", nil); err == nil {
		t.Fatal("expected error for unregistered event name")
	}
	if len(Snapshot()) != 0 {
		t.Fatal("rejected event reached the buffer")
	}
}

func TestEmitBuffersAndMarshals(t *testing.T) {
	Clear()
	b, err := Emit("info", "task.started", "starting", map[string]interface{}{"index": 0})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatalf("emitted payload is not valid JSON: %v", err)
	}
	if e.Name != "task.started" || e.Message != "starting" {
		t.Errorf("unexpected payload: %+v", e)
	}

	events := Snapshot()
	if len(events) != 1 || events[0].Name != "task.started" {
		t.Errorf("unexpected buffer contents: %+v", events)
	}
}

func TestRingBufferWrapsOldestFirst(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Add(Event{Message: fmt.Sprintf("e%d", i)})
	}

	got := rb.Snapshot()
	if len(got) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(got))
	}
	for i, want := range []string{"e2", "e3", "e4"} {
		if got[i].Message != want {
			t.Errorf("snapshot[%d] = %q, want %q", i, got[i].Message, want)
		}
	}
}

func TestRecentEventsLimitsToTail(t *testing.T) {
	Clear()
	for i := 0; i < 4; i++ {
		Emit("info", "align.update", fmt.Sprintf("c%d", i), nil)
	}

	recent := RecentEvents(2)
	if len(recent) != 2 {
		t.Fatalf("recent length = %d, want 2", len(recent))
	}
	if recent[0].Message != "c2" || recent[1].Message != "c3" {
		t.Errorf("unexpected tail: %+v", recent)
	}
}

func TestSubscriberReceivesLiveEvents(t *testing.T) {
	Clear()
	sub := Subscribe()
	defer Unsubscribe(sub)

	Emit("info", "system.startup", "", nil)

	select {
	case e := <-sub:
		if e.Name != "system.startup" {
			t.Errorf("received %q, want system.startup", e.Name)
		}
	default:
		t.Fatal("no event delivered to subscriber")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	Clear()
	sub := Subscribe()
	defer Unsubscribe(sub)

	// Overfill the subscriber buffer; Emit must not block.
	for i := 0; i < 100; i++ {
		Emit("info", "align.update", "", nil)
	}

	if len(sub) != cap(sub) {
		t.Errorf("subscriber buffer = %d, want full at %d", len(sub), cap(sub))
	}
}

func TestUplinkMirrorsEventsWhenConnected(t *testing.T) {
	Clear()
	defer SetUplink(nil, "")

	pub := &fakePublisher{}
	SetUplink(pub, "banyan/telemetry")

	// Disconnected uplink is skipped entirely.
	Emit("info", "system.startup", "", nil)
	if len(pub.topics) != 0 {
		t.Fatal("published while disconnected")
	}

	pub.connected = true
	Emit("info", "system.shutdown", "", nil)
	if len(pub.topics) != 1 || pub.topics[0] != "banyan/telemetry" {
		t.Fatalf("unexpected publishes: %v", pub.topics)
	}

	var e Event
	if err := json.Unmarshal(pub.payloads[0], &e); err != nil {
		t.Fatalf("uplink payload is not valid JSON: %v", err)
	}
	if e.Name != "system.shutdown" {
		t.Errorf("uplink payload = %+v", e)
	}
}
