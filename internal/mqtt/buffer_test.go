package mqtt

import "testing"

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(4)
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxFIFO(t *testing.T) {
	o := newOutbox(4)
	for i := 0; i < 3; i++ {
		o.push(outboxMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if o.len() != 3 {
		t.Errorf("len: got %d, want 3", o.len())
	}

	got := o.drain()
	for i, m := range got {
		if m.payload[0] != byte(i) {
			t.Errorf("item %d: got payload %d", i, m.payload[0])
		}
	}
	if o.len() != 0 {
		t.Errorf("len after drain: got %d", o.len())
	}
}

func TestOutboxDropsOldest(t *testing.T) {
	o := newOutbox(3)
	for i := 0; i < 5; i++ {
		o.push(outboxMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := o.drain()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, m := range got {
		if want := byte(i + 2); m.payload[0] != want {
			t.Errorf("item %d: got payload %d, want %d", i, m.payload[0], want)
		}
	}
}

func TestOutboxReusableAfterDrain(t *testing.T) {
	o := newOutbox(2)
	o.push(outboxMsg{topic: "a"})
	o.push(outboxMsg{topic: "b"})
	o.push(outboxMsg{topic: "c"})
	o.drain()

	if o.dropped != 0 {
		t.Errorf("dropped not reset: %d", o.dropped)
	}

	o.push(outboxMsg{topic: "d"})
	got := o.drain()
	if len(got) != 1 || got[0].topic != "d" {
		t.Errorf("got %+v", got)
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(1)
	o.push(outboxMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	m := o.drain()[0]
	if m.topic != TopicSystem || string(m.payload) != "x" || m.qos != 1 || !m.retained {
		t.Errorf("fields not preserved: %+v", m)
	}
}
