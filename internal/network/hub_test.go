package network

import (
	"fmt"
	"testing"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

func ev(seq int) api.CoreEvent {
	return api.CoreEvent{Type: api.EventDreadLevel, Tick: uint64(seq)}
}

func TestBroadcastFIFOOrder(t *testing.T) {
	b := NewBroadcaster(16)
	sub := b.Register("renderer", api.RoleRenderer)

	for i := 1; i <= 5; i++ {
		b.Broadcast(ev(i))
	}

	got := sub.Drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 events, got %d", len(got))
	}
	for i, e := range got {
		if e.Tick != uint64(i+1) {
			t.Errorf("event %d: tick = %d, want %d", i, e.Tick, i+1)
		}
	}
}

func TestOverflowDropsOldest(t *testing.T) {
	b := NewBroadcaster(4)
	sub := b.Register("audio", api.RoleAudio)

	for i := 1; i <= 7; i++ {
		b.Broadcast(ev(i))
	}

	if sub.Dropped() != 3 {
		t.Fatalf("dropped = %d, want 3", sub.Dropped())
	}

	got := sub.Drain()
	if len(got) != 4 {
		t.Fatalf("expected 4 events after overflow, got %d", len(got))
	}
	// Newest events survive, oldest are gone.
	for i, e := range got {
		if e.Tick != uint64(i+4) {
			t.Errorf("event %d: tick = %d, want %d", i, e.Tick, i+4)
		}
	}
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	b := NewBroadcaster(2)
	slow := b.Register("slow", api.RoleRenderer)
	fast := b.Register("fast", api.RoleAudio)

	for i := 1; i <= 10; i++ {
		b.Broadcast(ev(i))
		// The fast subscriber keeps up.
		fast.Drain()
	}

	if fast.Dropped() != 0 {
		t.Errorf("fast subscriber dropped %d events, want 0", fast.Dropped())
	}
	if slow.Dropped() != 8 {
		t.Errorf("slow subscriber dropped %d events, want 8", slow.Dropped())
	}
}

func TestSendToTargetsOneSubscriber(t *testing.T) {
	b := NewBroadcaster(8)
	a := b.Register("a", api.RoleRenderer)
	c := b.Register("c", api.RoleAudio)

	b.SendTo("a", ev(1))

	if got := a.Drain(); len(got) != 1 {
		t.Errorf("a received %d events, want 1", len(got))
	}
	if got := c.Drain(); len(got) != 0 {
		t.Errorf("c received %d events, want 0", len(got))
	}
	// Unknown id is a silent no-op.
	b.SendTo("ghost", ev(2))
}

func TestReregisterReplacesSubscriber(t *testing.T) {
	b := NewBroadcaster(8)
	old := b.Register("viewer", api.RoleRenderer)
	b.Broadcast(ev(1))

	replacement := b.Register("viewer", api.RoleRenderer)
	b.Broadcast(ev(2))

	if b.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d, want 1", b.SubscriberCount())
	}
	// The closed subscriber stops receiving.
	if got := old.Drain(); len(got) != 1 {
		t.Errorf("old subscriber has %d events, want 1", len(got))
	}
	got := replacement.Drain()
	if len(got) != 1 || got[0].Tick != 2 {
		t.Errorf("replacement received %v, want single event with tick 2", got)
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	b := NewBroadcaster(8)
	sub := b.Register("x", api.RoleObserver)
	b.Unregister("x")

	if b.HasSubscriber("x") {
		t.Fatal("subscriber still present after Unregister")
	}
	b.Broadcast(ev(1))
	if got := sub.Drain(); len(got) != 0 {
		t.Errorf("unregistered subscriber received %d events", len(got))
	}
}

func TestDroppedTotalAggregates(t *testing.T) {
	b := NewBroadcaster(1)
	for i := 0; i < 3; i++ {
		b.Register(fmt.Sprintf("s%d", i), api.RoleRenderer)
	}
	b.Broadcast(ev(1))
	b.Broadcast(ev(2))

	if b.DroppedTotal() != 3 {
		t.Errorf("DroppedTotal = %d, want 3", b.DroppedTotal())
	}
}
