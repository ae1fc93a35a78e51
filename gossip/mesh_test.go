package gossip

import (
	"testing"

	"senseye/belief"
)

// TestDedupPreventsDoubleDelivery covers a forwarding loop A->B->C->A: C
// receives the same origin/kind/sequence belief twice (once directly
// forwarded, once looped back) and OnBelief must fire only once.
func TestDedupPreventsDoubleDelivery(t *testing.T) {
	m := NewMesh("c", DefaultConfig())
	delivered := 0
	m.OnBelief = func(Message) { delivered++ }

	msg := Message{
		Kind:           KindBelief,
		OriginNodeID:   "a",
		SequenceNumber: 7,
		HopCount:       2,
		Belief:         &belief.Belief{OriginNodeID: "a", SequenceNumber: 7},
	}
	m.handle(msg)
	m.handle(msg) // looped back through the cycle
	if delivered != 1 {
		t.Fatalf("expected exactly 1 delivery, got %d", delivered)
	}
}

func TestOwnMessagesNeverDeliveredToSelf(t *testing.T) {
	m := NewMesh("a", DefaultConfig())
	delivered := 0
	m.OnBelief = func(Message) { delivered++ }
	m.handle(Message{Kind: KindBelief, OriginNodeID: "a", SequenceNumber: 1})
	if delivered != 0 {
		t.Fatalf("own-origin message should never be delivered back, got %d", delivered)
	}
}

func TestAnnounceWithSameSequenceDoesNotSuppressBelief(t *testing.T) {
	m := NewMesh("c", DefaultConfig())
	delivered := 0
	m.OnBelief = func(Message) { delivered++ }
	m.handle(Message{Kind: KindAnnounce, OriginNodeID: "a", SequenceNumber: 1})
	m.handle(Message{Kind: KindBelief, OriginNodeID: "a", SequenceNumber: 1})
	if delivered != 1 {
		t.Fatalf("expected 1 belief delivery (announce doesn't invoke OnBelief), got %d", delivered)
	}
}

func TestHopCountExhaustionStopsRelay(t *testing.T) {
	m := NewMesh("c", DefaultConfig())
	m.handle(Message{Kind: KindBelief, OriginNodeID: "a", SequenceNumber: 1, HopCount: 0})
	// No peers registered, so Broadcast is a no-op either way; this just
	// exercises that handling a zero-hop message doesn't panic or loop.
}
