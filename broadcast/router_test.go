package broadcast

import (
	"fmt"
	"testing"
	"time"

	"github.com/jtary/think-first-ai/agent"
)

func drain(sub *Subscriber) []agent.Event {
	var events []agent.Event
	for {
		select {
		case e := <-sub.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestPublishRoutesByKind(t *testing.T) {
	router := NewRouter(16)
	thoughts := router.Subscribe(agent.ChannelThoughts)
	outputs := router.Subscribe(agent.ChannelOutputs)

	router.Publish(agent.ThoughtEvent("thinking"))
	router.Publish(agent.IdleEvent(2 * time.Second))
	router.Publish(agent.OutputEvent("done"))

	got := drain(thoughts)
	if len(got) != 2 {
		t.Fatalf("thoughts channel expected 2 events, got %d", len(got))
	}
	if got[0].Kind != agent.EventThought || got[1].Kind != agent.EventIdle {
		t.Errorf("unexpected thoughts events: %+v", got)
	}

	got = drain(outputs)
	if len(got) != 1 || got[0].Kind != agent.EventOutput {
		t.Fatalf("outputs channel expected only the output event, got %+v", got)
	}
}

func TestFailedDeliveredToBothChannels(t *testing.T) {
	router := NewRouter(16)
	thoughts := router.Subscribe(agent.ChannelThoughts)
	outputs := router.Subscribe(agent.ChannelOutputs)

	router.Publish(agent.FailedEvent("backend error"))

	for name, sub := range map[string]*Subscriber{"thoughts": thoughts, "outputs": outputs} {
		got := drain(sub)
		if len(got) != 1 || got[0].Kind != agent.EventFailed {
			t.Errorf("%s channel expected the failed event, got %+v", name, got)
		}
	}
}

func TestDeliveryPreservesOrder(t *testing.T) {
	router := NewRouter(128)
	sub := router.Subscribe(agent.ChannelThoughts)

	for i := 0; i < 50; i++ {
		router.Publish(agent.ThoughtEvent(fmt.Sprintf("t%d", i)))
	}

	got := drain(sub)
	if len(got) != 50 {
		t.Fatalf("expected 50 events, got %d", len(got))
	}
	for i, e := range got {
		if e.Content != fmt.Sprintf("t%d", i) {
			t.Fatalf("order violated at %d: %q", i, e.Content)
		}
	}
}

func TestLateSubscriberGetsNoReplay(t *testing.T) {
	router := NewRouter(16)

	router.Publish(agent.ThoughtEvent("before"))
	sub := router.Subscribe(agent.ChannelThoughts)
	router.Publish(agent.ThoughtEvent("after"))

	got := drain(sub)
	if len(got) != 1 || got[0].Content != "after" {
		t.Fatalf("expected only post-subscription events, got %+v", got)
	}
}

func TestOverflowDropsOldest(t *testing.T) {
	router := NewRouter(3)
	sub := router.Subscribe(agent.ChannelThoughts)

	for i := 0; i < 10; i++ {
		router.Publish(agent.ThoughtEvent(fmt.Sprintf("t%d", i)))
	}

	got := drain(sub)
	if len(got) != 3 {
		t.Fatalf("expected queue capacity of 3, got %d events", len(got))
	}
	// Freshest events survive.
	want := []string{"t7", "t8", "t9"}
	for i := range want {
		if got[i].Content != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Content, want[i])
		}
	}
	if sub.Dropped() != 7 {
		t.Errorf("expected 7 dropped events, got %d", sub.Dropped())
	}
}

func TestUnsubscribeClosesQueue(t *testing.T) {
	router := NewRouter(16)
	sub := router.Subscribe(agent.ChannelThoughts)

	router.Unsubscribe(sub)

	if _, ok := <-sub.Events(); ok {
		t.Error("expected closed queue after unsubscribe")
	}
	if router.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", router.SubscriberCount())
	}

	// Publishing after unsubscribe must not panic.
	router.Publish(agent.ThoughtEvent("ghost"))
	router.Unsubscribe(sub) // idempotent
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	router := NewRouter(1)
	_ = router.Subscribe(agent.ChannelThoughts) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			router.Publish(agent.ThoughtEvent("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
