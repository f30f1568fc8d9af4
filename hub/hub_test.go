// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/merit-box/models"
)

func testClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	clock := testClock()
	h := New(clock)

	sub1 := h.Subscribe()
	sub2 := h.Subscribe()

	h.Publish(42, models.ActionIncrement)

	for i, sub := range []*Subscriber{sub1, sub2} {
		select {
		case event := <-sub.Events():
			if event.TotalMerit != 42 {
				t.Errorf("subscriber %d: expected totalMerit 42, got %d", i, event.TotalMerit)
			}
			if event.Action != models.ActionIncrement {
				t.Errorf("subscriber %d: expected action increment, got %s", i, event.Action)
			}
			if !event.Timestamp.Equal(clock.Now().UTC()) {
				t.Errorf("subscriber %d: expected timestamp %v, got %v", i, clock.Now().UTC(), event.Timestamp)
			}
		default:
			t.Errorf("subscriber %d received no event", i)
		}
	}
}

func TestSubscribe_NoBacklog(t *testing.T) {
	h := New(testClock())

	h.Publish(1, models.ActionIncrement)

	sub := h.Subscribe()
	h.Publish(2, models.ActionIncrement)

	select {
	case event := <-sub.Events():
		if event.TotalMerit != 2 {
			t.Errorf("expected only the post-subscription event (2), got %d", event.TotalMerit)
		}
	default:
		t.Fatal("expected the post-subscription event")
	}

	select {
	case event := <-sub.Events():
		t.Errorf("unexpected extra event: %+v", event)
	default:
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	h := New(testClock())

	sub := h.Subscribe()
	h.Unsubscribe(sub)
	h.Unsubscribe(sub) // second removal is a no-op, not a panic

	if _, ok := <-sub.Events(); ok {
		t.Error("expected channel closed after unsubscribe")
	}
	if h.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", h.SubscriberCount())
	}
}

func TestUnsubscribed_ReceivesNothing(t *testing.T) {
	h := New(testClock())

	sub := h.Subscribe()
	keep := h.Subscribe()
	h.Unsubscribe(sub)

	h.Publish(9, models.ActionUpdate)

	if event, ok := <-sub.Events(); ok {
		t.Errorf("unsubscribed handle received event: %+v", event)
	}
	select {
	case event := <-keep.Events():
		if event.TotalMerit != 9 {
			t.Errorf("expected 9, got %d", event.TotalMerit)
		}
	default:
		t.Error("remaining subscriber received no event")
	}
}

// TestPublish_SlowSubscriberDoesNotBlock fills one subscriber's buffer and
// keeps publishing: Publish must return promptly every time, the stalled
// subscriber just stops accumulating at its buffer depth, and a healthy
// subscriber drained concurrently sees every event.
func TestPublish_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := New(testClock())

	stalled := h.Subscribe()
	healthy := h.Subscribe()

	total := subscriberBuffer + 5

	for i := 1; i <= total; i++ {
		h.Publish(i, models.ActionIncrement)

		// Publish returned, so the healthy subscriber must already hold
		// this event regardless of how far behind the stalled one is.
		select {
		case event := <-healthy.Events():
			if event.TotalMerit != i {
				t.Fatalf("expected event %d, got %d", i, event.TotalMerit)
			}
		default:
			t.Fatalf("healthy subscriber missed event %d", i)
		}
	}

	// The stalled subscriber holds at most its buffer; the overflow was
	// dropped, not queued.
	h.Unsubscribe(stalled)
	count := 0
	for range stalled.Events() {
		count++
	}
	if count != subscriberBuffer {
		t.Errorf("expected stalled subscriber to hold %d buffered events, got %d", subscriberBuffer, count)
	}
}

func TestConcurrentSubscribeUnsubscribePublish(t *testing.T) {
	h := New(testClock())

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				sub := h.Subscribe()
				h.Publish(j, models.ActionIncrement)
				h.Unsubscribe(sub)
			}
		}()
	}

	wg.Wait()

	if h.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after churn, got %d", h.SubscriberCount())
	}
}
