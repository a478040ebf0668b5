package events

import (
	"io"
	"os"
	"testing"
	"time"

	"provault/logx"
)

func TestMain(m *testing.M) {
	logx.InitWithOutput(io.Discard)
	os.Exit(m.Run())
}

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewEventBus(4)

	id, ch := bus.Subscribe()
	if !bus.HasSubscriber(id) {
		t.Fatal("subscriber not registered")
	}
	if bus.GetTotalSubscriptions() != 1 {
		t.Fatalf("total subscriptions = %d, want 1", bus.GetTotalSubscriptions())
	}

	go bus.Publish(NewDeposit("user", "vault", 100, 1700000000))

	select {
	case ev := <-ch:
		if ev.Type() != EventDeposit {
			t.Errorf("event type = %s, want %s", ev.Type(), EventDeposit)
		}
		if ev.User() != "user" || ev.Holder() != "vault" || ev.Amount() != 100 {
			t.Errorf("unexpected event: user=%s holder=%s amount=%d", ev.User(), ev.Holder(), ev.Amount())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus(4)
	id, ch := bus.Subscribe()

	if !bus.Unsubscribe(id) {
		t.Fatal("unsubscribe returned false")
	}
	if bus.HasSubscriber(id) {
		t.Error("subscriber still registered after unsubscribe")
	}
	if _, ok := <-ch; ok {
		t.Error("channel not closed after unsubscribe")
	}

	// Unsubscribing twice is a no-op
	if bus.Unsubscribe(id) {
		t.Error("second unsubscribe returned true")
	}
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewEventBus(1)
	_, ch := bus.Subscribe()

	// Fill the buffer, then publish once more; the send must not block
	bus.Publish(NewDeposit("user", "vault", 1, 1))
	done := make(chan struct{})
	go func() {
		bus.Publish(NewDeposit("user", "vault", 2, 2))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	ev := <-ch
	if ev.Amount() != 1 {
		t.Errorf("first buffered event amount = %d, want 1", ev.Amount())
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected second event: amount=%d", ev.Amount())
	default:
	}
}

func TestPublishToMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(4)
	_, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()

	bus.Publish(NewWithdraw("receiver", "vault", 50, 1700000000))

	for i, ch := range []chan LedgerEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type() != EventWithdraw {
				t.Errorf("subscriber %d got type %s", i, ev.Type())
			}
		default:
			t.Errorf("subscriber %d missed the event", i)
		}
	}
}
