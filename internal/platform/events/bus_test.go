package events

import "testing"

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	first, cancelFirst := bus.Subscribe()
	second, cancelSecond := bus.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	bus.Publish(TradersUpdated())

	for name, ch := range map[string]<-chan Event{"first": first, "second": second} {
		select {
		case event := <-ch:
			if event.Type != TypeTradersUpdated {
				t.Fatalf("%s subscriber: expected %s, got %s", name, TypeTradersUpdated, event.Type)
			}
		default:
			t.Fatalf("%s subscriber received nothing", name)
		}
	}
}

func TestBusPayoutsUpdatedCarriesSource(t *testing.T) {
	event := PayoutsUpdated("manual-cancel")
	if event.Type != TypePayoutsUpdated {
		t.Fatalf("expected %s, got %s", TypePayoutsUpdated, event.Type)
	}
	if event.Message == nil || *event.Message != "source=manual-cancel" {
		t.Fatalf("expected source message, got %v", event.Message)
	}
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		bus.Publish(LimitsUpdated())
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, received)
	}
}

func TestBusCancelClosesChannelAndUnsubscribes(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()

	cancel()
	cancel()

	if bus.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	if _, open := <-ch; open {
		t.Fatal("expected closed channel")
	}

	// Publishing after cancellation must not panic.
	bus.Publish(SettingsUpdated())
}
