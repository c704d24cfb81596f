/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import (
	"sync"
	"testing"
)

func TestPublishDelivers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventNowPlaying)

	bus.Publish(EventNowPlaying, Payload{"channel_id": "c1"})
	bus.Publish(EventTicker, Payload{"channel_id": "c1"})

	payload := <-sub
	if payload["channel_id"] != "c1" {
		t.Fatalf("expected channel_id c1, got %+v", payload)
	}
	select {
	case extra := <-sub:
		t.Fatalf("unexpected cross-type delivery: %+v", extra)
	default:
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventTicker)

	for i := 0; i < cap(sub)+5; i++ {
		bus.Publish(EventTicker, Payload{"seq": i})
	}

	received := 0
	for {
		select {
		case <-sub:
			received++
			continue
		default:
		}
		break
	}
	if received != cap(sub) {
		t.Fatalf("expected %d buffered events, got %d", cap(sub), received)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventScheduleUpdate)
	bus.Unsubscribe(EventScheduleUpdate, sub)

	if _, ok := <-sub; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	// A second publish must not reach the removed subscriber.
	bus.Publish(EventScheduleUpdate, Payload{})
}

func TestPublishDuringUnsubscribeChurn(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					bus.Publish(EventNowPlaying, Payload{"channel_id": "c1"})
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		sub := bus.Subscribe(EventNowPlaying)
		bus.Unsubscribe(EventNowPlaying, sub)
	}
	close(stop)
	wg.Wait()
}
