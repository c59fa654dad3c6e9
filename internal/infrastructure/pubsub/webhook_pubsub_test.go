package pubsub

import (
	"context"
	"testing"
	"time"

	"giftbasket/internal/domain"

	"github.com/rs/zerolog"
)

func TestPublishReachesMatchingSubscriber(t *testing.T) {
	ps := NewWebhookPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := ps.Subscribe(ctx, &WebhookEventFilter{
		Topics: []string{"orders/create"},
		Shop:   "basket.myshopify.com",
	})

	event := &domain.WebhookEvent{Topic: "orders/create", Shop: "basket.myshopify.com"}
	ps.Publish(event)

	select {
	case got := <-ch.Events:
		if got != event {
			t.Fatalf("received unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}
}

func TestPublishSkipsNonMatchingSubscriber(t *testing.T) {
	ps := NewWebhookPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otherTopic := ps.Subscribe(ctx, &WebhookEventFilter{Topics: []string{"orders/delete"}})
	otherShop := ps.Subscribe(ctx, &WebhookEventFilter{Shop: "other.myshopify.com"})

	ps.Publish(&domain.WebhookEvent{Topic: "orders/create", Shop: "basket.myshopify.com"})

	select {
	case ev := <-otherTopic.Events:
		t.Fatalf("topic filter leaked event %+v", ev)
	case ev := <-otherShop.Events:
		t.Fatalf("shop filter leaked event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := NewWebhookPubSub(zerolog.Nop())
	ch := ps.Subscribe(context.Background(), nil)

	ps.Unsubscribe(ch.ID)

	select {
	case _, open := <-ch.Events:
		if open {
			t.Fatal("expected the events channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}
}
