package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"giftbasket/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "basket.myshopify.com"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if has, _ := store.Has(ctx, "basket.myshopify.com"); has {
		t.Fatal("Has reported a session before Put")
	}

	if err := store.Put(ctx, "basket.myshopify.com", "tok-1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	token, err := store.Get(ctx, "basket.myshopify.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("token = %q, want tok-1", token)
	}
	if has, _ := store.Has(ctx, "basket.myshopify.com"); !has {
		t.Error("Has did not report the stored session")
	}

	// Re-install replaces the token.
	if err := store.Put(ctx, "basket.myshopify.com", "tok-2"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	token, _ = store.Get(ctx, "basket.myshopify.com")
	if token != "tok-2" {
		t.Errorf("token = %q, want tok-2", token)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			shop := fmt.Sprintf("shop-%d.myshopify.com", i)
			if err := store.Put(ctx, shop, fmt.Sprintf("tok-%d", i)); err != nil {
				t.Errorf("Put failed: %v", err)
				return
			}
			token, err := store.Get(ctx, shop)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			if token != fmt.Sprintf("tok-%d", i) {
				t.Errorf("token = %q for %s", token, shop)
			}
		}(i)
	}
	wg.Wait()
}
