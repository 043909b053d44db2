package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vkusdostavka/orderdesk/internal/domain"
)

func testInput() *domain.CreateOrderInput {
	return &domain.CreateOrderInput{
		CustomerName:  "Олена",
		CustomerPhone: "+380991234567",
		Address: domain.AddressParts{
			City:     "Київ",
			Street:   "Хрещатик",
			Building: "12",
		},
		PaymentMethod: domain.PaymentMethodCash,
		Items: []domain.OrderLine{
			{Name: "Маргарита", Price: 499, Quantity: 1},
			{Name: "Кола", Price: 99, Quantity: 2},
		},
		Subtotal:    697,
		DeliveryFee: 199,
	}
}

func TestMemoryStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a pending order with composed address", func(t *testing.T) {
		store := NewMemoryStore()

		order, err := store.Create(ctx, testInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if order.ID == "" {
			t.Error("expected order ID to be set")
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected status pending, got %s", order.Status)
		}
		if len(order.Items) != 2 {
			t.Errorf("expected 2 lines, got %d", len(order.Items))
		}
		if order.Subtotal != 697 || order.DeliveryFee != 199 {
			t.Errorf("unexpected totals: subtotal %d, fee %d", order.Subtotal, order.DeliveryFee)
		}
		if want := "Київ, вул. Хрещатик, буд. 12"; order.Address != want {
			t.Errorf("expected address %q, got %q", want, order.Address)
		}
		if !order.UpdatedAt.Equal(order.CreatedAt) {
			t.Errorf("expected updatedAt == createdAt, got %v and %v", order.UpdatedAt, order.CreatedAt)
		}
	})

	t.Run("rejects invalid input without storing it", func(t *testing.T) {
		store := NewMemoryStore()

		in := testInput()
		in.Items = nil
		_, err := store.Create(ctx, in)

		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if validationErr.Field != "items" {
			t.Errorf("expected field items, got %s", validationErr.Field)
		}

		snapshot, err := store.Snapshot(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snapshot) != 0 {
			t.Errorf("expected empty store, got %d orders", len(snapshot))
		}
	})

	t.Run("assigns unique time-ordered identifiers", func(t *testing.T) {
		store := NewMemoryStore()

		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			order, err := store.Create(ctx, testInput())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen[order.ID] {
				t.Fatalf("duplicate id %s", order.ID)
			}
			seen[order.ID] = true
		}
	})
}

func TestMemoryStore_Get(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("returns the stored order", func(t *testing.T) {
		order, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.ID != created.ID {
			t.Errorf("expected id %s, got %s", created.ID, order.ID)
		}
	})

	t.Run("fails with NotFoundError for an unknown id", func(t *testing.T) {
		_, err := store.Get(ctx, "no-such-order")
		var notFoundErr *domain.NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
		if notFoundErr.ID != "no-such-order" {
			t.Errorf("expected id in error, got %s", notFoundErr.ID)
		}
	})

	t.Run("returned order is a copy", func(t *testing.T) {
		order, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		order.Items[0].Quantity = 99
		order.Status = domain.OrderStatusCancelled

		again, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Items[0].Quantity == 99 || again.Status == domain.OrderStatusCancelled {
			t.Error("mutation of a returned order leaked into the store")
		}
	})
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	names := []string{"Олена", "Андрій", "Марія", "Богдан", "Ірина"}
	phones := []string{"+380991111111", "+380992222222", "+380993333333", "+380994444444", "+380995555555"}
	var ids []string
	for i := 0; i < 5; i++ {
		in := testInput()
		in.CustomerName = names[i]
		in.CustomerPhone = phones[i]
		order, err := store.Create(ctx, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, order.ID)
	}

	if _, err := store.ApplyStatus(ctx, ids[0], domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("empty filter returns newest first", func(t *testing.T) {
		orders, err := store.List(ctx, Filter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 5 {
			t.Fatalf("expected 5 orders, got %d", len(orders))
		}
		for i := 1; i < len(orders); i++ {
			if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
				t.Errorf("orders not sorted by createdAt descending at index %d", i)
			}
		}
		if orders[0].ID != ids[4] {
			t.Errorf("expected newest order first, got %s", orders[0].ID)
		}
	})

	t.Run("limit truncates after sorting", func(t *testing.T) {
		orders, err := store.List(ctx, Filter{Limit: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].ID != ids[4] || orders[1].ID != ids[3] {
			t.Error("limit did not keep the two newest orders")
		}
	})

	t.Run("status filter is exact match", func(t *testing.T) {
		orders, err := store.List(ctx, Filter{Status: "confirmed"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != ids[0] {
			t.Fatalf("expected only the confirmed order, got %d orders", len(orders))
		}
	})

	t.Run("status all keeps everything", func(t *testing.T) {
		orders, err := store.List(ctx, Filter{Status: "all"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 5 {
			t.Fatalf("expected 5 orders, got %d", len(orders))
		}
	})

	t.Run("search matches name case-insensitively", func(t *testing.T) {
		orders, err := store.List(ctx, Filter{Search: "олена"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 1 || orders[0].CustomerName != "Олена" {
			t.Fatalf("expected Олена's order, got %d orders", len(orders))
		}
	})

	t.Run("search matches phone as raw substring", func(t *testing.T) {
		orders, err := store.List(ctx, Filter{Search: "99222"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 1 || orders[0].CustomerPhone != phones[1] {
			t.Fatalf("expected Андрій's order, got %d orders", len(orders))
		}
	})

	t.Run("search matches id case-insensitively", func(t *testing.T) {
		orders, err := store.List(ctx, Filter{Search: ids[2][:8]})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, o := range orders {
			if o.ID == ids[2] {
				found = true
			}
		}
		if !found {
			t.Error("expected search by id prefix to find the order")
		}
	})
}

func TestMemoryStore_ApplyStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the happy path and blocks after delivered", func(t *testing.T) {
		store := NewMemoryStore()
		created, err := store.Create(ctx, testInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, next := range []domain.OrderStatus{
			domain.OrderStatusConfirmed,
			domain.OrderStatusPreparing,
			domain.OrderStatusReady,
			domain.OrderStatusDelivering,
			domain.OrderStatusDelivered,
		} {
			order, err := store.ApplyStatus(ctx, created.ID, next)
			if err != nil {
				t.Fatalf("ApplyStatus(%s): unexpected error: %v", next, err)
			}
			if order.Status != next {
				t.Fatalf("expected status %s, got %s", next, order.Status)
			}
			if order.UpdatedAt.Before(order.CreatedAt) {
				t.Fatal("updatedAt moved before createdAt")
			}
		}

		_, err = store.ApplyStatus(ctx, created.ID, domain.OrderStatusPending)
		var transitionErr *domain.InvalidTransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
		if transitionErr.Current != domain.OrderStatusDelivered || transitionErr.Requested != domain.OrderStatusPending {
			t.Errorf("error carries %s->%s, want delivered->pending",
				transitionErr.Current, transitionErr.Requested)
		}
	})

	t.Run("rejected transition leaves the order unchanged", func(t *testing.T) {
		store := NewMemoryStore()
		created, err := store.Create(ctx, testInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = store.ApplyStatus(ctx, created.ID, domain.OrderStatusDelivered)
		if err == nil {
			t.Fatal("expected error for pending->delivered")
		}

		order, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected status pending, got %s", order.Status)
		}
		if !order.UpdatedAt.Equal(created.UpdatedAt) {
			t.Error("updatedAt changed on a rejected transition")
		}
	})

	t.Run("fails with NotFoundError for an unknown id", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.ApplyStatus(ctx, "missing", domain.OrderStatusConfirmed)
		var notFoundErr *domain.NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("cancellation is allowed from every pre-delivery status except delivering", func(t *testing.T) {
		for _, path := range [][]domain.OrderStatus{
			{},
			{domain.OrderStatusConfirmed},
			{domain.OrderStatusConfirmed, domain.OrderStatusPreparing},
			{domain.OrderStatusConfirmed, domain.OrderStatusPreparing, domain.OrderStatusReady},
		} {
			store := NewMemoryStore()
			created, err := store.Create(ctx, testInput())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, next := range path {
				if _, err := store.ApplyStatus(ctx, created.ID, next); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if _, err := store.ApplyStatus(ctx, created.ID, domain.OrderStatusCancelled); err != nil {
				t.Errorf("cancel after %v: unexpected error: %v", path, err)
			}
		}
	})
}

func TestMemoryStore_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := testInput()
			in.CustomerPhone = fmt.Sprintf("+38099%07d", i)
			order, err := store.Create(ctx, in)
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			if _, err := store.ApplyStatus(ctx, order.ID, domain.OrderStatusConfirmed); err != nil {
				t.Errorf("apply status: %v", err)
			}
			if _, err := store.Snapshot(ctx); err != nil {
				t.Errorf("snapshot: %v", err)
			}
		}(i)
	}
	wg.Wait()

	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 20 {
		t.Fatalf("expected 20 orders, got %d", len(snapshot))
	}
	for _, order := range snapshot {
		if order.Status != domain.OrderStatusConfirmed {
			t.Errorf("order %s has status %s, want confirmed", order.ID, order.Status)
		}
	}
}
