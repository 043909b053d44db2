// Package orders owns the canonical order log: creation, lookup,
// filtered listing and status transitions.
package orders

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vkusdostavka/orderdesk/internal/domain"
)

// DefaultListLimit caps a listing when the caller does not ask for a
// specific limit.
const DefaultListLimit = 50

// Filter narrows a listing. A zero Filter yields the most recent
// DefaultListLimit orders.
type Filter struct {
	// Status keeps only orders in this exact status. Empty or "all"
	// keeps everything.
	Status string
	// Search matches case-insensitively against the customer name and
	// the order id, and as a raw substring against the phone.
	Search string
	// Limit truncates the result. Zero or negative means
	// DefaultListLimit.
	Limit int
}

// Store is the order log contract shared by the in-memory and Postgres
// backends. All successful mutations go through the transition rules in
// the domain package.
type Store interface {
	Create(ctx context.Context, in *domain.CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f Filter) ([]domain.Order, error)
	ApplyStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	// Snapshot returns a consistent copy of every order, newest first,
	// for the analytics aggregator. The copy never observes a
	// half-applied mutation.
	Snapshot(ctx context.Context) ([]domain.Order, error)
}

// MemoryStore keeps the order log in process memory behind a single
// lock. Orders do not survive a restart; the service logs this
// limitation at startup.
type MemoryStore struct {
	mu     sync.RWMutex
	orders []*domain.Order // newest first
	byID   map[string]*domain.Order

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*domain.Order),
		now:  time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

// newOrderID generates a time-ordered, collision-resistant identifier.
func newOrderID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (s *MemoryStore) Create(_ context.Context, in *domain.CreateOrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	order := &domain.Order{
		ID:            newOrderID(),
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Address:       in.Address.Compose(),
		Comment:       in.Comment,
		PaymentMethod: in.PaymentMethod,
		Items:         slices.Clone(in.Items),
		Subtotal:      in.Subtotal,
		DeliveryFee:   in.DeliveryFee,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.orders = slices.Insert(s.orders, 0, order)
	s.byID[order.ID] = order

	return copyOrder(order), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}
	return copyOrder(order), nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]domain.Order, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	search := strings.ToLower(f.Search)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Order, 0, min(limit, len(s.orders)))
	for _, order := range s.orders {
		if f.Status != "" && f.Status != "all" && string(order.Status) != f.Status {
			continue
		}
		if f.Search != "" && !matchesSearch(order, f.Search, search) {
			continue
		}
		matched = append(matched, *copyOrder(order))
	}

	// The log is newest first, but createdAt ordering is the contract.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matchesSearch(order *domain.Order, raw, lower string) bool {
	return strings.Contains(strings.ToLower(order.CustomerName), lower) ||
		strings.Contains(order.CustomerPhone, raw) ||
		strings.Contains(strings.ToLower(order.ID), lower)
}

func (s *MemoryStore) ApplyStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}
	if err := domain.ValidateTransition(order.Status, status); err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = s.now()

	return copyOrder(order), nil
}

func (s *MemoryStore) Snapshot(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, *copyOrder(order))
	}
	return out, nil
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	return &cp
}
