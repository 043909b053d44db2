package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order. Used wherever a
// deterministic iteration over statuses is needed.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivering,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// StatusLabel returns the human-readable label shown to operators.
func StatusLabel(s OrderStatus) string {
	switch s {
	case OrderStatusPending:
		return "Ожидает"
	case OrderStatusConfirmed:
		return "Подтвержден"
	case OrderStatusPreparing:
		return "Готовится"
	case OrderStatusReady:
		return "Готов"
	case OrderStatusDelivering:
		return "Доставляется"
	case OrderStatusDelivered:
		return "Доставлен"
	case OrderStatusCancelled:
		return "Отменен"
	}
	return string(s)
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// PaymentMethodLabel returns the checkout wording for a payment method.
func PaymentMethodLabel(m PaymentMethod) string {
	if m == PaymentMethodCard {
		return "Картка (онлайн)"
	}
	return "Готівка при отриманні"
}

// OrderLine is a single position in an order. The product name is free
// text matched against the catalog by name equality, not a foreign key.
type OrderLine struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func (l OrderLine) Total() int64 {
	return l.Price * int64(l.Quantity)
}

type Order struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	Address       string        `json:"address"`
	Comment       string        `json:"comment,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Items         []OrderLine   `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	DeliveryFee   int64         `json:"deliveryFee"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// LinesTotal recomputes the sum of line totals. The stored Subtotal is
// supplied by the checkout client and is not guaranteed to match;
// callers that care about the discrepancy compare the two.
func (o *Order) LinesTotal() int64 {
	var sum int64
	for _, l := range o.Items {
		sum += l.Total()
	}
	return sum
}

// AddressParts is the structured delivery address as collected by the
// checkout form. Only city, street and building are required.
type AddressParts struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	Building  string `json:"building"`
	Apartment string `json:"apartment,omitempty"`
	Entrance  string `json:"entrance,omitempty"`
	Floor     string `json:"floor,omitempty"`
}

// Compose joins the non-empty parts into the single display address,
// in the fixed order the storefront has always used.
func (a AddressParts) Compose() string {
	parts := make([]string, 0, 6)
	parts = append(parts, a.City, "вул. "+a.Street, "буд. "+a.Building)
	if a.Apartment != "" {
		parts = append(parts, "кв. "+a.Apartment)
	}
	if a.Entrance != "" {
		parts = append(parts, "під'їзд "+a.Entrance)
	}
	if a.Floor != "" {
		parts = append(parts, "поверх "+a.Floor)
	}
	return strings.Join(parts, ", ")
}

// CreateOrderInput is everything the checkout collaborator supplies to
// create an order. Identity, status and timestamps are assigned by the
// store.
type CreateOrderInput struct {
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	Address       AddressParts  `json:"addressParts"`
	Comment       string        `json:"comment"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Items         []OrderLine   `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	DeliveryFee   int64         `json:"deliveryFee"`
}

// Validate checks the required creation fields and reports the first
// missing or invalid one.
func (in *CreateOrderInput) Validate() error {
	switch {
	case strings.TrimSpace(in.CustomerName) == "":
		return &ValidationError{Field: "customerName"}
	case strings.TrimSpace(in.CustomerPhone) == "":
		return &ValidationError{Field: "customerPhone"}
	case strings.TrimSpace(in.Address.City) == "":
		return &ValidationError{Field: "addressParts.city"}
	case strings.TrimSpace(in.Address.Street) == "":
		return &ValidationError{Field: "addressParts.street"}
	case strings.TrimSpace(in.Address.Building) == "":
		return &ValidationError{Field: "addressParts.building"}
	case len(in.Items) == 0:
		return &ValidationError{Field: "items"}
	case in.PaymentMethod != PaymentMethodCash && in.PaymentMethod != PaymentMethodCard:
		return &ValidationError{Field: "paymentMethod"}
	}
	for i, l := range in.Items {
		if strings.TrimSpace(l.Name) == "" {
			return &ValidationError{Field: "items.name", Index: i}
		}
		if l.Quantity <= 0 {
			return &ValidationError{Field: "items.quantity", Index: i}
		}
	}
	return nil
}
