package domain

import "time"

// OrderCreatedEvent is published after an order is stored. Consumers
// only notify; the order's existence in the store is authoritative
// regardless of what happens downstream.
type OrderCreatedEvent struct {
	OrderID       string        `json:"order_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	Address       string        `json:"address"`
	Comment       string        `json:"comment,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Items         []OrderLine   `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	DeliveryFee   int64         `json:"delivery_fee"`
	Timestamp     time.Time     `json:"timestamp"`
}
