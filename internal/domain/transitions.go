package domain

// transitions is the full lifecycle graph. Delivered and cancelled have
// no outbound edges; a transition must move the order forward or to
// cancellation, so self-transitions are never allowed.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:  {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:      {OrderStatusDelivering, OrderStatusCancelled},
	OrderStatusDelivering: {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	return transitions[s]
}

// KnownStatus reports whether s is one of the lifecycle statuses.
func KnownStatus(s OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// ValidateTransition decides whether an order currently in status
// current may move to requested. It holds no state and never mutates
// anything.
func ValidateTransition(current, requested OrderStatus) error {
	for _, next := range transitions[current] {
		if next == requested {
			return nil
		}
	}
	return &InvalidTransitionError{Current: current, Requested: requested}
}
