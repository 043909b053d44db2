package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vkusdostavka/orderdesk/internal/domain"
	"github.com/vkusdostavka/orderdesk/internal/messaging"
)

var meter = otel.Meter("orders")

type Handler struct {
	store    Store
	producer *messaging.Producer
	logger   *slog.Logger

	ordersCreated     metric.Int64Counter
	statusTransitions metric.Int64Counter
}

func NewHandler(store Store, producer *messaging.Producer, logger *slog.Logger) (*Handler, error) {
	ordersCreated, err := meter.Int64Counter("orders.created",
		metric.WithDescription("Orders accepted into the store."))
	if err != nil {
		return nil, err
	}
	statusTransitions, err := meter.Int64Counter("orders.status_transitions",
		metric.WithDescription("Successful order status transitions."))
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:             store,
		producer:          producer,
		logger:            logger,
		ordersCreated:     ordersCreated,
		statusTransitions: statusTransitions,
	}, nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.store.Create(r.Context(), &in)
	if err != nil {
		h.respondError(w, err, "create order")
		return
	}

	// Client totals are stored as sent; a mismatch is a known gap in
	// the checkout contract, surfaced here instead of rejected.
	if recomputed := order.LinesTotal(); recomputed != order.Subtotal {
		h.logger.Warn("order subtotal does not match line totals",
			"order_id", order.ID, "subtotal", order.Subtotal, "lines_total", recomputed)
	}

	h.ordersCreated.Add(r.Context(), 1,
		metric.WithAttributes(attribute.String("payment_method", string(order.PaymentMethod))))

	if h.producer != nil {
		event := domain.OrderCreatedEvent{
			OrderID:       order.ID,
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			Address:       order.Address,
			Comment:       order.Comment,
			PaymentMethod: order.PaymentMethod,
			Items:         order.Items,
			Subtotal:      order.Subtotal,
			DeliveryFee:   order.DeliveryFee,
			Timestamp:     order.CreatedAt,
		}
		if err := h.producer.Publish(r.Context(), order.ID, event); err != nil {
			// The stored order is authoritative; notification is best
			// effort.
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "customer_phone", order.CustomerPhone)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get order")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	f := Filter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = limit
	}

	orders, err := h.store.List(r.Context(), f)
	if err != nil {
		h.respondError(w, err, "list orders")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.KnownStatus(req.Status) {
		h.writeError(w, http.StatusBadRequest, "unknown status: "+string(req.Status))
		return
	}

	order, err := h.store.ApplyStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, err, "update order status")
		return
	}

	h.statusTransitions.Add(r.Context(), 1,
		metric.WithAttributes(attribute.String("to", string(order.Status))))

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		transitionErr *domain.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		h.writeError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &transitionErr):
		h.writeError(w, http.StatusConflict, transitionErr.Error())
	default:
		h.logger.Error("failed to "+op, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
