// Package worker turns order created events into operator
// notifications. Notification is strictly downstream of order creation:
// a failed email never touches the stored order.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vkusdostavka/orderdesk/internal/domain"
)

type Notifier struct {
	emailServiceURL string
	orderEmail      string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotifier(emailServiceURL, orderEmail string, client *http.Client, logger *slog.Logger) *Notifier {
	return &Notifier{
		emailServiceURL: emailServiceURL,
		orderEmail:      orderEmail,
		httpClient:      client,
		logger:          logger,
	}
}

// Handle processes one order created event. Errors are logged and
// swallowed: there is no retry here, and the order in the store stays
// authoritative whatever happens to the notification.
func (n *Notifier) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		n.logger.Error("failed to unmarshal order created event", "error", err)
		return nil
	}

	n.logger.Info("processing order created event", "order_id", event.OrderID)

	if err := n.sendConfirmation(ctx, event); err != nil {
		n.logger.Error("failed to send order notification", "error", err, "order_id", event.OrderID)
		return nil
	}

	n.logger.Info("order notification sent", "order_id", event.OrderID)
	return nil
}

func (n *Notifier) sendConfirmation(ctx context.Context, event domain.OrderCreatedEvent) error {
	body := map[string]string{
		"to":      n.orderEmail,
		"subject": fmt.Sprintf("Нове замовлення %s від %s", event.OrderID, event.CustomerName),
		"body":    renderSummary(event),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}
	return nil
}

// renderSummary formats the plain-text order summary sent to the
// restaurant inbox.
func renderSummary(event domain.OrderCreatedEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ім'я: %s\n", event.CustomerName)
	fmt.Fprintf(&b, "Телефон: %s\n", event.CustomerPhone)
	fmt.Fprintf(&b, "Адреса: %s\n", event.Address)
	if event.Comment != "" {
		fmt.Fprintf(&b, "Коментар: %s\n", event.Comment)
	}
	fmt.Fprintf(&b, "Оплата: %s\n\n", domain.PaymentMethodLabel(event.PaymentMethod))

	for _, line := range event.Items {
		fmt.Fprintf(&b, "%s x%d — %d ₴\n", line.Name, line.Quantity, line.Total())
	}

	fmt.Fprintf(&b, "\nПідсумок: %d ₴\n", event.Subtotal)
	if event.DeliveryFee == 0 {
		b.WriteString("Доставка: Безкоштовно\n")
	} else {
		fmt.Fprintf(&b, "Доставка: %d ₴\n", event.DeliveryFee)
	}
	fmt.Fprintf(&b, "РАЗОМ: %d ₴\n", event.Subtotal+event.DeliveryFee)

	return b.String()
}
