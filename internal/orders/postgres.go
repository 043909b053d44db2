package orders

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/vkusdostavka/orderdesk/internal/domain"
)

// PostgresStore is the durable Store backend. It enforces the same
// transition rules as MemoryStore, holding a row lock across the
// read-validate-update of a status change.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) Create(ctx context.Context, in *domain.CreateOrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.StorageError{Op: "create order", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            newOrderID(),
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Address:       in.Address.Compose(),
		Comment:       in.Comment,
		PaymentMethod: in.PaymentMethod,
		Items:         append([]domain.OrderLine(nil), in.Items...),
		Subtotal:      in.Subtotal,
		DeliveryFee:   in.DeliveryFee,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, customer_phone, address, comment, payment_method, subtotal, delivery_fee, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, order.ID, order.CustomerName, order.CustomerPhone, order.Address, order.Comment,
		order.PaymentMethod, order.Subtotal, order.DeliveryFee, order.Status, order.CreatedAt)
	if err != nil {
		return nil, &domain.StorageError{Op: "insert order", Err: err}
	}

	for i, line := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, position, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, i, line.Name, line.Price, line.Quantity)
		if err != nil {
			return nil, &domain.StorageError{Op: "insert order line", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.StorageError{Op: "create order", Err: err}
	}

	return order, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_name, customer_phone, address, comment, payment_method, subtotal, delivery_fee, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerName, &order.CustomerPhone, &order.Address,
		&order.Comment, &order.PaymentMethod, &order.Subtotal, &order.DeliveryFee,
		&order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{ID: id}
		}
		return nil, &domain.StorageError{Op: "get order", Err: err}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, price, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, &domain.StorageError{Op: "get order lines", Err: err}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.Name, &line.Price, &line.Quantity); err != nil {
			return nil, &domain.StorageError{Op: "scan order line", Err: err}
		}
		order.Items = append(order.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "get order lines", Err: err}
	}

	return order, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var (
		where []string
		args  []any
	)
	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(customer_name ILIKE $%d OR customer_phone LIKE $%d OR id ILIKE $%d)", n, n, n))
	}

	query := `
		SELECT id, customer_name, customer_phone, address, comment, payment_method, subtotal, delivery_fee, status, created_at, updated_at
		FROM orders`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf("\n\t\tORDER BY created_at DESC\n\t\tLIMIT $%d", len(args))

	return s.queryOrders(ctx, query, args...)
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]domain.Order, error) {
	return s.queryOrders(ctx, `
		SELECT id, customer_name, customer_phone, address, comment, payment_method, subtotal, delivery_fee, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (s *PostgresStore) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "list orders", Err: err}
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.CustomerPhone, &order.Address,
			&order.Comment, &order.PaymentMethod, &order.Subtotal, &order.DeliveryFee,
			&order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, &domain.StorageError{Op: "scan order", Err: err}
		}
		order.Items = []domain.OrderLine{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list orders", Err: err}
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	lineRows, err := s.db.QueryContext(ctx, `
		SELECT order_id, name, price, quantity
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, &domain.StorageError{Op: "list order lines", Err: err}
	}
	defer func() { _ = lineRows.Close() }()

	for lineRows.Next() {
		var orderID string
		var line domain.OrderLine
		if err := lineRows.Scan(&orderID, &line.Name, &line.Price, &line.Quantity); err != nil {
			return nil, &domain.StorageError{Op: "scan order line", Err: err}
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list order lines", Err: err}
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}
	return orders, nil
}

func (s *PostgresStore) ApplyStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.StorageError{Op: "apply status", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var current domain.OrderStatus
	err = tx.QueryRowContext(ctx, `
		SELECT status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{ID: id}
		}
		return nil, &domain.StorageError{Op: "apply status", Err: err}
	}

	if err := domain.ValidateTransition(current, status); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, &domain.StorageError{Op: "apply status", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.StorageError{Op: "apply status", Err: err}
	}

	return s.Get(ctx, id)
}
