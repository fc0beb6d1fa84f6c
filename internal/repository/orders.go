package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type OrderCreateInput struct {
	CustomerID         int64
	OrderDate          time.Time
	Note               *string
	AdditionalCost     float64
	AdditionalCostNote *string
	TaxPercent         float64
	DeliveryStatus     string
	Items              []domain.OrderItem
}

type OrderPatchInput struct {
	CustomerID         *int64
	OrderDate          *time.Time
	Note               *string
	AdditionalCost     *float64
	AdditionalCostNote *string
	TaxPercent         *float64
	DeliveryStatus     *string
}

type OrderListFilter struct {
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

const orderColumns = `
	o.id,
	'DH' || LPAD(o.id::TEXT, 5, '0'),
	o.customer_id,
	o.order_date,
	o.note,
	o.additional_cost::double precision,
	o.additional_cost_note,
	o.tax_percent::double precision,
	o.delivery_status,
	o.created_at
`

// CreateOrder inserts the order with its items and decrements inventory for
// every item inside one transaction. Each inventory movement is recorded in
// inventory_history with the order id as reference.
func (r *Repository) CreateOrder(ctx context.Context, input OrderCreateInput) (int64, error) {
	if input.CustomerID <= 0 {
		return 0, fmt.Errorf("customer_id is required")
	}
	if len(input.Items) == 0 {
		return 0, fmt.Errorf("order needs at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return 0, fmt.Errorf("product_id is required for every item")
		}
		if item.Quantity <= 0 {
			return 0, fmt.Errorf("invalid quantity for product %d", item.ProductID)
		}
	}
	status := strings.TrimSpace(input.DeliveryStatus)
	if status == "" {
		status = "PENDING"
	}
	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin create order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)", input.CustomerID,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check customer %d: %w", input.CustomerID, err)
	}
	if !exists {
		return 0, fmt.Errorf("customer not found")
	}

	var orderID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, order_date, note, additional_cost, additional_cost_note, tax_percent, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, input.CustomerID, orderDate, input.Note, input.AdditionalCost,
		input.AdditionalCostNote, input.TaxPercent, status,
	).Scan(&orderID); err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range input.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, selling_price, original_price, discount_percent, final_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, orderID, item.ProductID, item.Quantity, item.SellingPrice,
			item.OriginalPrice, item.DiscountPercent, item.FinalAmount,
		); err != nil {
			return 0, fmt.Errorf("insert order item for product %d: %w", item.ProductID, err)
		}

		if err := applyInventoryDeltaTx(ctx, tx, item.ProductID, -wholeUnits(item.Quantity), "order", orderID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit create order: %w", err)
	}
	return orderID, nil
}

func (r *Repository) ListOrders(ctx context.Context, filter OrderListFilter) ([]domain.Order, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)

	base := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE 1 = 1
	`
	args := []any{}
	argIndex := 1
	if filter.CustomerID != nil {
		base += fmt.Sprintf(" AND o.customer_id = $%d", argIndex)
		args = append(args, *filter.CustomerID)
		argIndex++
	}
	if filter.From != nil {
		base += fmt.Sprintf(" AND o.order_date >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		base += fmt.Sprintf(" AND o.order_date < $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}
	base += fmt.Sprintf(" ORDER BY o.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := r.GetOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.id = $1
	`, id)
	order, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	customer, err := r.GetCustomerByID(ctx, order.CustomerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	order.Customer = customer

	items, err := r.GetOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *Repository) GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			oi.id,
			oi.order_id,
			oi.product_id,
			p.name,
			oi.quantity::double precision,
			oi.selling_price::double precision,
			oi.original_price::double precision,
			oi.discount_percent::double precision,
			oi.final_amount::double precision
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items %d: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.SellingPrice,
			&item.OriginalPrice,
			&item.DiscountPercent,
			&item.FinalAmount,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items %d: %w", orderID, err)
	}
	return items, nil
}

// PatchOrderHeader updates order-level fields only; items are immutable
// after creation because inventory has already moved.
func (r *Repository) PatchOrderHeader(ctx context.Context, id int64, input OrderPatchInput) (*domain.Order, error) {
	sets := make([]string, 0, 7)
	args := []any{id}
	argIndex := 2

	appendSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if input.CustomerID != nil {
		appendSet("customer_id", *input.CustomerID)
	}
	if input.OrderDate != nil {
		appendSet("order_date", *input.OrderDate)
	}
	if input.Note != nil {
		appendSet("note", *input.Note)
	}
	if input.AdditionalCost != nil {
		appendSet("additional_cost", *input.AdditionalCost)
	}
	if input.AdditionalCostNote != nil {
		appendSet("additional_cost_note", *input.AdditionalCostNote)
	}
	if input.TaxPercent != nil {
		appendSet("tax_percent", *input.TaxPercent)
	}
	if input.DeliveryStatus != nil {
		status := strings.TrimSpace(*input.DeliveryStatus)
		if status == "" {
			return nil, fmt.Errorf("delivery_status cannot be empty")
		}
		appendSet("delivery_status", status)
	}
	if len(sets) == 0 {
		return r.GetOrder(ctx, id)
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE orders SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return nil, fmt.Errorf("patch order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetOrder(ctx, id)
}

// DeleteOrder removes the order and returns every item's quantity to
// inventory, mirroring the decrement applied at creation.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity::double precision
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("load order items %d: %w", id, err)
	}
	type movement struct {
		productID int64
		quantity  float64
	}
	movements := make([]movement, 0)
	for rows.Next() {
		var m movement
		if err := rows.Scan(&m.productID, &m.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scan order item %d: %w", id, err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate order items %d: %w", id, err)
	}
	rows.Close()

	for _, m := range movements {
		if err := applyInventoryDeltaTx(ctx, tx, m.productID, wholeUnits(m.quantity), "order deleted", id); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete order: %w", err)
	}
	return nil
}

func scanOrderRow(row pgx.Row) (domain.Order, error) {
	var (
		order              domain.Order
		note               sql.NullString
		additionalCostNote sql.NullString
	)
	if err := row.Scan(
		&order.ID,
		&order.Code,
		&order.CustomerID,
		&order.OrderDate,
		&note,
		&order.AdditionalCost,
		&additionalCostNote,
		&order.TaxPercent,
		&order.DeliveryStatus,
		&order.CreatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	if note.Valid {
		value := note.String
		order.Note = &value
	}
	if additionalCostNote.Valid {
		value := additionalCostNote.String
		order.AdditionalCostNote = &value
	}
	return order, nil
}

// Inventory is tracked in whole units; fractional item quantities are
// rounded for stock movements.
func wholeUnits(quantity float64) int {
	return int(math.Round(quantity))
}
