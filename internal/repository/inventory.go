package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type ReceiptCreateInput struct {
	ImporterName string
	ReceiptDate  time.Time
	Notes        *string
	Items        []domain.InventoryReceiptItem
}

type HistoryListFilter struct {
	ProductID *int64
	Limit     int
	Offset    int
}

func (r *Repository) ListInventory(ctx context.Context, search string, limit, offset int) ([]domain.InventoryWithProduct, error) {
	limit = normalizeLimit(limit)
	offset = normalizeOffset(offset)

	rows, err := r.pool.Query(ctx, `
		SELECT
			i.id,
			i.product_id,
			i.quantity,
			i.version::TEXT,
			p.name,
			'SP' || LPAD(p.id::TEXT, 5, '0'),
			p.cost::double precision
		FROM inventories i
		JOIN products p ON p.id = i.product_id
		WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%')
		ORDER BY i.product_id ASC
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	items := make([]domain.InventoryWithProduct, 0, limit)
	for rows.Next() {
		var item domain.InventoryWithProduct
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Quantity,
			&item.Version,
			&item.ProductName,
			&item.ProductCode,
			&item.ProductCost,
		); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func (r *Repository) GetInventoryByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	var inventory domain.Inventory
	err := r.pool.QueryRow(ctx, `
		SELECT id, product_id, quantity, version::TEXT
		FROM inventories
		WHERE product_id = $1
	`, productID).Scan(&inventory.ID, &inventory.ProductID, &inventory.Quantity, &inventory.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory for product %d: %w", productID, err)
	}
	return &inventory, nil
}

// SetInventoryQuantity replaces a product's on-hand quantity and records the
// delta in inventory_history.
func (r *Repository) SetInventoryQuantity(ctx context.Context, productID int64, quantity int, importerName string, note *string) (*domain.Inventory, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin set inventory tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current int
	err = tx.QueryRow(ctx, `
		SELECT quantity FROM inventories WHERE product_id = $1 FOR UPDATE
	`, productID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock inventory for product %d: %w", productID, err)
	}

	var inventory domain.Inventory
	if err := tx.QueryRow(ctx, `
		UPDATE inventories
		SET quantity = $2, version = gen_random_uuid()
		WHERE product_id = $1
		RETURNING id, product_id, quantity, version::TEXT
	`, productID, quantity).Scan(&inventory.ID, &inventory.ProductID, &inventory.Quantity, &inventory.Version); err != nil {
		return nil, fmt.Errorf("update inventory for product %d: %w", productID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_history (product_id, quantity, final_quantity, importer_name, note)
		VALUES ($1, $2, $3, $4, $5)
	`, productID, quantity-current, quantity, strings.TrimSpace(importerName), note); err != nil {
		return nil, fmt.Errorf("record inventory history for product %d: %w", productID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit set inventory: %w", err)
	}
	return &inventory, nil
}

func (r *Repository) ListInventoryHistory(ctx context.Context, filter HistoryListFilter) ([]domain.InventoryHistoryEntry, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)

	base := `
		SELECT
			h.id,
			h.product_id,
			p.name,
			h.quantity,
			h.final_quantity,
			h.importer_name,
			h.imported_at,
			h.note,
			h.reference_id
		FROM inventory_history h
		JOIN products p ON p.id = h.product_id
		WHERE 1 = 1
	`
	args := []any{}
	argIndex := 1
	if filter.ProductID != nil {
		base += fmt.Sprintf(" AND h.product_id = $%d", argIndex)
		args = append(args, *filter.ProductID)
		argIndex++
	}
	base += fmt.Sprintf(" ORDER BY h.imported_at DESC, h.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.InventoryHistoryEntry, 0, limit)
	for rows.Next() {
		var (
			entry       domain.InventoryHistoryEntry
			note        sql.NullString
			referenceID sql.NullInt64
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.ProductName,
			&entry.Quantity,
			&entry.FinalQuantity,
			&entry.ImporterName,
			&entry.ImportedAt,
			&note,
			&referenceID,
		); err != nil {
			return nil, fmt.Errorf("scan inventory history row: %w", err)
		}
		if note.Valid {
			value := note.String
			entry.Note = &value
		}
		if referenceID.Valid {
			value := referenceID.Int64
			entry.ReferenceID = &value
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory history: %w", err)
	}
	return entries, nil
}

// CreateReceipt inserts the receipt with its items and increments inventory
// for every item inside one transaction, mirroring CreateOrder's decrement.
func (r *Repository) CreateReceipt(ctx context.Context, input ReceiptCreateInput) (int64, error) {
	if len(input.Items) == 0 {
		return 0, fmt.Errorf("receipt needs at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return 0, fmt.Errorf("product_id is required for every item")
		}
		if item.Quantity <= 0 {
			return 0, fmt.Errorf("invalid quantity for product %d", item.ProductID)
		}
		if item.UnitCost < 0 {
			return 0, fmt.Errorf("invalid unit cost for product %d", item.ProductID)
		}
	}
	receiptDate := input.ReceiptDate
	if receiptDate.IsZero() {
		receiptDate = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin create receipt tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var receiptID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO inventory_receipts (importer_name, receipt_date, notes)
		VALUES ($1, $2, $3)
		RETURNING id
	`, strings.TrimSpace(input.ImporterName), receiptDate, input.Notes).Scan(&receiptID); err != nil {
		return 0, fmt.Errorf("insert receipt: %w", err)
	}

	for _, item := range input.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory_receipt_items (receipt_id, product_id, quantity, unit_cost, notes)
			VALUES ($1, $2, $3, $4, $5)
		`, receiptID, item.ProductID, item.Quantity, item.UnitCost, item.Notes); err != nil {
			return 0, fmt.Errorf("insert receipt item for product %d: %w", item.ProductID, err)
		}

		if err := applyInventoryDeltaTx(ctx, tx, item.ProductID, wholeUnits(item.Quantity), input.ImporterName, receiptID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit create receipt: %w", err)
	}
	return receiptID, nil
}

const receiptColumns = `
	r.id,
	'PN' || LPAD(r.id::TEXT, 5, '0'),
	r.importer_name,
	r.receipt_date,
	r.notes,
	r.created_at,
	r.updated_at
`

func (r *Repository) ListReceipts(ctx context.Context, from, to *time.Time, limit, offset int) ([]domain.InventoryReceipt, error) {
	limit = normalizeLimit(limit)
	offset = normalizeOffset(offset)

	base := `
		SELECT ` + receiptColumns + `
		FROM inventory_receipts r
		WHERE 1 = 1
	`
	args := []any{}
	argIndex := 1
	if from != nil {
		base += fmt.Sprintf(" AND r.receipt_date >= $%d", argIndex)
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		base += fmt.Sprintf(" AND r.receipt_date < $%d", argIndex)
		args = append(args, *to)
		argIndex++
	}
	base += fmt.Sprintf(" ORDER BY r.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]domain.InventoryReceipt, 0, limit)
	for rows.Next() {
		receipt, err := scanReceiptRow(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}

	for i := range receipts {
		items, err := r.GetReceiptItems(ctx, receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Items = items
	}
	return receipts, nil
}

func (r *Repository) GetReceipt(ctx context.Context, id int64) (*domain.InventoryReceipt, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+receiptColumns+`
		FROM inventory_receipts r
		WHERE r.id = $1
	`, id)
	receipt, err := scanReceiptRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get receipt %d: %w", id, err)
	}

	items, err := r.GetReceiptItems(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt.Items = items
	return &receipt, nil
}

func (r *Repository) GetReceiptItems(ctx context.Context, receiptID int64) ([]domain.InventoryReceiptItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			ri.id,
			ri.receipt_id,
			ri.product_id,
			p.name,
			ri.quantity::double precision,
			ri.unit_cost::double precision,
			ri.notes
		FROM inventory_receipt_items ri
		JOIN products p ON p.id = ri.product_id
		WHERE ri.receipt_id = $1
		ORDER BY ri.id ASC
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("query receipt items %d: %w", receiptID, err)
	}
	defer rows.Close()

	items := make([]domain.InventoryReceiptItem, 0)
	for rows.Next() {
		var (
			item  domain.InventoryReceiptItem
			notes sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&item.ReceiptID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitCost,
			&notes,
		); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		if notes.Valid {
			value := notes.String
			item.Notes = &value
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt items %d: %w", receiptID, err)
	}
	return items, nil
}

// DeleteReceipt removes the receipt and backs its quantities out of
// inventory.
func (r *Repository) DeleteReceipt(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete receipt tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity::double precision
		FROM inventory_receipt_items
		WHERE receipt_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("load receipt items %d: %w", id, err)
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
			return fmt.Errorf("scan receipt item %d: %w", id, err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate receipt items %d: %w", id, err)
	}
	rows.Close()

	for _, m := range movements {
		if err := applyInventoryDeltaTx(ctx, tx, m.productID, -wholeUnits(m.quantity), "receipt deleted", id); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, "DELETE FROM inventory_receipts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete receipt %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete receipt: %w", err)
	}
	return nil
}

// applyInventoryDeltaTx locks the product's inventory row, applies the
// signed delta, and appends a history entry referencing the originating
// document.
func applyInventoryDeltaTx(ctx context.Context, tx pgx.Tx, productID int64, delta int, importerName string, referenceID int64) error {
	if delta == 0 {
		return nil
	}

	var current int
	err := tx.QueryRow(ctx, `
		SELECT quantity FROM inventories WHERE product_id = $1 FOR UPDATE
	`, productID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		// Products created before inventory tracking may lack a row.
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventories (product_id, quantity) VALUES ($1, 0)
			ON CONFLICT (product_id) DO NOTHING
		`, productID); err != nil {
			return fmt.Errorf("init inventory for product %d: %w", productID, err)
		}
		current = 0
	} else if err != nil {
		return fmt.Errorf("lock inventory for product %d: %w", productID, err)
	}

	updated := current + delta
	if _, err := tx.Exec(ctx, `
		UPDATE inventories
		SET quantity = $2, version = gen_random_uuid()
		WHERE product_id = $1
	`, productID, updated); err != nil {
		return fmt.Errorf("update inventory for product %d: %w", productID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_history (product_id, quantity, final_quantity, importer_name, reference_id)
		VALUES ($1, $2, $3, $4, $5)
	`, productID, delta, updated, strings.TrimSpace(importerName), referenceID); err != nil {
		return fmt.Errorf("record inventory history for product %d: %w", productID, err)
	}
	return nil
}

func scanReceiptRow(row pgx.Row) (domain.InventoryReceipt, error) {
	var (
		receipt domain.InventoryReceipt
		notes   sql.NullString
	)
	if err := row.Scan(
		&receipt.ID,
		&receipt.Code,
		&receipt.ImporterName,
		&receipt.ReceiptDate,
		&notes,
		&receipt.CreatedAt,
		&receipt.UpdatedAt,
	); err != nil {
		return domain.InventoryReceipt{}, err
	}
	if notes.Valid {
		value := notes.String
		receipt.Notes = &value
	}
	return receipt, nil
}
