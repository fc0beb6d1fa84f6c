package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type ProductListFilter struct {
	Search        string
	CategoryID    *int64
	OperationType string
	Limit         int
	Offset        int
}

type ProductCreateInput struct {
	Name          string
	Cost          float64
	CategoryID    *int64
	UnitID        *int64
	Description   string
	OperationType string
}

type ProductPatchInput struct {
	Name          *string
	Cost          *float64
	CategoryID    *int64
	UnitID        *int64
	Description   *string
	OperationType *string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `
	id,
	'SP' || LPAD(id::TEXT, 5, '0'),
	name,
	cost::double precision,
	category_id,
	unit_id,
	description,
	operation_type,
	created_at,
	updated_at
`

func (r *Repository) ListProducts(ctx context.Context, filter ProductListFilter) ([]domain.Product, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)
	search := strings.TrimSpace(filter.Search)

	base := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
	`
	args := []any{search}
	argIndex := 2
	if filter.CategoryID != nil {
		base += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if opType := strings.TrimSpace(filter.OperationType); opType != "" {
		base += fmt.Sprintf(" AND operation_type = $%d", argIndex)
		args = append(args, opType)
		argIndex++
	}
	base += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

func (r *Repository) GetProductDetail(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	product, err := r.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := domain.ProductDetail{Product: *product}

	if product.CategoryID != nil {
		category, err := r.GetCategoryByID(ctx, *product.CategoryID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		detail.Category = category
	}
	if product.UnitID != nil {
		unit, err := r.GetUnitByID(ctx, *product.UnitID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		detail.Unit = unit
	}

	inventory, err := r.GetInventoryByProductID(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	detail.Inventory = inventory

	usages, err := r.listBOMUsages(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.UsedInBOMs = usages

	return &detail, nil
}

func (r *Repository) CreateProduct(ctx context.Context, input ProductCreateInput) (domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("name is required")
	}
	if input.Cost < 0 {
		return domain.Product{}, fmt.Errorf("cost cannot be negative")
	}
	opType := strings.TrimSpace(input.OperationType)
	if opType == "" {
		opType = domain.OperationManufacturing
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("begin create product tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO products (name, cost, category_id, unit_id, description, operation_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns+`
	`, name, input.Cost, input.CategoryID, input.UnitID, input.Description, opType)

	product, err := scanProductRow(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	// Every product starts with an empty inventory row.
	if _, err := tx.Exec(ctx, `
		INSERT INTO inventories (product_id, quantity)
		VALUES ($1, 0)
		ON CONFLICT (product_id) DO NOTHING
	`, product.ID); err != nil {
		return domain.Product{}, fmt.Errorf("init inventory for product %d: %w", product.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Product{}, fmt.Errorf("commit create product: %w", err)
	}
	return product, nil
}

func (r *Repository) PatchProduct(ctx context.Context, id int64, input ProductPatchInput) (*domain.Product, error) {
	sets := make([]string, 0, 6)
	args := []any{id}
	argIndex := 2

	appendSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		appendSet("name", name)
	}
	if input.Cost != nil {
		if *input.Cost < 0 {
			return nil, fmt.Errorf("cost cannot be negative")
		}
		appendSet("cost", *input.Cost)
	}
	if input.CategoryID != nil {
		appendSet("category_id", *input.CategoryID)
	}
	if input.UnitID != nil {
		appendSet("unit_id", *input.UnitID)
	}
	if input.Description != nil {
		appendSet("description", *input.Description)
	}
	if input.OperationType != nil {
		opType := strings.TrimSpace(*input.OperationType)
		if opType != domain.OperationManufacturing && opType != domain.OperationPackaging {
			return nil, fmt.Errorf("invalid operation_type: %q", opType)
		}
		appendSet("operation_type", opType)
	}
	if len(sets) == 0 {
		return r.GetProductByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+productColumns+`
	`, args...)
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patch product %d: %w", id, err)
	}
	return &product, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	var usedCount int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM bom_components WHERE component_product_id = $1
	`, id).Scan(&usedCount); err != nil {
		return fmt.Errorf("check product BOM usage %d: %w", id, err)
	}
	if usedCount > 0 {
		return fmt.Errorf("product is used in %d bill(s) of materials", usedCount)
	}

	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindProductIDsByNames resolves case-insensitive product names to ids.
// Names with no match are simply absent from the result.
func (r *Repository) FindProductIDsByNames(ctx context.Context, names []string) (map[string]int64, error) {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.ToLower(strings.TrimSpace(name)); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	if len(normalized) == 0 {
		return map[string]int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, LOWER(name)
		FROM products
		WHERE LOWER(name) = ANY($1)
	`, normalized)
	if err != nil {
		return nil, fmt.Errorf("resolve product names: %w", err)
	}
	defer rows.Close()

	resolved := make(map[string]int64, len(normalized))
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan resolved product: %w", err)
		}
		resolved[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolved products: %w", err)
	}
	return resolved, nil
}

func scanProductRow(row pgx.Row) (domain.Product, error) {
	var (
		product    domain.Product
		categoryID sql.NullInt64
		unitID     sql.NullInt64
	)
	if err := row.Scan(
		&product.ID,
		&product.Code,
		&product.Name,
		&product.Cost,
		&categoryID,
		&unitID,
		&product.Description,
		&product.OperationType,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	if categoryID.Valid {
		value := categoryID.Int64
		product.CategoryID = &value
	}
	if unitID.Valid {
		value := unitID.Int64
		product.UnitID = &value
	}
	return product, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
