package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type CategoryInput struct {
	Name        string
	Code        string
	Description *string
}

type CustomerPatchInput struct {
	Name    *string
	Phone   *string
	Address *string
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.ProductCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, code, description
		FROM product_categories
		ORDER BY code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.ProductCategory, 0)
	for rows.Next() {
		category, err := scanCategoryRow(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*domain.ProductCategory, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, code, description
		FROM product_categories
		WHERE id = $1
	`, id)
	category, err := scanCategoryRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, input CategoryInput) (domain.ProductCategory, error) {
	name, code, err := normalizeNameCode(input.Name, input.Code)
	if err != nil {
		return domain.ProductCategory{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO product_categories (name, code, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, code, description
	`, name, code, input.Description)
	category, err := scanCategoryRow(row)
	if err != nil {
		return domain.ProductCategory{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.ProductCategory, error) {
	name, code, err := normalizeNameCode(input.Name, input.Code)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE product_categories
		SET name = $2, code = $3, description = $4
		WHERE id = $1
		RETURNING id, name, code, description
	`, id, name, code, input.Description)
	category, err := scanCategoryRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return &category, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM product_categories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListUnits(ctx context.Context) ([]domain.UnitOfMeasure, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, code, description
		FROM units_of_measure
		ORDER BY code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	units := make([]domain.UnitOfMeasure, 0)
	for rows.Next() {
		unit, err := scanUnitRow(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}

func (r *Repository) GetUnitByID(ctx context.Context, id int64) (*domain.UnitOfMeasure, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, code, description
		FROM units_of_measure
		WHERE id = $1
	`, id)
	unit, err := scanUnitRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get unit %d: %w", id, err)
	}
	return &unit, nil
}

func (r *Repository) CreateUnit(ctx context.Context, input CategoryInput) (domain.UnitOfMeasure, error) {
	name, code, err := normalizeNameCode(input.Name, input.Code)
	if err != nil {
		return domain.UnitOfMeasure{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO units_of_measure (name, code, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, code, description
	`, name, code, input.Description)
	unit, err := scanUnitRow(row)
	if err != nil {
		return domain.UnitOfMeasure{}, fmt.Errorf("create unit: %w", err)
	}
	return unit, nil
}

func (r *Repository) UpdateUnit(ctx context.Context, id int64, input CategoryInput) (*domain.UnitOfMeasure, error) {
	name, code, err := normalizeNameCode(input.Name, input.Code)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE units_of_measure
		SET name = $2, code = $3, description = $4
		WHERE id = $1
		RETURNING id, name, code, description
	`, id, name, code, input.Description)
	unit, err := scanUnitRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update unit %d: %w", id, err)
	}
	return &unit, nil
}

func (r *Repository) DeleteUnit(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM units_of_measure WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete unit %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const customerColumns = `id, 'KH' || LPAD(id::TEXT, 5, '0'), name, phone, address`

func (r *Repository) ListCustomers(ctx context.Context, search string, limit, offset int) ([]domain.Customer, error) {
	limit = normalizeLimit(limit)
	offset = normalizeOffset(offset)

	rows, err := r.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%')
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Code, &customer.Name, &customer.Phone, &customer.Address); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

func (r *Repository) GetCustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Code, &customer.Name, &customer.Phone, &customer.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &customer, nil
}

func (r *Repository) CreateCustomer(ctx context.Context, name, phone, address string) (domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("name is required")
	}
	var customer domain.Customer
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address)
		VALUES ($1, $2, $3)
		RETURNING `+customerColumns+`
	`, name, strings.TrimSpace(phone), strings.TrimSpace(address)).
		Scan(&customer.ID, &customer.Code, &customer.Name, &customer.Phone, &customer.Address)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (r *Repository) PatchCustomer(ctx context.Context, id int64, input CustomerPatchInput) (*domain.Customer, error) {
	sets := make([]string, 0, 3)
	args := []any{id}
	argIndex := 2

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		sets = append(sets, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, name)
		argIndex++
	}
	if input.Phone != nil {
		sets = append(sets, fmt.Sprintf("phone = $%d", argIndex))
		args = append(args, strings.TrimSpace(*input.Phone))
		argIndex++
	}
	if input.Address != nil {
		sets = append(sets, fmt.Sprintf("address = $%d", argIndex))
		args = append(args, strings.TrimSpace(*input.Address))
		argIndex++
	}
	if len(sets) == 0 {
		return r.GetCustomerByID(ctx, id)
	}

	var customer domain.Customer
	err := r.pool.QueryRow(ctx, `
		UPDATE customers
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+customerColumns+`
	`, args...).Scan(&customer.ID, &customer.Code, &customer.Name, &customer.Phone, &customer.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patch customer %d: %w", id, err)
	}
	return &customer, nil
}

func (r *Repository) DeleteCustomer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeNameCode(name, code string) (string, string, error) {
	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" {
		return "", "", fmt.Errorf("name is required")
	}
	if code == "" {
		return "", "", fmt.Errorf("code is required")
	}
	return name, code, nil
}

func scanCategoryRow(row pgx.Row) (domain.ProductCategory, error) {
	var (
		category    domain.ProductCategory
		description sql.NullString
	)
	if err := row.Scan(&category.ID, &category.Name, &category.Code, &description); err != nil {
		return domain.ProductCategory{}, err
	}
	if description.Valid {
		value := description.String
		category.Description = &value
	}
	return category, nil
}

func scanUnitRow(row pgx.Row) (domain.UnitOfMeasure, error) {
	var (
		unit        domain.UnitOfMeasure
		description sql.NullString
	)
	if err := row.Scan(&unit.ID, &unit.Name, &unit.Code, &description); err != nil {
		return domain.UnitOfMeasure{}, err
	}
	if description.Valid {
		value := description.String
		unit.Description = &value
	}
	return unit, nil
}
