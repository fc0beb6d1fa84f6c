package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type BOMComponentInput struct {
	ComponentProductID int64
	Quantity           float64
}

// ReplaceBOM creates or fully replaces the bill of materials of a parent
// product. Component costs are not stored; readers resolve them from the
// products table so BOM costing always reflects current prices.
func (r *Repository) ReplaceBOM(ctx context.Context, parentProductID int64, components []BOMComponentInput) (*domain.BOM, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("at least one component is required")
	}
	for _, component := range components {
		if component.ComponentProductID <= 0 {
			return nil, fmt.Errorf("component product id is required")
		}
		if component.ComponentProductID == parentProductID {
			return nil, fmt.Errorf("a product cannot be a component of itself")
		}
		if component.Quantity <= 0 {
			return nil, fmt.Errorf("component quantity must be positive")
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin replace BOM tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", parentProductID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check parent product %d: %w", parentProductID, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM bom_components WHERE parent_product_id = $1", parentProductID,
	); err != nil {
		return nil, fmt.Errorf("clear BOM for product %d: %w", parentProductID, err)
	}

	for _, component := range components {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bom_components (parent_product_id, component_product_id, quantity)
			VALUES ($1, $2, $3)
		`, parentProductID, component.ComponentProductID, component.Quantity); err != nil {
			return nil, fmt.Errorf("insert BOM component %d: %w", component.ComponentProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit replace BOM: %w", err)
	}
	return r.GetBOM(ctx, parentProductID)
}

func (r *Repository) GetBOM(ctx context.Context, parentProductID int64) (*domain.BOM, error) {
	var parentName string
	err := r.pool.QueryRow(ctx,
		"SELECT name FROM products WHERE id = $1", parentProductID,
	).Scan(&parentName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get BOM parent %d: %w", parentProductID, err)
	}

	components, err := r.listBOMComponents(ctx, parentProductID)
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, ErrNotFound
	}

	return &domain.BOM{
		ParentProductID:   parentProductID,
		ParentProductName: parentName,
		Components:        components,
		TotalComponents:   len(components),
	}, nil
}

func (r *Repository) ListBOMs(ctx context.Context, limit, offset int) ([]domain.BOM, error) {
	limit = normalizeLimit(limit)
	offset = normalizeOffset(offset)

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT bc.parent_product_id, p.name
		FROM bom_components bc
		JOIN products p ON p.id = bc.parent_product_id
		ORDER BY bc.parent_product_id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list BOMs: %w", err)
	}
	defer rows.Close()

	type parent struct {
		id   int64
		name string
	}
	parents := make([]parent, 0, limit)
	for rows.Next() {
		var p parent
		if err := rows.Scan(&p.id, &p.name); err != nil {
			return nil, fmt.Errorf("scan BOM parent: %w", err)
		}
		parents = append(parents, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate BOM parents: %w", err)
	}

	boms := make([]domain.BOM, 0, len(parents))
	for _, p := range parents {
		components, err := r.listBOMComponents(ctx, p.id)
		if err != nil {
			return nil, err
		}
		boms = append(boms, domain.BOM{
			ParentProductID:   p.id,
			ParentProductName: p.name,
			Components:        components,
			TotalComponents:   len(components),
		})
	}
	return boms, nil
}

func (r *Repository) DeleteBOM(ctx context.Context, parentProductID int64) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM bom_components WHERE parent_product_id = $1", parentProductID,
	)
	if err != nil {
		return fmt.Errorf("delete BOM for product %d: %w", parentProductID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) listBOMComponents(ctx context.Context, parentProductID int64) ([]domain.BOMComponent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			bc.id,
			bc.component_product_id,
			bc.quantity::double precision,
			p.name,
			p.cost::double precision,
			u.name
		FROM bom_components bc
		JOIN products p ON p.id = bc.component_product_id
		LEFT JOIN units_of_measure u ON u.id = p.unit_id
		WHERE bc.parent_product_id = $1
		ORDER BY bc.id ASC
	`, parentProductID)
	if err != nil {
		return nil, fmt.Errorf("query BOM components %d: %w", parentProductID, err)
	}
	defer rows.Close()

	components := make([]domain.BOMComponent, 0)
	for rows.Next() {
		var (
			component domain.BOMComponent
			unitName  sql.NullString
		)
		if err := rows.Scan(
			&component.ID,
			&component.ComponentProductID,
			&component.Quantity,
			&component.ComponentName,
			&component.ComponentCost,
			&unitName,
		); err != nil {
			return nil, fmt.Errorf("scan BOM component: %w", err)
		}
		if unitName.Valid {
			value := unitName.String
			component.UnitName = &value
		}
		components = append(components, component)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate BOM components %d: %w", parentProductID, err)
	}
	return components, nil
}

func (r *Repository) listBOMUsages(ctx context.Context, componentProductID int64) ([]domain.BOMUsage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT bc.parent_product_id, p.name, bc.quantity::double precision
		FROM bom_components bc
		JOIN products p ON p.id = bc.parent_product_id
		WHERE bc.component_product_id = $1
		ORDER BY bc.parent_product_id ASC
	`, componentProductID)
	if err != nil {
		return nil, fmt.Errorf("query BOM usages %d: %w", componentProductID, err)
	}
	defer rows.Close()

	usages := make([]domain.BOMUsage, 0)
	for rows.Next() {
		var usage domain.BOMUsage
		if err := rows.Scan(&usage.ParentProductID, &usage.ParentProductName, &usage.Quantity); err != nil {
			return nil, fmt.Errorf("scan BOM usage: %w", err)
		}
		usages = append(usages, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate BOM usages %d: %w", componentProductID, err)
	}
	return usages, nil
}
