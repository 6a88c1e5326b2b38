package repository

import (
	"context"
	"database/sql"
	"errors"

	"anoa.com/catalog/internal/entity"
	"github.com/jmoiron/sqlx"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]entity.Category, error)
	FindByID(ctx context.Context, id int64) (*entity.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, category *entity.Category) (int64, error)
	Update(ctx context.Context, category *entity.Category) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]entity.Category, error) {
	categories := []entity.Category{}
	query := `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*entity.Category, error) {
	var category entity.Category
	query := r.db.Rebind(`SELECT id, name, created_at, updated_at FROM categories WHERE id = ?`)
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(1) FROM categories WHERE id = ?`)
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) (int64, error) {
	var id int64
	query := r.db.Rebind(`INSERT INTO categories (name, created_at) VALUES (?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, category.Name, category.CreatedAt).Scan(&id); err != nil {
		return 0, err
	}
	category.ID = id
	return id, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) (bool, error) {
	query := r.db.Rebind(`UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, category.Name, category.UpdatedAt, category.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the category together with its products in one transaction.
func (r *categoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM products WHERE category_id = ?`), id); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}
