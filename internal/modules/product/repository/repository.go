package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/product/dto"
	"github.com/jmoiron/sqlx"
)

type ProductRepository interface {
	FindPaged(ctx context.Context, filter dto.ProductFilter) ([]entity.Product, int64, error)
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, product *entity.Product) (int64, error)
	Update(ctx context.Context, product *entity.Product) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GroupByCategory(ctx context.Context) ([]entity.ProductGroup, error)
}

const selectProducts = `SELECT p.id, p.name, p.price, p.category_id, p.created_at, p.updated_at, c.name AS category_name
FROM products p
LEFT JOIN categories c ON c.id = p.category_id`

var sortColumns = map[string]string{
	"name":       "p.name",
	"price":      "p.price",
	"category":   "c.name",
	"createdat":  "p.created_at",
	"created_at": "p.created_at",
}

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

// FindPaged expects an already normalized page query.
func (r *productRepository) FindPaged(ctx context.Context, f dto.ProductFilter) ([]entity.Product, int64, error) {
	conditions := []string{}
	args := []interface{}{}

	if search := strings.TrimSpace(f.Search); search != "" {
		conditions = append(conditions, `LOWER(p.name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
	}
	if f.CategoryID != nil {
		conditions = append(conditions, "p.category_id = ?")
		args = append(args, *f.CategoryID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := r.db.Rebind("SELECT COUNT(1) FROM products p" + whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(selectProducts + whereClause + " ORDER BY " + orderBy(f.SortBy, f.SortDesc) + " LIMIT ? OFFSET ?")
	products := []entity.Product{}
	if err := r.db.SelectContext(ctx, &products, query, append(args, f.PageSize, f.Offset())...); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func orderBy(sortBy string, desc bool) string {
	column, ok := sortColumns[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		column = "p.id"
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	if column == "p.id" {
		return column + " " + direction
	}
	return column + " " + direction + ", p.id ASC"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	query := r.db.Rebind(selectProducts + " WHERE p.id = ?")
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(1) FROM products WHERE id = ?`), id); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) (int64, error) {
	var id int64
	query := r.db.Rebind(`INSERT INTO products (name, price, category_id, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, product.Name, product.Price, product.CategoryID, product.CreatedAt).Scan(&id); err != nil {
		return 0, err
	}
	product.ID = id
	return id, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) (bool, error) {
	query := r.db.Rebind(`UPDATE products SET name = ?, price = ?, category_id = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, product.Name, product.Price, product.CategoryID, product.UpdatedAt, product.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GroupByCategory includes categories without products, with zeroed aggregates.
func (r *productRepository) GroupByCategory(ctx context.Context) ([]entity.ProductGroup, error) {
	query := `
        SELECT c.id AS category_id,
               c.name AS category_name,
               COUNT(p.id) AS product_count,
               COALESCE(SUM(p.price), 0) AS total_value,
               COALESCE(AVG(p.price), 0) AS average_price,
               COALESCE(MIN(p.price), 0) AS min_price,
               COALESCE(MAX(p.price), 0) AS max_price
        FROM categories c
        LEFT JOIN products p ON p.category_id = c.id
        GROUP BY c.id, c.name
        ORDER BY c.name
    `
	groups := []entity.ProductGroup{}
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, err
	}
	return groups, nil
}
