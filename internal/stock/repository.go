package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetrow/salonbook/internal/finance"
	"github.com/velvetrow/salonbook/internal/storage"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository persists the inventory tables. Shopping runs touch products and
// the monthly ledger inside one transaction.
type Repository struct {
	db  db
	now func() time.Time
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("stock: pgx pool required")
	}
	return &Repository{db: pool, now: time.Now}
}

// NewRepositoryWithDB allows injecting a mock database for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db, now: time.Now}
}

/* Categories */

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("stock: list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("stock: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category with a unique name.
func (r *Repository) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c := Category{Name: req.Name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, req.Name).Scan(&c.ID)
	if storage.UniqueViolation(err) {
		return nil, ErrDuplicateCategory
	}
	if err != nil {
		return nil, fmt.Errorf("stock: create category: %w", err)
	}
	return &c, nil
}

// RenameCategory updates a category's name.
func (r *Repository) RenameCategory(ctx context.Context, id int64, req *CreateCategoryRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, req.Name)
	if storage.UniqueViolation(err) {
		return ErrDuplicateCategory
	}
	if err != nil {
		return fmt.Errorf("stock: rename category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category; its products cascade.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("stock: delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

/* Products */

const productColumns = `p.id, p.name, p.category_id, c.name, p.barcode, p.quantity,
	p.brand, to_char(p.last_opened_date, 'YYYY-MM-DD'), p.color, p.created_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CategoryName, &p.Barcode,
		&p.Quantity, &p.Brand, &p.LastOpenedDate, &p.Color, &p.CreatedAt)
}

// ListProducts returns all products with their category names, newest first.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("stock: list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("stock: scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct returns one product with its category name.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stock: get product: %w", err)
	}
	return &p, nil
}

// CreateProduct inserts a product with a unique barcode.
func (r *Repository) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, category_id, barcode, quantity, brand, last_opened_date, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		req.Name, req.CategoryID, req.Barcode, req.Quantity,
		req.Brand, req.LastOpenedDate, req.Color).Scan(&id)
	if storage.UniqueViolation(err) {
		return nil, ErrDuplicateBarcode
	}
	if storage.ForeignKeyViolation(err) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stock: create product: %w", err)
	}
	return r.GetProduct(ctx, id)
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("stock: delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

/* Shopping */

// CreateShopping records a shopping run: the list row, the product quantity
// increments and the monthly outcome all land in one transaction.
func (r *Repository) CreateShopping(ctx context.Context, req *ShoppingRequest) (*ShoppingList, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	monthYear := r.now().Format("2006-01")

	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("stock: marshal items: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock: begin shopping: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	list := ShoppingList{
		ShopName:  req.ShopName,
		TotalCost: req.TotalCost,
		MonthYear: monthYear,
		Items:     req.Items,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO shopping_lists (shop_name, total_cost, month_year, items)
		VALUES ($1, $2, $3, $4)
		RETURNING id, purchased_at`,
		req.ShopName, req.TotalCost, monthYear, items).Scan(&list.ID, &list.PurchasedAt)
	if err != nil {
		return nil, fmt.Errorf("stock: insert shopping list: %w", err)
	}

	for _, it := range req.Items {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity + $2 WHERE id = $1`,
			it.ProductID, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("stock: restock product %d: %w", it.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrProductNotFound
		}
	}

	if err := finance.AddOutcome(ctx, tx, monthYear, req.TotalCost); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("stock: commit shopping: %w", err)
	}
	return &list, nil
}

// ListShopping returns the shopping history, newest first, with product names
// joined into each item line.
func (r *Repository) ListShopping(ctx context.Context) ([]ShoppingList, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, shop_name, total_cost, month_year, purchased_at, items
		FROM shopping_lists
		ORDER BY purchased_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("stock: list shopping: %w", err)
	}
	defer rows.Close()

	var out []ShoppingList
	for rows.Next() {
		var (
			list ShoppingList
			raw  []byte
		)
		if err := rows.Scan(&list.ID, &list.ShopName, &list.TotalCost,
			&list.MonthYear, &list.PurchasedAt, &raw); err != nil {
			return nil, fmt.Errorf("stock: scan shopping list: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &list.Items); err != nil {
				return nil, fmt.Errorf("stock: decode items for list %d: %w", list.ID, err)
			}
		}
		out = append(out, list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	names, err := r.productNames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		for j := range out[i].Items {
			out[i].Items[j].Name = names[out[i].Items[j].ProductID]
		}
	}
	return out, nil
}

func (r *Repository) productNames(ctx context.Context) (map[int64]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM products`)
	if err != nil {
		return nil, fmt.Errorf("stock: product names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("stock: scan product name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
