package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `
	p.id, p.uid::text, p.name, p.sku, COALESCE(p.barcode, ''), p.category_id, p.unit,
	p.min_stock, p.description, p.created_at, p.updated_at, c.name`

const productFrom = `
	FROM products p
	JOIN categories c ON c.id = p.category_id`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO products (uid, name, sku, barcode, category_id, unit, min_stock, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		p.UID, p.Name, p.SKU, nullString(p.Barcode), p.CategoryID, p.Unit, p.MinStock,
		p.Description, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("categoría %d: %w", p.CategoryID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = $1`, id)
}

// GetByCode busca por código de barras, luego por UID y por último por SKU.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+productFrom+`
		WHERE p.barcode = $1 OR p.uid::text = lower($1) OR p.sku = $1
		ORDER BY (p.barcode = $1) DESC NULLS LAST, (p.uid::text = lower($1)) DESC
		LIMIT 1`, code)
}

// GetByIDs obtiene varios productos indexados por ID.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error) {
	out := make(map[int64]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Update actualiza solo los campos descriptivos. SKU y UID no cambian.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products
		SET name = $2, barcode = $3, category_id = $4, unit = $5, min_stock = $6, description = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.Name, nullString(p.Barcode), p.CategoryID, p.Unit, p.MinStock, p.Description, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("categoría %d: %w", p.CategoryID, domain.ErrNotFound)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search lista productos por texto (nombre, SKU o código de barras) y categoría, con total.
func (r *ProductRepo) Search(ctx context.Context, f entity.ProductFilter) ([]*entity.Product, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(lower(p.name) LIKE $%d OR lower(p.sku) LIKE $%d OR lower(COALESCE(p.barcode, '')) LIKE $%d)", n, n, n))
	}
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products p WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + productColumns + productFrom + ` WHERE ` + cond +
		fmt.Sprintf(` ORDER BY p.name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Delete elimina un producto sin movimientos; ErrConflict si está referenciado.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.UID, &p.Name, &p.SKU, &p.Barcode, &p.CategoryID, &p.Unit,
		&p.MinStock, &p.Description, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
