package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.StockRepository    = (*StockRepo)(nil)
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ v view }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.v.do(func(st *state) error {
		for _, other := range st.categories {
			if strings.EqualFold(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		c.ID = st.nextID()
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	var out *entity.Category
	err := r.v.do(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.v.do(func(st *state) error {
		for _, c := range st.categories {
			out = append(out, &c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Category) int { return cmp.Compare(a.Name, b.Name) })
	return out, err
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.categories {
			if other.ID != c.ID && strings.EqualFold(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) Delete(_ context.Context, id int64) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return domain.ErrNotFound
		}
		for _, p := range st.products {
			if p.CategoryID == id {
				return domain.ErrConflict
			}
		}
		delete(st.categories, id)
		return nil
	})
}

// ProductRepo productos en memoria.
type ProductRepo struct{ v view }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.categories[p.CategoryID]; !ok {
			return fmt.Errorf("categoría %d: %w", p.CategoryID, domain.ErrNotFound)
		}
		if productConflicts(st, p) {
			return domain.ErrDuplicate
		}
		p.ID = st.nextID()
		st.products[p.ID] = *p
		return nil
	})
}

func productConflicts(st *state, p *entity.Product) bool {
	for _, other := range st.products {
		if other.ID == p.ID {
			continue
		}
		if other.SKU == p.SKU || other.UID == p.UID || (p.Barcode != "" && other.Barcode == p.Barcode) {
			return true
		}
	}
	return false
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = withCategory(st, p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		match := func(f func(p entity.Product) bool) bool {
			for _, p := range st.products {
				if f(p) {
					out = withCategory(st, p)
					return true
				}
			}
			return false
		}
		_ = match(func(p entity.Product) bool { return p.Barcode != "" && p.Barcode == code }) ||
			match(func(p entity.Product) bool { return strings.EqualFold(p.UID, code) }) ||
			match(func(p entity.Product) bool { return p.SKU == code })
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]*entity.Product, error) {
	out := make(map[int64]*entity.Product, len(ids))
	err := r.v.do(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = withCategory(st, p)
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.categories[p.CategoryID]; !ok {
			return fmt.Errorf("categoría %d: %w", p.CategoryID, domain.ErrNotFound)
		}
		if productConflicts(st, p) {
			return domain.ErrDuplicate
		}
		cur.Name = p.Name
		cur.Barcode = p.Barcode
		cur.CategoryID = p.CategoryID
		cur.Unit = p.Unit
		cur.MinStock = p.MinStock
		cur.Description = p.Description
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) Search(_ context.Context, f entity.ProductFilter) ([]*entity.Product, int, error) {
	var all []*entity.Product
	err := r.v.do(func(st *state) error {
		q := strings.ToLower(strings.TrimSpace(f.Query))
		for _, p := range st.products {
			if f.CategoryID > 0 && p.CategoryID != f.CategoryID {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.SKU), q) &&
				!strings.Contains(strings.ToLower(p.Barcode), q) {
				continue
			}
			all = append(all, withCategory(st, p))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b *entity.Product) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return paginate(all, f.Limit, f.Offset), len(all), nil
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		for _, it := range st.items {
			if it.ProductID == id {
				return domain.ErrConflict
			}
		}
		delete(st.products, id)
		delete(st.stock, id)
		return nil
	})
}

func withCategory(st *state, p entity.Product) *entity.Product {
	p.CategoryName = st.categories[p.CategoryID].Name
	return &p
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// StockRepo libro de stock en memoria.
type StockRepo struct{ v view }

func (r *StockRepo) Get(_ context.Context, productID int64) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.v.do(func(st *state) error {
		if s, ok := st.stock[productID]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) GetMany(_ context.Context, productIDs []int64) (map[int64]*entity.Stock, error) {
	out := make(map[int64]*entity.Stock, len(productIDs))
	err := r.v.do(func(st *state) error {
		for _, id := range productIDs {
			if s, ok := st.stock[id]; ok {
				out[id] = &s
			}
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) EnsureExists(_ context.Context, productID int64) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
		}
		if _, ok := st.stock[productID]; !ok {
			st.stock[productID] = entity.Stock{ProductID: productID, LastUpdated: time.Now()}
		}
		return nil
	})
}

// GetForUpdate en memoria equivale a Get: la tx ya tiene el estado en exclusiva.
func (r *StockRepo) GetForUpdate(_ context.Context, productID int64) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.v.do(func(st *state) error {
		s, ok := st.stock[productID]
		if !ok {
			return fmt.Errorf("stock del producto %d: %w", productID, domain.ErrNotFound)
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *StockRepo) SetQuantity(_ context.Context, productID, qty int64) error {
	return r.v.do(func(st *state) error {
		s, ok := st.stock[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if qty < 0 {
			return domain.ErrInsufficientStock
		}
		s.CurrentQty = qty
		s.LastUpdated = time.Now()
		st.stock[productID] = s
		return nil
	})
}
