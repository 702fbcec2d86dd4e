package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos en memoria. Los ítems se guardan aparte, como en la tabla movement_items.
type MovementRepo struct{ v view }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.do(func(st *state) error {
		if m.ReversedMovementID != nil {
			if _, ok := st.movements[*m.ReversedMovementID]; !ok {
				return fmt.Errorf("create movement: %w", domain.ErrNotFound)
			}
			for _, other := range st.movements {
				if other.ReversedMovementID != nil && *other.ReversedMovementID == *m.ReversedMovementID {
					return domain.ErrAlreadyReversed
				}
			}
		}
		m.ID = st.nextID()
		header := *m
		header.Items = nil
		st.movements[m.ID] = header
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.v.do(func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = withItems(st, m)
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) GetReversalOf(_ context.Context, id int64) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if m.ReversedMovementID != nil && *m.ReversedMovementID == id {
				out = withItems(st, m)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.Movement, int, error) {
	var all []*entity.Movement
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.Status != "" && m.Status != f.Status {
				continue
			}
			if f.PerformedBy > 0 && m.PerformedBy != f.PerformedBy {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			all = append(all, withItems(st, m))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b *entity.Movement) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return paginate(all, f.Limit, f.Offset), len(all), nil
}

func (r *MovementRepo) CancelPending(_ context.Context, userID int64, movementType string) (int64, error) {
	var n int64
	err := r.v.do(func(st *state) error {
		for id, m := range st.movements {
			if m.Status == entity.MovementStatusPending && m.PerformedBy == userID && m.Type == movementType {
				m.Status = entity.MovementStatusCancelled
				m.UpdatedAt = time.Now()
				st.movements[id] = m
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *MovementRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	return r.v.do(func(st *state) error {
		m, ok := st.movements[id]
		if !ok {
			return domain.ErrNotFound
		}
		m.Status = status
		m.UpdatedAt = time.Now()
		st.movements[id] = m
		return nil
	})
}

func (r *MovementRepo) MarkVerified(_ context.Context, id int64, employeeID int64, confidence float64, at time.Time) error {
	return r.v.do(func(st *state) error {
		m, ok := st.movements[id]
		if !ok || m.Status != entity.MovementStatusPending {
			return domain.ErrMovementNotPending
		}
		m.Status = entity.MovementStatusVerified
		m.FaceVerified = true
		m.FaceEmployeeID = &employeeID
		m.FaceConfidence = &confidence
		m.FaceVerifiedAt = &at
		m.UpdatedAt = at
		st.movements[id] = m
		return nil
	})
}

func (r *MovementRepo) AddItem(_ context.Context, it *entity.MovementItem) error {
	return r.v.do(func(st *state) error {
		if it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			return domain.ErrInvalidInput
		}
		if _, ok := st.movements[it.MovementID]; !ok {
			return fmt.Errorf("movimiento %d: %w", it.MovementID, domain.ErrNotFound)
		}
		if _, ok := st.products[it.ProductID]; !ok {
			return fmt.Errorf("producto %d: %w", it.ProductID, domain.ErrNotFound)
		}
		for _, other := range st.items {
			if other.MovementID == it.MovementID && other.ProductID == it.ProductID {
				return domain.ErrDuplicate
			}
		}
		it.ID = st.nextID()
		st.items[it.ID] = *it
		return nil
	})
}

func (r *MovementRepo) UpdateItem(_ context.Context, it *entity.MovementItem) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.items[it.ID]
		if !ok || cur.MovementID != it.MovementID {
			return domain.ErrNotFound
		}
		if it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			return domain.ErrInvalidInput
		}
		cur.Quantity = it.Quantity
		cur.UnitPrice = it.UnitPrice
		st.items[it.ID] = cur
		return nil
	})
}

func (r *MovementRepo) DeleteItem(_ context.Context, movementID, itemID int64) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.items[itemID]
		if !ok || cur.MovementID != movementID {
			return domain.ErrNotFound
		}
		delete(st.items, itemID)
		return nil
	})
}

func withItems(st *state, m entity.Movement) *entity.Movement {
	m.Items = nil
	for _, it := range st.items {
		if it.MovementID != m.ID {
			continue
		}
		p := st.products[it.ProductID]
		it.ProductName = p.Name
		it.ProductSKU = p.SKU
		it.ProductUnit = p.Unit
		m.Items = append(m.Items, it)
	}
	slices.SortFunc(m.Items, func(a, b entity.MovementItem) int { return cmp.Compare(a.ID, b.ID) })
	return &m
}
