package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var (
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// EmployeeRepo empleados en memoria.
type EmployeeRepo struct{ v view }

func (r *EmployeeRepo) Create(_ context.Context, e *entity.Employee) error {
	return r.v.do(func(st *state) error {
		for _, other := range st.employees {
			if other.EmployeeID == e.EmployeeID || other.FaceLabel == e.FaceLabel {
				return domain.ErrDuplicate
			}
		}
		e.ID = st.nextID()
		st.employees[e.ID] = *e
		return nil
	})
}

func (r *EmployeeRepo) GetByID(_ context.Context, id int64) (*entity.Employee, error) {
	var out *entity.Employee
	err := r.v.do(func(st *state) error {
		if e, ok := st.employees[id]; ok {
			out = &e
		}
		return nil
	})
	return out, err
}

func (r *EmployeeRepo) GetByFaceLabel(_ context.Context, label int) (*entity.Employee, error) {
	var out *entity.Employee
	err := r.v.do(func(st *state) error {
		for _, e := range st.employees {
			if e.FaceLabel == label {
				out = &e
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *EmployeeRepo) List(_ context.Context, onlyActive bool) ([]*entity.Employee, error) {
	var out []*entity.Employee
	err := r.v.do(func(st *state) error {
		for _, e := range st.employees {
			if onlyActive && !e.IsActive {
				continue
			}
			out = append(out, &e)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Employee) int { return cmp.Compare(a.Name, b.Name) })
	return out, err
}

func (r *EmployeeRepo) Update(_ context.Context, e *entity.Employee) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.employees[e.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name = e.Name
		cur.IsActive = e.IsActive
		cur.UpdatedAt = e.UpdatedAt
		st.employees[e.ID] = cur
		return nil
	})
}

// UserRepo usuarios en memoria.
type UserRepo struct{ v view }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.do(func(st *state) error {
		for _, other := range st.users {
			if other.Username == u.Username {
				return domain.ErrDuplicate
			}
		}
		u.ID = st.nextID()
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.v.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			out = append(out, &u)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.User) int { return cmp.Compare(a.Username, b.Username) })
	return out, err
}
