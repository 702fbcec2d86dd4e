package repository

import (
	"context"

	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
)

// EmployeeRepository define el puerto de persistencia para Employee (DIP).
type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id int64) (*entity.Employee, error)
	GetByFaceLabel(ctx context.Context, label int) (*entity.Employee, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.Employee, error)
	Update(ctx context.Context, employee *entity.Employee) error
}
