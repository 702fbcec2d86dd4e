package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

const employeeColumns = `id, name, employee_id, face_label, is_active, created_at, updated_at`

// EmployeeRepo implementación del puerto EmployeeRepository sobre PostgreSQL.
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador de persistencia para empleados.
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// Create persiste un nuevo empleado; ErrDuplicate si el carné o la etiqueta ya existen.
func (r *EmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO employees (name, employee_id, face_label, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.Name, e.EmployeeID, e.FaceLabel, e.IsActive, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetByID obtiene un empleado por ID.
func (r *EmployeeRepo) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

// GetByFaceLabel obtiene el empleado asociado a una etiqueta del modelo biométrico.
func (r *EmployeeRepo) GetByFaceLabel(ctx context.Context, label int) (*entity.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE face_label = $1`, label)
}

// List lista empleados por nombre.
func (r *EmployeeRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Employee, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE NOT $1 OR is_active
		ORDER BY name`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()
	var list []*entity.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update actualiza nombre y estado. La etiqueta facial no cambia.
func (r *EmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE employees SET name = $2, is_active = $3, updated_at = $4
		WHERE id = $1`,
		e.ID, e.Name, e.IsActive, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Employee, error) {
	e, err := scanEmployee(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func scanEmployee(row pgx.Row) (*entity.Employee, error) {
	var e entity.Employee
	err := row.Scan(&e.ID, &e.Name, &e.EmployeeID, &e.FaceLabel, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	return &e, nil
}
