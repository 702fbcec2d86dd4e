package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `
	id, movement_type, status, performed_by, face_employee_id, face_verified, face_confidence,
	face_verified_at, note, reversed_movement_id, created_at, updated_at`

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste la cabecera del movimiento. Los ítems se agregan con AddItem.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO movements (movement_type, status, performed_by, face_employee_id, face_verified,
			face_confidence, face_verified_at, note, reversed_movement_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		m.Type, m.Status, m.PerformedBy, m.FaceEmployeeID, m.FaceVerified,
		m.FaceConfidence, m.FaceVerifiedAt, m.Note, m.ReversedMovementID, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			if m.ReversedMovementID != nil {
				return domain.ErrAlreadyReversed
			}
			return fmt.Errorf("ya existe un borrador %s del usuario: %w", m.Type, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create movement: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento con sus ítems.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getWithItems(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento bloqueando su fila hasta el fin de la tx.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getWithItems(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1 FOR UPDATE`, id)
}

// GetReversalOf devuelve el movimiento cuyo reversed_movement_id es id.
func (r *MovementRepo) GetReversalOf(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getWithItems(ctx, `SELECT `+movementColumns+` FROM movements WHERE reversed_movement_id = $1`, id)
}

// List lista movimientos, más recientes primero, con sus ítems y el total sin paginar.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("movement_type = $%d", f.Type)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.PerformedBy > 0 {
		add("performed_by = $%d", f.PerformedBy)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + movementColumns + ` FROM movements WHERE ` + cond +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	var list []*entity.Movement
	byID := make(map[int64]*entity.Movement)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		list = append(list, m)
		byID[m.ID] = m
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	if len(list) == 0 {
		return list, total, nil
	}

	ids := make([]int64, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, it := range items {
		if m := byID[it.MovementID]; m != nil {
			m.Items = append(m.Items, it)
		}
	}
	return list, total, nil
}

// CancelPending cancela los borradores del usuario para el tipo dado.
// Toma un advisory lock de transacción por usuario: las altas concurrentes del mismo
// usuario se serializan y la segunda ve (y cancela) el borrador de la primera.
func (r *MovementRepo) CancelPending(ctx context.Context, userID int64, movementType string) (int64, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
		return 0, fmt.Errorf("lock pending movements: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE movements SET status = 'CANCELLED', updated_at = now()
		WHERE status = 'PENDING' AND performed_by = $1 AND movement_type = $2`,
		userID, movementType,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel pending movements: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// UpdateStatus cambia solo el estado del movimiento.
func (r *MovementRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE movements SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update movement status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkVerified registra la verificación facial y pasa el movimiento a VERIFIED.
func (r *MovementRepo) MarkVerified(ctx context.Context, id int64, employeeID int64, confidence float64, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movements
		SET status = 'VERIFIED', face_verified = TRUE, face_employee_id = $2,
			face_confidence = $3, face_verified_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'PENDING'`,
		id, employeeID, confidence, at,
	)
	if err != nil {
		return fmt.Errorf("mark movement verified: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMovementNotPending
	}
	return nil
}

// AddItem inserta un ítem y asigna su ID.
func (r *MovementRepo) AddItem(ctx context.Context, it *entity.MovementItem) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO movement_items (movement_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		it.MovementID, it.ProductID, it.Quantity, it.UnitPrice,
	).Scan(&it.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto %d: %w", it.ProductID, domain.ErrNotFound)
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("add movement item: %w", err)
	}
	return nil
}

// UpdateItem actualiza cantidad y precio de un ítem.
func (r *MovementRepo) UpdateItem(ctx context.Context, it *entity.MovementItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE movement_items SET quantity = $3, unit_price = $4
		WHERE id = $1 AND movement_id = $2`,
		it.ID, it.MovementID, it.Quantity, it.UnitPrice,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update movement item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem elimina un ítem del movimiento.
func (r *MovementRepo) DeleteItem(ctx context.Context, movementID, itemID int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movement_items WHERE id = $1 AND movement_id = $2`, itemID, movementID)
	if err != nil {
		return fmt.Errorf("delete movement item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MovementRepo) getWithItems(ctx context.Context, query string, args ...any) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.loadItems(ctx, []int64{m.ID})
	if err != nil {
		return nil, err
	}
	m.Items = items
	return m, nil
}

func (r *MovementRepo) loadItems(ctx context.Context, movementIDs []int64) ([]entity.MovementItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.movement_id, i.product_id, i.quantity, i.unit_price, p.name, p.sku, p.unit
		FROM movement_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.movement_id = ANY($1)
		ORDER BY i.movement_id, i.id`, movementIDs)
	if err != nil {
		return nil, fmt.Errorf("load movement items: %w", err)
	}
	defer rows.Close()
	var items []entity.MovementItem
	for rows.Next() {
		var it entity.MovementItem
		if err := rows.Scan(&it.ID, &it.MovementID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.ProductName, &it.ProductSKU, &it.ProductUnit); err != nil {
			return nil, fmt.Errorf("scan movement item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(&m.ID, &m.Type, &m.Status, &m.PerformedBy, &m.FaceEmployeeID, &m.FaceVerified,
		&m.FaceConfidence, &m.FaceVerifiedAt, &m.Note, &m.ReversedMovementID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	return &m, nil
}
