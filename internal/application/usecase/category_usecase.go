package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

// CategoryUseCase casos de uso CRUD para categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría. ErrDuplicate si el nombre ya existe.
func (uc *CategoryUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !actor.Can(entity.CapManageCatalog) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	c := &entity.Category{Name: name, Description: in.Description, CreatedAt: time.Now()}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// List lista todas las categorías por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Update renombra o describe una categoría.
func (uc *CategoryUseCase) Update(ctx context.Context, actor entity.Actor, id int64, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !actor.Can(entity.CapManageCatalog) {
		return nil, domain.ErrForbidden
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	c.Name = name
	c.Description = in.Description
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// Delete elimina una categoría sin productos; ErrConflict si tiene.
func (uc *CategoryUseCase) Delete(ctx context.Context, actor entity.Actor, id int64) error {
	if !actor.Can(entity.CapManageCatalog) {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(ctx, id)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
