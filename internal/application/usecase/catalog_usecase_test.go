package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/infrastructure/memory"
)

type catalogFixture struct {
	ctx        context.Context
	store      *memory.Store
	categories *usecase.CategoryUseCase
	products   *usecase.ProductUseCase
	categoryID int64
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.NewStore()
	f := &catalogFixture{
		ctx:        context.Background(),
		store:      store,
		categories: usecase.NewCategoryUseCase(store.Categories()),
		products:   usecase.NewProductUseCase(store, store.Products(), store.Stock()),
	}
	cat, err := f.categories.Create(f.ctx, adminActor, dto.CreateCategoryRequest{Name: "Herramientas"})
	require.NoError(t, err)
	f.categoryID = cat.ID
	return f
}

func (f *catalogFixture) product(t *testing.T, name, sku, barcode string) *dto.ProductResponse {
	t.Helper()
	p, err := f.products.Create(f.ctx, adminActor, dto.CreateProductRequest{
		Name: name, SKU: sku, Barcode: barcode, CategoryID: f.categoryID, MinStock: 5,
	})
	require.NoError(t, err)
	return p
}

func TestCategory_CRUD(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.categories.Create(f.ctx, adminActor, dto.CreateCategoryRequest{Name: "herramientas"})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "el nombre no distingue mayúsculas")

	other, err := f.categories.Create(f.ctx, adminActor, dto.CreateCategoryRequest{Name: "Aseo", Description: "limpieza"})
	require.NoError(t, err)

	list, err := f.categories.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aseo", list[0].Name)

	renamed, err := f.categories.Update(f.ctx, adminActor, other.ID, dto.CreateCategoryRequest{Name: "Limpieza"})
	require.NoError(t, err)
	assert.Equal(t, "Limpieza", renamed.Name)

	_, err = f.categories.Update(f.ctx, adminActor, 999, dto.CreateCategoryRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.categories.Delete(f.ctx, adminActor, other.ID))
	assert.ErrorIs(t, f.categories.Delete(f.ctx, adminActor, other.ID), domain.ErrNotFound)
}

func TestCategory_ConProductosNoSeBorra(t *testing.T) {
	f := newCatalogFixture(t)
	f.product(t, "Martillo", "HER-001", "")

	assert.ErrorIs(t, f.categories.Delete(f.ctx, adminActor, f.categoryID), domain.ErrConflict)
}

func TestCatalog_SoloAdminEdita(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.categories.Create(f.ctx, operatorActor, dto.CreateCategoryRequest{Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.products.Create(f.ctx, operatorActor, dto.CreateProductRequest{Name: "X", SKU: "X", CategoryID: f.categoryID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.products.Delete(f.ctx, viewerActor, 1), domain.ErrForbidden)
}

func TestProduct_NaceConStockCero(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.product(t, "Martillo", "HER-001", "7701234567890")

	assert.NotEmpty(t, p.UID)
	assert.Equal(t, entity.DefaultUnit, p.Unit)
	assert.Equal(t, "Herramientas", p.CategoryName)
	require.NotNil(t, p.CurrentQty)
	assert.Zero(t, *p.CurrentQty)
	require.NotNil(t, p.IsLowStock)
	assert.True(t, *p.IsLowStock)

	s, err := f.store.Stock().Get(f.ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, s, "la fila de stock se crea con el producto")
}

func TestProduct_CodigosUnicos(t *testing.T) {
	f := newCatalogFixture(t)
	f.product(t, "Martillo", "HER-001", "7701234567890")

	_, err := f.products.Create(f.ctx, adminActor, dto.CreateProductRequest{Name: "Otro", SKU: "HER-001", CategoryID: f.categoryID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = f.products.Create(f.ctx, adminActor, dto.CreateProductRequest{Name: "Otro", SKU: "HER-002", Barcode: "7701234567890", CategoryID: f.categoryID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = f.products.Create(f.ctx, adminActor, dto.CreateProductRequest{Name: "Otro", SKU: "HER-003", CategoryID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_LookupPorCodigoEscaneado(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.product(t, "Martillo", "HER-001", "7701234567890")

	for name, code := range map[string]string{
		"barcode": "7701234567890",
		"uid":     p.UID,
		"sku":     "HER-001",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := f.products.Lookup(f.ctx, code)
			require.NoError(t, err)
			assert.Equal(t, p.ID, got.ID)
		})
	}

	_, err := f.products.Lookup(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.products.Lookup(f.ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_BusquedaPaginada(t *testing.T) {
	f := newCatalogFixture(t)
	f.product(t, "Martillo", "HER-001", "")
	f.product(t, "Destornillador", "HER-002", "")
	f.product(t, "Martillo de goma", "HER-003", "")

	out, err := f.products.Search(f.ctx, dto.ProductSearchRequest{Query: "martillo"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, dto.DefaultPageSize, out.Page.Limit)

	out, err = f.products.Search(f.ctx, dto.ProductSearchRequest{PageRequest: dto.PageRequest{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Martillo", out.Items[0].Name)
	require.NotNil(t, out.Items[0].CurrentQty)
}

func TestProduct_ActualizarNoTocaSKU(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.product(t, "Martillo", "HER-001", "")

	name := "Martillo carpintero"
	minStock := int64(2)
	got, err := f.products.Update(f.ctx, adminActor, p.ID, dto.UpdateProductRequest{Name: &name, MinStock: &minStock})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, "HER-001", got.SKU)
	assert.Equal(t, p.UID, got.UID)
	assert.Equal(t, int64(2), got.MinStock)

	negative := int64(-1)
	_, err = f.products.Update(f.ctx, adminActor, p.ID, dto.UpdateProductRequest{MinStock: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.products.Update(f.ctx, adminActor, 999, dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_ConMovimientosNoSeBorra(t *testing.T) {
	f := newCatalogFixture(t)
	used := f.product(t, "Martillo", "HER-001", "")
	unused := f.product(t, "Serrucho", "HER-002", "")

	mov := &entity.Movement{Type: entity.MovementTypeIN, Status: entity.MovementStatusPending, PerformedBy: adminActor.UserID}
	require.NoError(t, f.store.Movements().Create(f.ctx, mov))
	require.NoError(t, f.store.Movements().AddItem(f.ctx, &entity.MovementItem{
		MovementID: mov.ID, ProductID: used.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(100),
	}))

	assert.ErrorIs(t, f.products.Delete(f.ctx, adminActor, used.ID), domain.ErrConflict)
	require.NoError(t, f.products.Delete(f.ctx, adminActor, unused.ID))
	_, err := f.products.GetByID(f.ctx, unused.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
