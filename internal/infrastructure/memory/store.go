// Package memory implementa los puertos de persistencia en memoria.
// Sirve para pruebas y para ejecutar la API sin PostgreSQL.
// Las transacciones se serializan con un mutex y se revierten restaurando una copia del estado.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/almacen-faceid/internal/application/inventory"
	"github.com/jhoicas/almacen-faceid/internal/application/usecase"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
)

var (
	_ inventory.TxRunner      = (*Store)(nil)
	_ usecase.CatalogTxRunner = (*Store)(nil)
)

type state struct {
	seq        int64
	users      map[int64]entity.User
	categories map[int64]entity.Category
	products   map[int64]entity.Product
	stock      map[int64]entity.Stock
	employees  map[int64]entity.Employee
	movements  map[int64]entity.Movement
	items      map[int64]entity.MovementItem
}

func newState() *state {
	return &state{
		users:      map[int64]entity.User{},
		categories: map[int64]entity.Category{},
		products:   map[int64]entity.Product{},
		stock:      map[int64]entity.Stock{},
		employees:  map[int64]entity.Employee{},
		movements:  map[int64]entity.Movement{},
		items:      map[int64]entity.MovementItem{},
	}
}

func (st *state) nextID() int64 {
	st.seq++
	return st.seq
}

// clone copia el estado. Los valores se guardan por valor, así que basta con copiar los mapas.
func (st *state) clone() *state {
	return &state{
		seq:        st.seq,
		users:      maps.Clone(st.users),
		categories: maps.Clone(st.categories),
		products:   maps.Clone(st.products),
		stock:      maps.Clone(st.stock),
		employees:  maps.Clone(st.employees),
		movements:  maps.Clone(st.movements),
		items:      maps.Clone(st.items),
	}
}

// Store almacén en memoria compartido por todos los repositorios.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// view acceso al estado; dentro de una tx el mutex ya está tomado.
type view struct {
	s    *Store
	inTx bool
}

func (v view) do(fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.st)
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{v: view{s: s}} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{v: view{s: s}} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{v: view{s: s}} }

// Stock repositorio del libro de stock.
func (s *Store) Stock() *StockRepo { return &StockRepo{v: view{s: s}} }

// Employees repositorio de empleados.
func (s *Store) Employees() *EmployeeRepo { return &EmployeeRepo{v: view{s: s}} }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{v: view{s: s}} }

// Run ejecuta fn con repositorios transaccionales. Si fn falla el estado vuelve al previo.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	employeeRepo repository.EmployeeRepository,
) error) error {
	return s.inTx(ctx, func(v view) error {
		return fn(&MovementRepo{v: v}, &StockRepo{v: v}, &ProductRepo{v: v}, &EmployeeRepo{v: v})
	})
}

// RunCatalog igual que Run con los repositorios de catálogo.
func (s *Store) RunCatalog(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
) error) error {
	return s.inTx(ctx, func(v view) error {
		return fn(&ProductRepo{v: v}, &StockRepo{v: v})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(v view) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(view{s: s, inTx: true}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}
