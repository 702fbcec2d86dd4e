package entity

import "time"

// Stock cantidad actual de un producto (uno a uno con Product).
// Solo el motor de transacciones la modifica, siempre bajo bloqueo de fila.
type Stock struct {
	ProductID   int64
	CurrentQty  int64
	LastUpdated time.Time
}

// IsLowStock indica si la cantidad está en o por debajo del mínimo del producto.
func (s *Stock) IsLowStock(minStock int64) bool {
	return s.CurrentQty <= minStock
}

// StockLevel vista de lectura: stock junto con los datos del producto.
type StockLevel struct {
	ProductID    int64
	ProductName  string
	SKU          string
	Barcode      string
	CategoryName string
	Unit         string
	MinStock     int64
	CurrentQty   int64
	LastUpdated  time.Time
}

// IsLow indica stock bajo.
func (l StockLevel) IsLow() bool { return l.CurrentQty <= l.MinStock }

// Deficit cuánto falta para llegar al mínimo (0 si no hay déficit).
func (l StockLevel) Deficit() int64 {
	if l.CurrentQty >= l.MinStock {
		return 0
	}
	return l.MinStock - l.CurrentQty
}
