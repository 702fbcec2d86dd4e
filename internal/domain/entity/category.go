package entity

import "time"

// Category agrupa productos. No puede eliminarse mientras tenga productos.
type Category struct {
	ID          int64
	Name        string // único
	Description string
	CreatedAt   time.Time
}
