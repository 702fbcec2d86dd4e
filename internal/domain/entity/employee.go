package entity

import "time"

// Employee persona física registrable en el reconocimiento facial.
// Es distinta de las cuentas de acceso (User).
type Employee struct {
	ID         int64
	Name       string
	EmployeeID string // código de carné, único
	FaceLabel  int    // etiqueta de clase del modelo biométrico, única
	IsActive   bool   // solo afecta verificaciones nuevas
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
