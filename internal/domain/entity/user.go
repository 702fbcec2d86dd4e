package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// Capability acción protegida del sistema.
type Capability string

// Capacidades por rol.
const (
	CapViewInventory  Capability = "inventory:view"
	CapMoveStock      Capability = "movement:write"
	CapReverse        Capability = "movement:reverse"
	CapManageCatalog  Capability = "catalog:manage"
	CapManageUsers    Capability = "users:manage"
	CapEnrollEmployee Capability = "employee:enroll"
)

var roleCapabilities = map[string][]Capability{
	RoleAdmin: {
		CapViewInventory, CapMoveStock, CapReverse,
		CapManageCatalog, CapManageUsers, CapEnrollEmployee,
	},
	RoleOperator: {CapViewInventory, CapMoveStock},
	RoleViewer:   {CapViewInventory},
}

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// User cuenta de acceso al sistema.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt
	FullName     string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identidad que ejecuta una operación (tomada del token y de la petición).
type Actor struct {
	UserID    int64
	Role      string
	SessionID string // jti del token; clave del binding facial
	Station   string // origen de red de la petición
}

// Can indica si el actor tiene la capacidad.
func (a Actor) Can(c Capability) bool {
	for _, have := range roleCapabilities[a.Role] {
		if have == c {
			return true
		}
	}
	return false
}

// CanReverse indica si el actor puede revertir movimientos verificados.
func (a Actor) CanReverse() bool { return a.Can(CapReverse) }
