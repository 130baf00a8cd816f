package entity

// Roles de operador. El token los transporta; el middleware HTTP los exige por ruta.
const (
	RoleAdmin   = "admin"   // todas las operaciones y sucursales
	RoleManager = "manager" // reportes
	RoleCashier = "cashier" // ventas y devoluciones
	RoleStocker = "stocker" // compras y bajas
)

// Roles lista los roles válidos en orden estable.
var Roles = []string{RoleAdmin, RoleManager, RoleCashier, RoleStocker}

// ValidRole indica si role pertenece al conjunto cerrado.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
