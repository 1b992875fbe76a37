package models

// Role is the closed set of roles known to the system. Authorization is a
// static table lookup, evaluated once per request by the middleware.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleOrderManager  Role = "order_manager"
	RoleWindowDresser Role = "window_dresser"
)

type Permission string

const (
	PermSubmitOrders      Permission = "orders:submit"
	PermEditAggregate     Permission = "orders:edit"
	PermSendOrders        Permission = "orders:send"
	PermViewReports       Permission = "orders:report"
	PermManageCatalog     Permission = "catalog:manage"
	PermManageSuppliers   Permission = "suppliers:manage"
	PermManageRestaurants Permission = "restaurants:manage"
)

var rolePolicy = map[Role][]Permission{
	RoleOrderManager:  {PermSubmitOrders, PermEditAggregate, PermSendOrders},
	RoleWindowDresser: {PermManageCatalog},
	// RoleAdmin is handled in Can: admins pass every check.
}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleOrderManager, RoleWindowDresser:
		return Role(s), true
	}
	return "", false
}

func (r Role) Can(p Permission) bool {
	if r == RoleAdmin {
		return true
	}
	for _, granted := range rolePolicy[r] {
		if granted == p {
			return true
		}
	}
	return false
}
