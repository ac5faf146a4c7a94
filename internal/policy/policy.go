// Package policy is the single authorization table for the API. Routes declare
// the action they perform; the middleware checks the caller's role against
// this table instead of scattering role conditionals through handlers.
package policy

// Roles known to the system.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Action names one protected operation.
type Action string

const (
	ProductRead  Action = "product:read"
	ProductWrite Action = "product:write"

	StockMutationRead   Action = "stock_mutation:read"
	StockMutationRecord Action = "stock_mutation:record"

	StockCardManage Action = "stock_card:manage"

	OrderCreate       Action = "order:create"
	OrderRead         Action = "order:read" // visibility is further scoped per-user in the service
	OrderUpdateStatus Action = "order:update_status"

	UserManage Action = "user:manage"
)

// table maps each action to the roles allowed to perform it.
var table = map[Action][]string{
	ProductRead:  {RoleAdmin, RoleUser},
	ProductWrite: {RoleAdmin},

	StockMutationRead:   {RoleAdmin},
	StockMutationRecord: {RoleAdmin},

	StockCardManage: {RoleAdmin},

	OrderCreate:       {RoleAdmin, RoleUser},
	OrderRead:         {RoleAdmin, RoleUser},
	OrderUpdateStatus: {RoleAdmin},

	UserManage: {RoleAdmin},
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role string, action Action) bool {
	for _, r := range table[action] {
		if r == role {
			return true
		}
	}
	return false
}
