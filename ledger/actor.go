package ledger

import "github.com/nastradacha/inventory-app/models"

// Actor identifies the caller of a ledger operation. It is passed explicitly
// rather than pulled from any session machinery; the web layer builds one
// from the authenticated user.
type Actor struct {
	UserID   uint
	Username string
	Role     string
}

// IsManager reports whether the actor may take privileged actions such as
// below-cost overrides, product deletion and user management.
func (a Actor) IsManager() bool {
	return a.Role == models.RoleManager
}
