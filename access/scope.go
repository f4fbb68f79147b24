package access

import "github.com/redasGoluenko/Errando/database/models"

// Scope is the subset of a listing an actor may see. Services translate it
// into a query filter.
type Scope int

const (
	// ScopeNone matches nothing.
	ScopeNone Scope = iota
	// ScopeAll matches every row.
	ScopeAll
	// ScopeOwned matches rows whose task is owned by the actor.
	ScopeOwned
	// ScopeClaimable matches rows whose task is unassigned or assigned to the actor.
	ScopeClaimable
	// ScopeAuthored matches status logs written by the actor.
	ScopeAuthored
	// ScopeSelf matches the actor's own account.
	ScopeSelf
)

// ListScope returns the rows of kind that actor may list. It agrees with the
// read rules of Evaluate.
func ListScope(actor Actor, kind Kind) Scope {
	if !actor.Authenticated() {
		return ScopeNone
	}
	switch actor.Role {
	case models.RoleAdmin:
		return ScopeAll
	case models.RoleClient:
		if kind == KindUser {
			return ScopeSelf
		}
		return ScopeOwned
	case models.RoleRunner:
		switch kind {
		case KindStatusLog:
			return ScopeAuthored
		case KindUser:
			return ScopeSelf
		default:
			return ScopeClaimable
		}
	default:
		return ScopeNone
	}
}
