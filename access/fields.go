package access

import (
	"fmt"

	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/models"
)

// TaskClientID returns the owning client for a task the actor is creating.
// A client always owns what it creates; an admin must name the owner.
func TaskClientID(actor Actor, requested uint) (uint, error) {
	switch actor.Role {
	case models.RoleClient:
		return actor.ID, nil
	case models.RoleAdmin:
		if requested == 0 {
			return 0, fmt.Errorf("%w: clientId is required", common.ErrValidation)
		}
		return requested, nil
	default:
		return 0, fmt.Errorf("%w: create task: %s", common.ErrForbidden, ReasonRole)
	}
}

// StatusLogRunnerID returns the author to record on a status log the actor is
// writing. A runner defaults to itself and may not write on behalf of another
// runner; an admin may name anyone or no one.
func StatusLogRunnerID(actor Actor, requested *uint) (*uint, error) {
	switch actor.Role {
	case models.RoleRunner:
		if requested != nil && *requested != actor.ID {
			return nil, fmt.Errorf("%w: runnerId must be your own id", common.ErrForbidden)
		}
		id := actor.ID
		return &id, nil
	case models.RoleAdmin:
		return requested, nil
	default:
		return nil, fmt.Errorf("%w: write status log: %s", common.ErrForbidden, ReasonRole)
	}
}

// CanChangeRole reports whether the actor may set a user's role.
func CanChangeRole(actor Actor) bool {
	return actor.Authenticated() && actor.Role == models.RoleAdmin
}
