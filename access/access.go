// Package access decides whether an actor may perform an action on a task,
// task item, status log or user.
//
// Evaluate is a pure function over the actor's role and the resource's
// resolved ownership chain. Callers load the resource (and its parents) first,
// then ask for a decision, then write. Check turns a decision into one of the
// common outcome errors, hiding resources the actor may not read behind
// common.ErrNotFound.
package access

import (
	"fmt"

	"github.com/redasGoluenko/Errando/common"
	"github.com/redasGoluenko/Errando/database/models"
)

// Action is an operation on a resource.
type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
	Assign
	Unassign
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Assign:
		return "assign"
	case Unassign:
		return "unassign"
	default:
		return "unknown"
	}
}

// Kind is the type of a resource.
type Kind int

const (
	KindTask Kind = iota
	KindTaskItem
	KindStatusLog
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindTaskItem:
		return "task item"
	case KindStatusLog:
		return "status log"
	case KindUser:
		return "user"
	default:
		return "resource"
	}
}

// Actor is the authenticated identity making a request.
type Actor struct {
	ID   uint
	Role models.Role
}

// Authenticated reports whether the actor carries a usable identity.
func (a Actor) Authenticated() bool {
	return a.ID != 0 && a.Role.Valid()
}

// Resource is a target together with its ownership chain.
//
// For a task, ClientID and RunnerID are the task's own. For a task item they
// are the parent task's. For a status log they are the parent task's and
// LogRunnerID is the log's own author. For a user, ID is the user id.
// For create actions the resource is the parent the new row will hang off.
type Resource struct {
	Kind        Kind
	ID          uint
	ClientID    uint
	RunnerID    *uint
	LogRunnerID *uint
}

// TaskResource builds the resource for a task.
func TaskResource(t *models.Task) Resource {
	return Resource{Kind: KindTask, ID: t.ID, ClientID: t.ClientID, RunnerID: t.RunnerID}
}

// TaskItemResource builds the resource for an item of parent.
func TaskItemResource(id uint, parent *models.Task) Resource {
	return Resource{Kind: KindTaskItem, ID: id, ClientID: parent.ClientID, RunnerID: parent.RunnerID}
}

// StatusLogResource builds the resource for a log whose item belongs to parent.
// log may be nil when the log is about to be created.
func StatusLogResource(log *models.StatusLog, parent *models.Task) Resource {
	r := Resource{Kind: KindStatusLog, ClientID: parent.ClientID, RunnerID: parent.RunnerID}
	if log != nil {
		r.ID = log.ID
		r.LogRunnerID = log.RunnerID
	}
	return r
}

// UserResource builds the resource for a user account.
func UserResource(id uint) Resource {
	return Resource{Kind: KindUser, ID: id}
}

func is(id *uint, actor uint) bool {
	return id != nil && *id == actor
}

// Evaluate decides whether actor may perform action on r.
// Admin is allowed everything except claiming a task for itself; anything
// without a matching allow rule is denied.
func Evaluate(actor Actor, action Action, r Resource) Result {
	if !actor.Authenticated() {
		return deny(ReasonUnauthenticated)
	}
	switch actor.Role {
	case models.RoleAdmin:
		return evaluateAdmin(action, r)
	case models.RoleClient:
		return evaluateClient(actor.ID, action, r)
	case models.RoleRunner:
		return evaluateRunner(actor.ID, action, r)
	default:
		return deny(ReasonUnauthenticated)
	}
}

func evaluateAdmin(action Action, r Resource) Result {
	if r.Kind == KindTask && action == Assign {
		return deny(ReasonRole)
	}
	return allow()
}

func evaluateClient(id uint, action Action, r Resource) Result {
	owner := r.ClientID == id
	switch r.Kind {
	case KindTask:
		switch action {
		case Create:
			// the new task is forced onto the client, see TaskClientID
			return allow()
		case Read, Update, Delete:
			return allowIf(owner, ReasonNotOwner)
		default:
			return deny(ReasonRole)
		}
	case KindTaskItem:
		switch action {
		case Read, Create, Update, Delete:
			return allowIf(owner, ReasonNotOwner)
		default:
			return deny(ReasonRole)
		}
	case KindStatusLog:
		if action == Read {
			return allowIf(owner, ReasonNotOwner)
		}
		if !owner {
			return deny(ReasonNotOwner)
		}
		return deny(ReasonRole)
	case KindUser:
		return evaluateSelf(id, action, r)
	default:
		return deny(ReasonRole)
	}
}

func evaluateRunner(id uint, action Action, r Resource) Result {
	assigned := is(r.RunnerID, id)
	switch r.Kind {
	case KindTask:
		switch action {
		case Read:
			return allowIf(r.RunnerID == nil || assigned, ReasonNotAssignee)
		case Assign:
			if r.RunnerID != nil {
				return deny(ReasonAlreadyAssigned)
			}
			return allow()
		case Unassign:
			return allowIf(assigned, ReasonNotAssignee)
		default:
			return deny(ReasonRole)
		}
	case KindTaskItem:
		if action == Read {
			return allowIf(r.RunnerID == nil || assigned, ReasonNotAssignee)
		}
		return deny(ReasonRole)
	case KindStatusLog:
		switch action {
		case Create:
			return allowIf(assigned, ReasonNotAssignee)
		case Read, Update, Delete:
			return allowIf(is(r.LogRunnerID, id), ReasonNotAuthor)
		default:
			return deny(ReasonRole)
		}
	case KindUser:
		return evaluateSelf(id, action, r)
	default:
		return deny(ReasonRole)
	}
}

// evaluateSelf covers non-admin access to user accounts: read and update self.
func evaluateSelf(id uint, action Action, r Resource) Result {
	switch action {
	case Read, Update:
		return allowIf(r.ID == id, ReasonNotSelf)
	default:
		return deny(ReasonRole)
	}
}

// Check evaluates the decision and reports a denial as an outcome error.
// When the actor may not even read the resource, any denial is reported as
// common.ErrNotFound so existence is not confirmed.
func Check(actor Actor, action Action, r Resource) error {
	result := Evaluate(actor, action, r)
	if result.Allowed() {
		return nil
	}
	if result.Reason == ReasonUnauthenticated {
		return common.ErrUnauthenticated
	}
	if !visible(actor, action, r) {
		if action == Create {
			return fmt.Errorf("%w: %s", common.ErrNotFound, parentOf(r.Kind))
		}
		return fmt.Errorf("%w: %s %d", common.ErrNotFound, r.Kind, r.ID)
	}
	if result.Reason == ReasonAlreadyAssigned {
		return fmt.Errorf("%w: task %d is already assigned to a runner", common.ErrConflict, r.ID)
	}
	return fmt.Errorf("%w: %s %s: %s", common.ErrForbidden, action, r.Kind, result.Reason)
}

// visible reports whether a refused action may reveal that its target exists.
// For creates the target is the parent row.
func visible(actor Actor, action Action, r Resource) bool {
	switch action {
	case Read:
		return false
	case Create:
		if r.Kind == KindTaskItem || r.Kind == KindStatusLog {
			parent := Resource{Kind: parentOf(r.Kind), ClientID: r.ClientID, RunnerID: r.RunnerID}
			return Evaluate(actor, Read, parent).Allowed()
		}
		return true
	default:
		return Evaluate(actor, Read, r).Allowed()
	}
}

func parentOf(k Kind) Kind {
	if k == KindStatusLog {
		return KindTaskItem
	}
	return KindTask
}
