package access

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Deny means the action is not permitted.
	Deny Decision = iota

	// Allow means the action is permitted.
	Allow
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// DenyReason describes why a check was denied.
type DenyReason int

const (
	ReasonNone DenyReason = iota

	// ReasonUnauthenticated means the actor has no usable identity.
	ReasonUnauthenticated

	// ReasonRole means the actor's role may never perform the action.
	ReasonRole

	// ReasonNotOwner means a client acted on another client's task.
	ReasonNotOwner

	// ReasonNotAssignee means a runner acted on a task claimed by someone else.
	ReasonNotAssignee

	// ReasonNotAuthor means a runner acted on a status log written by someone else.
	ReasonNotAuthor

	// ReasonNotSelf means a non-admin acted on another user's account.
	ReasonNotSelf

	// ReasonAlreadyAssigned means a runner tried to claim a claimed task.
	ReasonAlreadyAssigned
)

// String returns a human-readable reason.
func (r DenyReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonRole:
		return "not permitted for role"
	case ReasonNotOwner:
		return "not the owning client"
	case ReasonNotAssignee:
		return "not the assigned runner"
	case ReasonNotAuthor:
		return "not the author"
	case ReasonNotSelf:
		return "not your account"
	case ReasonAlreadyAssigned:
		return "already assigned"
	default:
		return "unknown"
	}
}

// Result is a decision and, for a denial, its reason.
type Result struct {
	Decision Decision
	Reason   DenyReason
}

// Allowed reports whether the decision is Allow.
func (r Result) Allowed() bool {
	return r.Decision == Allow
}

func allow() Result {
	return Result{Decision: Allow}
}

func deny(reason DenyReason) Result {
	return Result{Decision: Deny, Reason: reason}
}

func allowIf(ok bool, otherwise DenyReason) Result {
	if ok {
		return allow()
	}
	return deny(otherwise)
}
