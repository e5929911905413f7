package notes

// Action is an operation evaluated by the ownership guard.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize decides whether actorID may perform action on note. It is a pure
// function: read, update, and delete require the actor to own the note;
// create is always allowed because the service stamps the actor as owner.
func Authorize(actorID string, note Note, action Action) Decision {
	if actorID == "" {
		return Decision{Allowed: false, Reason: "unauthenticated"}
	}

	if action == ActionCreate {
		return Decision{Allowed: true}
	}

	if note.UserID != actorID {
		return Decision{Allowed: false, Reason: "not owner"}
	}

	return Decision{Allowed: true}
}
