package policy

// User-facing messages for rules enforced both here and by storage constraints
const (
	MsgDuplicateReview = "You have already reviewed this park."
	MsgUsernameTaken   = "A user with the given username is already registered"
)
