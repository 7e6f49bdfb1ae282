package state

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and the bot-specific payload for a user.
type Session[D any] struct {
	State State
	Data  D
}

// Idle reports whether the session has no active conversation.
func (s Session[D]) Idle() bool {
	return s.State == "" || s.State == StateIdle
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager[D any] interface {
	// Get returns a copy of the user's session, or an idle one.
	Get(userID int64) Session[D]
	// Update runs fn with exclusive access to the user's session. A session
	// left idle by fn is removed; an error from fn is returned as is and the
	// changes fn made so far are kept.
	Update(userID int64, fn func(*Session[D]) error) error
	// Clear removes the user's session.
	Clear(userID int64)
	// InProgress reports whether the user currently has an active FSM state.
	InProgress(userID int64) bool
	// Len returns the number of non-idle sessions.
	Len() int
}
