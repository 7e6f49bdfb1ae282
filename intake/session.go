package intake

import "github.com/m3rciful/intakebot/core/telegram/state"

// Conversation states, in form order.
const (
	StateIdle                 = state.StateIdle
	StateAwaitingPhoto        state.State = "awaiting_photo"
	StateAwaitingServer       state.State = "awaiting_server"
	StateAwaitingCar          state.State = "awaiting_car"
	StateAwaitingPrice        state.State = "awaiting_price"
	StateAwaitingConfirmation state.State = "awaiting_confirmation"
)

// Draft holds the fields collected so far. Each field is set only once the
// session has moved past the state that asks for it.
type Draft struct {
	PhotoFileID string
	FilePath    string
	Server      string
	Car         string
	Price       int64
	// ConfirmMessageID is the confirmation photo message; 0 if unknown.
	ConfirmMessageID int
}

// Session is a user's conversation state plus its draft.
type Session = state.Session[Draft]

// Store holds sessions keyed by user id.
type Store = state.Manager[Draft]

// NewStore returns an in-memory Store.
func NewStore() Store {
	return state.NewMemoryManager[Draft]()
}
