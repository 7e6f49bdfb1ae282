package intake

// User identifies who produced an event.
type User struct {
	ID   int64
	Name string
}

// EventKind tags the Event variant.
type EventKind int

const (
	// KindCommand is a slash command; Event.Command holds its name without the slash.
	KindCommand EventKind = iota + 1
	// KindText is a plain text message.
	KindText
	// KindPhoto is an image attachment; Event.FileID holds the largest size.
	KindPhoto
	// KindAttachment is any non-image attachment (documents, stickers...).
	KindAttachment
	// KindChoice is an inline button press.
	KindChoice
)

func (k EventKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindAttachment:
		return "attachment"
	case KindChoice:
		return "choice"
	}
	return "unknown"
}

// Event is one inbound user action. Only the fields of its Kind are set.
type Event struct {
	Kind EventKind
	User User

	Command string
	Text    string
	FileID  string
	// Token and MessageID describe a Choice: the button pressed and the
	// message it was attached to (0 if unknown).
	Token     string
	MessageID int
}

// Command builds a command event, e.g. Command(u, "cancel").
func Command(u User, name string) Event { return Event{Kind: KindCommand, User: u, Command: name} }

// Text builds a text event.
func Text(u User, text string) Event { return Event{Kind: KindText, User: u, Text: text} }

// Photo builds an image event.
func Photo(u User, fileID string) Event { return Event{Kind: KindPhoto, User: u, FileID: fileID} }

// Attachment builds a non-image attachment event.
func Attachment(u User) Event { return Event{Kind: KindAttachment, User: u} }

// Choice builds an inline button event.
func Choice(u User, token string, messageID int) Event {
	return Event{Kind: KindChoice, User: u, Token: token, MessageID: messageID}
}
