// Package intake runs the purchase submission dialog: photo, server, car
// and price are collected in order, confirmed by the user and relayed to
// the moderation API.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/state"
	"github.com/m3rciful/intakebot/intake/relay"
)

// Markup selects the reply keyboard sent with a message.
type Markup int

const (
	// MarkupNone leaves the current keyboard as is.
	MarkupNone Markup = iota
	// MarkupMain shows the main keyboard with the trigger button.
	MarkupMain
	// MarkupRemove hides the reply keyboard.
	MarkupRemove
)

// Reply is an outgoing text message.
type Reply struct {
	Text   string
	HTML   bool
	Markup Markup
}

// Option is an inline choice attached to a message.
type Option struct {
	Token string
	Label string
}

// Replier delivers engine output to the user's chat.
type Replier interface {
	Send(ctx context.Context, r Reply) error
	// SendPhoto sends a stored photo with a caption and inline options and
	// returns the id of the sent message.
	SendPhoto(ctx context.Context, fileID, caption string, options []Option) (int, error)
	// EditCaption replaces the caption of a sent photo and drops its options.
	EditCaption(ctx context.Context, messageID int, caption string) error
}

// FileResolver turns a photo file id into its storage path.
type FileResolver interface {
	ResolvePath(ctx context.Context, fileID string) (string, error)
}

// Submitter relays a confirmed submission. It makes one attempt.
type Submitter interface {
	Submit(ctx context.Context, req relay.Request) relay.Result
}

// Recorder keeps a record of relay attempts.
type Recorder interface {
	Record(ctx context.Context, req relay.Request, res relay.Result) error
}

// Options wires an Engine. Store and Journal are optional.
type Options struct {
	Store   Store
	Files   FileResolver
	Relay   Submitter
	Journal Recorder
}

type step func(ctx context.Context, ev Event, s *Session, r Replier) error

// Engine applies events to per-user sessions. Events of one user are
// handled one at a time, including the relay call; users are independent.
type Engine struct {
	store   Store
	files   FileResolver
	relay   Submitter
	journal Recorder
	steps   map[state.State]step
}

// NewEngine builds an Engine. Files and Relay are required.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		store:   opts.Store,
		files:   opts.Files,
		relay:   opts.Relay,
		journal: opts.Journal,
	}
	if e.store == nil {
		e.store = NewStore()
	}
	e.steps = map[state.State]step{
		StateAwaitingPhoto:        e.onAwaitingPhoto,
		StateAwaitingServer:       e.onAwaitingServer,
		StateAwaitingCar:          e.onAwaitingCar,
		StateAwaitingPrice:        e.onAwaitingPrice,
		StateAwaitingConfirmation: e.onAwaitingConfirmation,
	}
	return e
}

// Snapshot returns a copy of the user's session; false if the user is idle.
func (e *Engine) Snapshot(userID int64) (Session, bool) {
	s := e.store.Get(userID)
	return s, !s.Idle()
}

// ActiveSessions counts users in the middle of a submission.
func (e *Engine) ActiveSessions() int {
	return e.store.Len()
}

// InProgress reports whether the user has an active submission.
func (e *Engine) InProgress(userID int64) bool {
	return e.store.InProgress(userID)
}

// Handle applies ev to its user's session and sends the replies through r.
// Inputs that do not fit the current state are ignored.
func (e *Engine) Handle(ctx context.Context, ev Event, r Replier) error {
	if ev.Kind == KindCommand && ev.Command == "start" {
		return r.Send(ctx, Reply{Text: greeting(ev.User), HTML: true, Markup: MarkupMain})
	}

	return e.store.Update(ev.User.ID, func(s *Session) error {
		from := s.State
		err := e.apply(ctx, ev, s, r)
		if from != s.State {
			logger.Debug(ctx, "intake", "intake.transition",
				slog.Int64("user_id", ev.User.ID),
				slog.String("from_state", string(from)),
				slog.String("to_state", string(s.State)),
				slog.String("kind", ev.Kind.String()),
			)
		}
		return err
	})
}

func (e *Engine) apply(ctx context.Context, ev Event, s *Session, r Replier) error {
	switch {
	case ev.Kind == KindCommand && ev.Command == "cancel":
		*s = Session{State: StateIdle}
		return r.Send(ctx, Reply{Text: textCancelled, Markup: MarkupMain})
	case ev.Kind == KindText && strings.TrimSpace(ev.Text) == TriggerPhrase:
		*s = Session{State: StateAwaitingPhoto}
		return r.Send(ctx, Reply{Text: textPhotoPrompt, Markup: MarkupRemove})
	case ev.Kind == KindCommand:
		return nil
	}

	if handle, ok := e.steps[s.State]; ok {
		return handle(ctx, ev, s, r)
	}
	return nil
}

func (e *Engine) onAwaitingPhoto(ctx context.Context, ev Event, s *Session, r Replier) error {
	switch ev.Kind {
	case KindPhoto:
		path, err := e.files.ResolvePath(ctx, ev.FileID)
		if err != nil {
			logger.Warn(ctx, "intake", "intake.photo.resolve",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			return errors.Join(
				r.Send(ctx, Reply{Text: textPhotoFailed}),
				r.Send(ctx, Reply{Text: textPhotoPrompt}),
			)
		}
		s.Data.PhotoFileID = ev.FileID
		s.Data.FilePath = path
		s.State = StateAwaitingServer
		return r.Send(ctx, Reply{Text: textServerPrompt})
	case KindText, KindAttachment:
		return r.Send(ctx, Reply{Text: textPhotoPrompt})
	}
	return nil
}

func (e *Engine) onAwaitingServer(ctx context.Context, ev Event, s *Session, r Replier) error {
	if ev.Kind != KindText {
		return nil
	}
	s.Data.Server = ev.Text
	s.State = StateAwaitingCar
	return r.Send(ctx, Reply{Text: textCarPrompt})
}

func (e *Engine) onAwaitingCar(ctx context.Context, ev Event, s *Session, r Replier) error {
	if ev.Kind != KindText {
		return nil
	}
	s.Data.Car = ev.Text
	s.State = StateAwaitingPrice
	return r.Send(ctx, Reply{Text: textPricePrompt})
}

func (e *Engine) onAwaitingPrice(ctx context.Context, ev Event, s *Session, r Replier) error {
	if ev.Kind != KindText {
		return nil
	}
	price, ok := ParsePrice(ev.Text)
	if !ok {
		return r.Send(ctx, Reply{Text: textPriceInvalid})
	}

	draft := s.Data
	draft.Price = price
	msgID, err := r.SendPhoto(ctx, draft.PhotoFileID, confirmationCaption(draft), confirmChoices)
	if err != nil {
		return fmt.Errorf("intake: send confirmation: %w", err)
	}
	draft.ConfirmMessageID = msgID
	s.Data = draft
	s.State = StateAwaitingConfirmation
	return nil
}

func (e *Engine) onAwaitingConfirmation(ctx context.Context, ev Event, s *Session, r Replier) error {
	if ev.Kind != KindChoice {
		return nil
	}
	if want := s.Data.ConfirmMessageID; want != 0 && ev.MessageID != 0 && ev.MessageID != want {
		logger.Debug(ctx, "intake", "intake.choice.stale",
			slog.Int("message_id", ev.MessageID),
			slog.Int("confirm_message_id", want),
		)
		return nil
	}

	switch ev.Token {
	case TokenConfirm:
		return e.submit(ctx, ev.User, s, r)
	case TokenRestart:
		msgID := s.Data.ConfirmMessageID
		*s = Session{State: StateAwaitingPhoto}
		return errors.Join(
			e.editCaption(ctx, r, msgID, textRestarted),
			r.Send(ctx, Reply{Text: textPhotoPrompt, Markup: MarkupRemove}),
		)
	}
	logger.Debug(ctx, "intake", "intake.choice.unknown", slog.String("token", ev.Token))
	return nil
}

// submit relays the draft once and always ends the session.
func (e *Engine) submit(ctx context.Context, u User, s *Session, r Replier) error {
	d := s.Data
	*s = Session{State: StateIdle}

	req := relay.Request{
		UserID:      u.ID,
		UserName:    u.Name,
		PhotoFileID: d.PhotoFileID,
		FilePath:    d.FilePath,
		Server:      d.Server,
		Car:         d.Car,
		Price:       d.Price,
	}
	res := e.relay.Submit(ctx, req)

	caption := textSubmitted
	if !res.Accepted {
		caption = textSubmitFailed
	}
	if e.journal != nil {
		if err := e.journal.Record(ctx, req, res); err != nil {
			logger.Error(ctx, "journal", "journal.insert",
				slog.String("request_id", res.RequestID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	logger.Info(ctx, "intake", "intake.submitted",
		slog.String("outcome", res.Outcome()),
		slog.String("request_id", res.RequestID),
	)

	return errors.Join(
		e.editCaption(ctx, r, d.ConfirmMessageID, caption),
		r.Send(ctx, Reply{Text: textReady, Markup: MarkupMain}),
	)
}

func (e *Engine) editCaption(ctx context.Context, r Replier, msgID int, caption string) error {
	if msgID == 0 {
		return r.Send(ctx, Reply{Text: caption})
	}
	return r.EditCaption(ctx, msgID, caption)
}

// ParsePrice accepts a whole number, optionally signed and surrounded by
// spaces. Zero and negative values are valid.
func ParsePrice(text string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	return v, err == nil
}
