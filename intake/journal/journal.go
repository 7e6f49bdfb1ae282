// Package journal keeps an append-only record of submission attempts.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/intake/relay"
)

// Stats summarizes recorded attempts.
type Stats struct {
	Accepted int `db:"accepted"`
	Rejected int `db:"rejected"`
}

// Journal records relay attempts.
type Journal interface {
	Record(ctx context.Context, req relay.Request, res relay.Result) error
	Stats(ctx context.Context) (Stats, error)
}

type row struct {
	ID          uuid.UUID     `db:"id"`
	UserID      int64         `db:"user_id"`
	UserName    string        `db:"user_name"`
	PhotoFileID string        `db:"photo_file_id"`
	FilePath    string        `db:"file_path"`
	Server      string        `db:"server"`
	Car         string        `db:"car"`
	Price       int64         `db:"price"`
	Outcome     string        `db:"outcome"`
	HTTPStatus  sql.NullInt32 `db:"http_status"`
	Reason      string        `db:"reason"`
	CreatedAt   time.Time     `db:"created_at"`
}

const insertSubmission = `INSERT INTO submissions
	(id, user_id, user_name, photo_file_id, file_path, server, car, price, outcome, http_status, reason, created_at)
	VALUES
	(:id, :user_id, :user_name, :photo_file_id, :file_path, :server, :car, :price, :outcome, :http_status, :reason, :created_at)`

const selectStats = `SELECT
	count(*) FILTER (WHERE outcome = 'accepted') AS accepted,
	count(*) FILTER (WHERE outcome = 'rejected') AS rejected
	FROM submissions`

func newRow(req relay.Request, res relay.Result, now time.Time) row {
	id, err := uuid.Parse(res.RequestID)
	if err != nil {
		id = uuid.New()
	}
	return row{
		ID:          id,
		UserID:      req.UserID,
		UserName:    req.UserName,
		PhotoFileID: req.PhotoFileID,
		FilePath:    req.FilePath,
		Server:      req.Server,
		Car:         req.Car,
		Price:       req.Price,
		Outcome:     res.Outcome(),
		HTTPStatus:  sql.NullInt32{Int32: int32(res.StatusCode), Valid: res.StatusCode != 0},
		Reason:      res.Reason,
		CreatedAt:   now.UTC(),
	}
}

// Postgres stores attempts in the submissions table.
type Postgres struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPostgres wraps an open pool. The schema comes from migrations.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// Record inserts one attempt.
func (p *Postgres) Record(ctx context.Context, req relay.Request, res relay.Result) error {
	r := newRow(req, res, p.now())
	start := time.Now()
	if _, err := p.db.NamedExecContext(ctx, insertSubmission, r); err != nil {
		return fmt.Errorf("journal: insert submission: %w", err)
	}
	logger.Journal.Debug("submission recorded",
		slog.String("event", "journal.insert"),
		slog.String("request_id", r.ID.String()),
		slog.String("outcome", r.Outcome),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Stats counts recorded attempts by outcome.
func (p *Postgres) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := p.db.GetContext(ctx, &s, selectStats); err != nil {
		return Stats{}, fmt.Errorf("journal: stats: %w", err)
	}
	return s, nil
}

// Noop discards records. It is used when no database is configured.
type Noop struct{}

// Record does nothing.
func (Noop) Record(context.Context, relay.Request, relay.Result) error { return nil }

// Stats always reports zeros.
func (Noop) Stats(context.Context) (Stats, error) { return Stats{}, nil }
