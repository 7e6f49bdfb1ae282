package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/intakebot/intake/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var req = relay.Request{
	UserID: 42, UserName: "Ann", PhotoFileID: "AgAD", FilePath: "photos/a.jpg",
	Server: "TestServer", Car: "TestCar", Price: 150,
}

func TestNewRowAccepted(t *testing.T) {
	id := uuid.New()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r := newRow(req, relay.Result{Accepted: true, RequestID: id.String(), StatusCode: 201}, now)

	assert.Equal(t, id, r.ID)
	assert.Equal(t, "accepted", r.Outcome)
	assert.True(t, r.HTTPStatus.Valid)
	assert.EqualValues(t, 201, r.HTTPStatus.Int32)
	assert.Equal(t, int64(150), r.Price)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
}

func TestNewRowRejectedWithoutResponse(t *testing.T) {
	r := newRow(req, relay.Result{RequestID: "not-a-uuid", Reason: "timeout"}, time.Now())
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, "rejected", r.Outcome)
	assert.False(t, r.HTTPStatus.Valid)
	assert.Equal(t, "timeout", r.Reason)
}

func TestInsertBindsEveryColumn(t *testing.T) {
	query, args, err := sqlx.Named(insertSubmission, newRow(req, relay.Result{}, time.Now()))
	require.NoError(t, err)
	assert.Len(t, args, 12)
	assert.NotContains(t, query, ":")
}

func TestNoop(t *testing.T) {
	var j Journal = Noop{}
	require.NoError(t, j.Record(context.Background(), req, relay.Result{}))
	s, err := j.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s)
}
