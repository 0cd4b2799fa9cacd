package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trickle/internal/replay"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trickle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(id string, started time.Time) Session {
	return Session{
		ID:            id,
		StartedAt:     started,
		Dataset:       "testdata/rentals.csv",
		BoundaryField: "month",
		Boundary:      "7",
		Sink:          "http",
		Interval:      500 * time.Millisecond,
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trickle.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateSession(ctx, testSession("sess-1", started)))

	summary := replay.Summary{
		Total:     10,
		Succeeded: 8,
		Failed:    2,
		Failures: []replay.Failure{
			{Index: 2, Kind: replay.KindRejected, Message: "endpoint returned 422"},
			{Index: 5, Kind: replay.KindTimeout, Message: "request deadline exceeded"},
		},
	}
	finished := started.Add(5 * time.Second)
	require.NoError(t, s.FinishSession(ctx, "sess-1", summary, false, finished))

	sess, failures, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "sess-1", sess.ID)
	assert.Equal(t, "testdata/rentals.csv", sess.Dataset)
	assert.Equal(t, "month", sess.BoundaryField)
	assert.Equal(t, "7", sess.Boundary)
	assert.Equal(t, 500*time.Millisecond, sess.Interval)
	assert.Equal(t, 10, sess.Total)
	assert.Equal(t, 8, sess.Succeeded)
	assert.Equal(t, 2, sess.Failed)
	assert.False(t, sess.Cancelled)
	require.NotNil(t, sess.FinishedAt)
	assert.True(t, sess.FinishedAt.Equal(finished))

	require.Len(t, failures, 2)
	assert.Equal(t, 2, failures[0].Index)
	assert.Equal(t, replay.KindRejected, failures[0].Kind)
	assert.Equal(t, 5, failures[1].Index)
	assert.Equal(t, replay.KindTimeout, failures[1].Kind)
}

func TestFinishSession_Cancelled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Now().UTC()
	require.NoError(t, s.CreateSession(ctx, testSession("sess-1", started)))
	require.NoError(t, s.FinishSession(ctx, "sess-1", replay.Summary{Total: 3, Succeeded: 3}, true, started.Add(time.Second)))

	sess, failures, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, sess.Cancelled)
	assert.Empty(t, failures)
}

func TestFinishSession_UnknownID(t *testing.T) {
	s := openTestStore(t)

	err := s.FinishSession(context.Background(), "nope", replay.Summary{}, false, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSession_UnknownID(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions_MostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateSession(ctx, testSession("older", base)))
	require.NoError(t, s.CreateSession(ctx, testSession("newer", base.Add(time.Hour))))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)

	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].ID)
	assert.Equal(t, "older", sessions[1].ID)
}

func TestListSessions_Empty(t *testing.T) {
	s := openTestStore(t)

	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trickle.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateSession(ctx, testSession("sess-1", time.Now().UTC())))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].ID)
}
