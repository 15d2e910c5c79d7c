package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{ calls int }

func (s *failingSink) Append(context.Context, *Entry) error {
	s.calls++
	return errors.New("disk full")
}

func (s *failingSink) List(context.Context, Filter) ([]*Entry, error) { return nil, nil }

type deadlineSink struct{ sawDeadline, sawCancel bool }

func (s *deadlineSink) Append(ctx context.Context, _ *Entry) error {
	_, s.sawDeadline = ctx.Deadline()
	s.sawCancel = ctx.Err() != nil
	return nil
}

func (s *deadlineSink) List(context.Context, Filter) ([]*Entry, error) { return nil, nil }

func TestRecord(t *testing.T) {
	t.Run("Should swallow sink failures", func(t *testing.T) {
		sink := &failingSink{}
		assert.NotPanics(t, func() {
			Record(context.Background(), sink, time.Second, NewEntry(context.Background(), "", ActionDelete, TargetApplication, "x", nil))
		})
		assert.Equal(t, 1, sink.calls)
	})

	t.Run("Should write even when the request was cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sink := &deadlineSink{}
		Record(ctx, sink, time.Second, NewEntry(ctx, "", ActionDelete, TargetApplication, "x", nil))
		assert.True(t, sink.sawDeadline)
		assert.False(t, sink.sawCancel)
	})
}

func TestNewEntry(t *testing.T) {
	t.Run("Should carry the actor and client IP", func(t *testing.T) {
		ctx := WithClientIP(context.Background(), "10.0.0.7")
		actor := core.MustNewID()
		e := NewEntry(ctx, actor, ActionReview, TargetApplication, "a1", map[string]any{"decision": "APPROVED"})
		require.NotNil(t, e.ActorID)
		assert.Equal(t, actor, *e.ActorID)
		assert.Equal(t, "10.0.0.7", e.IP)
		assert.False(t, e.ID.IsZero())
	})

	t.Run("Should leave the actor empty for anonymous entries", func(t *testing.T) {
		e := NewEntry(context.Background(), "", ActionCreate, TargetHTTP, "/auth/token", nil)
		assert.Nil(t, e.ActorID)
	})
}
