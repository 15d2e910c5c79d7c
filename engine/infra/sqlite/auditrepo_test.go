package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditRepo(t *testing.T) *AuditRepo {
	t.Helper()
	ctx := context.Background()
	s, err := NewStore(ctx, &Config{Path: filepath.Join(t.TempDir(), "audit.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })
	require.NoError(t, s.Migrate(ctx))
	return NewAuditRepo(s.DB())
}

func entryAt(actor core.ID, action string, at time.Time) *audit.Entry {
	e := audit.NewEntry(context.Background(), actor, action, audit.TargetApplication, "app-1",
		map[string]any{"status": "PENDING"})
	e.CreatedAt = at
	return e
}

func TestAuditRepo(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should round-trip an entry", func(t *testing.T) {
		repo := newAuditRepo(t)
		actor := core.MustNewID()
		in := entryAt(actor, audit.ActionCreate, base.Add(123*time.Nanosecond))
		in.IP = "192.0.2.1"
		require.NoError(t, repo.Append(ctx, in))

		out, err := repo.List(ctx, audit.Filter{})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, in.ID, out[0].ID)
		assert.True(t, in.CreatedAt.Equal(out[0].CreatedAt))
		require.NotNil(t, out[0].ActorID)
		assert.Equal(t, actor, *out[0].ActorID)
		assert.Equal(t, "PENDING", out[0].Details["status"])
		assert.Equal(t, "192.0.2.1", out[0].IP)
	})

	t.Run("Should keep anonymous entries anonymous", func(t *testing.T) {
		repo := newAuditRepo(t)
		require.NoError(t, repo.Append(ctx, entryAt("", audit.ActionCreate, base)))
		out, err := repo.List(ctx, audit.Filter{})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Nil(t, out[0].ActorID)
	})

	t.Run("Should filter by actor, action and window newest first", func(t *testing.T) {
		repo := newAuditRepo(t)
		alice, bob := core.MustNewID(), core.MustNewID()
		for i, e := range []*audit.Entry{
			entryAt(alice, audit.ActionCreate, base),
			entryAt(alice, audit.ActionReview, base.Add(time.Hour)),
			entryAt(alice, audit.ActionCreate, base.Add(2*time.Hour)),
			entryAt(bob, audit.ActionCreate, base.Add(3*time.Hour)),
			entryAt(alice, audit.ActionCreate, base.Add(48*time.Hour)),
		} {
			require.NoErrorf(t, repo.Append(ctx, e), "entry %d", i)
		}
		start := base.Add(-time.Minute)
		end := base.Add(24 * time.Hour)

		out, err := repo.List(ctx, audit.Filter{
			ActorID: alice,
			Action:  audit.ActionCreate,
			Start:   &start,
			End:     &end,
		})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.True(t, out[0].CreatedAt.Equal(base.Add(2*time.Hour)))
		assert.True(t, out[1].CreatedAt.Equal(base))
	})

	t.Run("Should honour the limit", func(t *testing.T) {
		repo := newAuditRepo(t)
		for i := range 5 {
			require.NoError(t, repo.Append(ctx, entryAt(core.MustNewID(), audit.ActionCreate, base.Add(time.Duration(i)*time.Minute))))
		}
		out, err := repo.List(ctx, audit.Filter{Limit: 3})
		require.NoError(t, err)
		assert.Len(t, out, 3)
	})
}
