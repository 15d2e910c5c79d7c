package uc

import (
	"context"
	"testing"

	"github.com/compozy/defaultdesk/engine/auth/authtest"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/notification/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListForUser(ctx context.Context, userID core.ID, limit int) ([]*model.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if n := args.Get(0); n != nil {
		return n.([]*model.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id core.ID, userID core.ID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func TestList(t *testing.T) {
	t.Run("Should only read the caller's inbox with a bounded limit", func(t *testing.T) {
		repo := new(MockRepository)
		actor := authtest.Operator()
		repo.On("ListForUser", mock.Anything, actor.ID(), MaxListLimit).
			Return([]*model.Notification{{UserID: actor.ID(), Content: "Application #1 APPROVED"}}, nil)
		out, err := NewList(repo, actor, 10_000).Execute(context.Background())
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})
}

func TestMarkRead(t *testing.T) {
	t.Run("Should hide notifications owned by someone else", func(t *testing.T) {
		repo := new(MockRepository)
		actor := authtest.Reviewer()
		id := core.MustNewID()
		repo.On("MarkRead", mock.Anything, id, actor.ID()).Return(ErrNotificationNotFound)
		_, err := NewMarkRead(repo, actor, id).Execute(context.Background())
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))
	})

	t.Run("Should refuse anonymous callers", func(t *testing.T) {
		_, err := NewMarkRead(new(MockRepository), nil, core.MustNewID()).Execute(context.Background())
		assert.True(t, core.IsCode(err, core.ErrCodeForbidden))
	})
}
