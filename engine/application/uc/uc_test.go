package uc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/compozy/defaultdesk/engine/application/model"
	attachmentmodel "github.com/compozy/defaultdesk/engine/attachment/model"
	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/auth/authtest"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/cache"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(s *store) (*Deps, *audit.MemorySink) {
	sink := audit.NewMemorySink()
	return &Deps{
		Repo:        appRepo{s},
		Customers:   customerReader{s},
		Reasons:     reasonReader{s},
		Attachments: attachmentLister{s},
		Locks:       cache.NewMemoryLockManager(),
		Audit:       sink,
		Timeouts:    core.Timeouts{Operation: time.Second, Lock: time.Second},
	}, sink
}

func approve() *ReviewInput { return &ReviewInput{Decision: model.StatusApproved} }
func reject() *ReviewInput  { return &ReviewInput{Decision: model.StatusRejected} }

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a PENDING application owned by the operator", func(t *testing.T) {
		s := newStore()
		deps, sink := newDeps(s)
		customer := s.addCustomer(false)
		reason := s.addReason(reasonmodel.TypeDefault, true)
		operator := authtest.Operator()
		severity := model.SeverityHigh
		remark := "  late twice "

		app, err := NewCreate(deps, operator, &CreateInput{
			Type:       reasonmodel.TypeDefault,
			CustomerID: customer.ID,
			ReasonID:   reason.ID,
			Severity:   &severity,
			Remark:     &remark,
		}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, app.Status)
		assert.Equal(t, operator.ID(), app.CreatedBy)
		assert.Nil(t, app.ReviewedBy)
		assert.Nil(t, app.ReviewedAt)
		require.NotNil(t, app.Remark)
		assert.Equal(t, "late twice", *app.Remark)

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, audit.ActionCreate, entries[0].Action)
		assert.Equal(t, app.ID.String(), entries[0].TargetID)
	})

	t.Run("Should forbid reviewers", func(t *testing.T) {
		s := newStore()
		deps, sink := newDeps(s)
		_, err := NewCreate(deps, authtest.Reviewer(), &CreateInput{Type: reasonmodel.TypeDefault}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeForbidden))
		assert.Empty(t, sink.Entries())
	})

	t.Run("Should enforce the customer flag invariant", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		inDefault := s.addCustomer(true)
		healthy := s.addCustomer(false)
		defaultReason := s.addReason(reasonmodel.TypeDefault, true)
		rebirthReason := s.addReason(reasonmodel.TypeRebirth, true)

		_, err := NewCreate(deps, authtest.Operator(), &CreateInput{
			Type: reasonmodel.TypeDefault, CustomerID: inDefault.ID, ReasonID: defaultReason.ID,
		}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeInvalidState))

		_, err = NewCreate(deps, authtest.Operator(), &CreateInput{
			Type: reasonmodel.TypeRebirth, CustomerID: healthy.ID, ReasonID: rebirthReason.ID,
		}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeInvalidState))

		_, err = NewCreate(deps, authtest.Admin(), &CreateInput{
			Type: reasonmodel.TypeRebirth, CustomerID: inDefault.ID, ReasonID: rebirthReason.ID,
		}).Execute(ctx)
		assert.NoError(t, err)
	})

	t.Run("Should refuse the insert when an approval flips the flag mid-create", func(t *testing.T) {
		s := newStore()
		deps, sink := newDeps(s)
		customer := s.addCustomer(false)
		reason := s.addReason(reasonmodel.TypeDefault, true)
		s.beforeInsert = func() {
			s.mu.Lock()
			s.customers[customer.ID].IsDefault = true
			s.mu.Unlock()
		}

		_, err := NewCreate(deps, authtest.Operator(), &CreateInput{
			Type: reasonmodel.TypeDefault, CustomerID: customer.ID, ReasonID: reason.ID,
		}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeInvalidState))
		assert.Empty(t, s.apps)
		assert.Empty(t, sink.Entries())
	})

	t.Run("Should reject disabled or mismatched reasons", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		customer := s.addCustomer(false)
		disabled := s.addReason(reasonmodel.TypeDefault, false)
		rebirth := s.addReason(reasonmodel.TypeRebirth, true)
		for _, reasonID := range []core.ID{disabled.ID, rebirth.ID} {
			_, err := NewCreate(deps, authtest.Operator(), &CreateInput{
				Type: reasonmodel.TypeDefault, CustomerID: customer.ID, ReasonID: reasonID,
			}).Execute(ctx)
			assert.True(t, core.IsCode(err, core.ErrCodeInvalidState))
		}
	})

	t.Run("Should report missing references as NOT_FOUND", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		customer := s.addCustomer(false)
		reason := s.addReason(reasonmodel.TypeDefault, true)

		_, err := NewCreate(deps, authtest.Operator(), &CreateInput{
			Type: reasonmodel.TypeDefault, CustomerID: customer.ID, ReasonID: core.MustNewID(),
		}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))

		_, err = NewCreate(deps, authtest.Operator(), &CreateInput{
			Type: reasonmodel.TypeDefault, CustomerID: core.MustNewID(), ReasonID: reason.ID,
		}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))
	})
}

func TestReview(t *testing.T) {
	ctx := context.Background()

	t.Run("Should approve a DEFAULT application and set the customer in default", func(t *testing.T) {
		s := newStore()
		deps, sink := newDeps(s)
		customer := s.addCustomer(false)
		operator := authtest.Operator()
		pending := s.addPending(reasonmodel.TypeDefault, customer.ID, operator.ID())
		reviewer := authtest.Reviewer()

		app, err := NewReview(deps, reviewer, pending.ID, approve()).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, app.Status)
		require.NotNil(t, app.ReviewedBy)
		assert.Equal(t, reviewer.ID(), *app.ReviewedBy)
		assert.NotNil(t, app.ReviewedAt)
		assert.True(t, s.customerDefault(customer.ID))

		require.Len(t, s.notifications, 1)
		assert.Equal(t, operator.ID(), s.notifications[0].UserID)
		assert.Equal(t, model.ReviewNotice(pending.ID, model.StatusApproved), s.notifications[0].Content)

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, audit.ActionReview, entries[0].Action)
		assert.Equal(t, model.StatusApproved, entries[0].Details["decision"])
	})

	t.Run("Should approve a REBIRTH application and clear the flag", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		customer := s.addCustomer(true)
		pending := s.addPending(reasonmodel.TypeRebirth, customer.ID, core.MustNewID())
		_, err := NewReview(deps, authtest.Admin(), pending.ID, approve()).Execute(ctx)
		require.NoError(t, err)
		assert.False(t, s.customerDefault(customer.ID))
	})

	t.Run("Should leave the customer untouched on rejection", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		customer := s.addCustomer(false)
		pending := s.addPending(reasonmodel.TypeDefault, customer.ID, core.MustNewID())
		app, err := NewReview(deps, authtest.Reviewer(), pending.ID, reject()).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, app.Status)
		assert.False(t, s.customerDefault(customer.ID))
		assert.Zero(t, s.flips)
		assert.Len(t, s.notifications, 1)
	})

	t.Run("Should refuse a second review without flipping twice", func(t *testing.T) {
		s := newStore()
		deps, sink := newDeps(s)
		customer := s.addCustomer(false)
		pending := s.addPending(reasonmodel.TypeDefault, customer.ID, core.MustNewID())
		_, err := NewReview(deps, authtest.Reviewer(), pending.ID, approve()).Execute(ctx)
		require.NoError(t, err)

		_, err = NewReview(deps, authtest.Admin(), pending.ID, reject()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeInvalidTransition))
		assert.Equal(t, 1, s.flips)
		assert.True(t, s.customerDefault(customer.ID))
		assert.Equal(t, model.StatusApproved, s.app(pending.ID).Status)
		assert.Len(t, sink.Entries(), 1)
	})

	t.Run("Should deny operators before looking the application up", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		_, err := NewReview(deps, authtest.Operator(), core.MustNewID(), approve()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeForbidden))
	})

	t.Run("Should return NOT_FOUND for reviewers on a missing application", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		_, err := NewReview(deps, authtest.Reviewer(), core.MustNewID(), approve()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))
	})

	t.Run("Should reject PENDING as a decision", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		pending := s.addPending(reasonmodel.TypeDefault, s.addCustomer(false).ID, core.MustNewID())
		_, err := NewReview(deps, authtest.Reviewer(), pending.ID, &ReviewInput{Decision: model.StatusPending}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeBadRequest))
		assert.Equal(t, model.StatusPending, s.app(pending.ID).Status)
	})

	t.Run("Should surface a slow repository as TIMEOUT", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		deps.Timeouts.Operation = 20 * time.Millisecond
		customer := s.addCustomer(false)
		pending := s.addPending(reasonmodel.TypeDefault, customer.ID, core.MustNewID())
		s.beforeApply = func() { time.Sleep(100 * time.Millisecond) }

		_, err := NewReview(deps, authtest.Reviewer(), pending.ID, approve()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeTimeout))
		assert.False(t, s.customerDefault(customer.ID))
	})
}

func TestReviewConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("Should let exactly one of two racing reviews win", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		deps.Locks = nil
		customer := s.addCustomer(false)
		pending := s.addPending(reasonmodel.TypeDefault, customer.ID, core.MustNewID())

		var arrived sync.WaitGroup
		arrived.Add(2)
		s.beforeApply = func() {
			arrived.Done()
			arrived.Wait()
		}

		inputs := []*ReviewInput{approve(), reject()}
		results := make([]*model.Application, 2)
		errs := make([]error, 2)
		var done sync.WaitGroup
		for i := range inputs {
			done.Add(1)
			go func() {
				defer done.Done()
				results[i], errs[i] = NewReview(deps, authtest.Reviewer(), pending.ID, inputs[i]).Execute(ctx)
			}()
		}
		done.Wait()

		winners := 0
		var winner *model.Application
		for i, err := range errs {
			if err == nil {
				winners++
				winner = results[i]
				continue
			}
			assert.True(t, core.IsCode(err, core.ErrCodeConflict), "loser error: %v", err)
		}
		require.Equal(t, 1, winners)
		final := s.app(pending.ID)
		assert.Equal(t, winner.Status, final.Status)
		assert.Equal(t, winner.Status == model.StatusApproved, s.customerDefault(customer.ID))
	})

	t.Run("Should fail fast with CONFLICT while another review holds the lock", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		customer := s.addCustomer(false)
		pending := s.addPending(reasonmodel.TypeDefault, customer.ID, core.MustNewID())

		entered := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		s.beforeDecide = func() {
			once.Do(func() {
				close(entered)
				<-release
			})
		}

		var firstErr error
		var done sync.WaitGroup
		done.Add(1)
		go func() {
			defer done.Done()
			_, firstErr = NewReview(deps, authtest.Reviewer(), pending.ID, approve()).Execute(ctx)
		}()
		<-entered

		_, err := NewReview(deps, authtest.Admin(), pending.ID, reject()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeConflict))

		close(release)
		done.Wait()
		require.NoError(t, firstErr)
		assert.Equal(t, model.StatusApproved, s.app(pending.ID).Status)
		assert.True(t, s.customerDefault(customer.ID))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should keep the customer flag and record that in the audit entry", func(t *testing.T) {
		s := newStore()
		deps, sink := newDeps(s)
		customer := s.addCustomer(false)
		pending := s.addPending(reasonmodel.TypeDefault, customer.ID, core.MustNewID())
		_, err := NewReview(deps, authtest.Reviewer(), pending.ID, approve()).Execute(ctx)
		require.NoError(t, err)

		deleted, err := NewDelete(deps, authtest.Admin(), pending.ID).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, deleted.Status)
		assert.True(t, s.customerDefault(customer.ID))

		entries := sink.Entries()
		require.Len(t, entries, 2)
		last := entries[1]
		assert.Equal(t, audit.ActionDelete, last.Action)
		assert.Equal(t, false, last.Details["customer_flag_reverted"])
		assert.Equal(t, model.StatusApproved, last.Details["status"])
	})

	t.Run("Should restrict deletion to admins", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		pending := s.addPending(reasonmodel.TypeDefault, s.addCustomer(false).ID, core.MustNewID())
		for _, actor := range []*authmodel.Principal{authtest.Reviewer(), authtest.Operator()} {
			_, err := NewDelete(deps, actor, pending.ID).Execute(ctx)
			assert.True(t, core.IsCode(err, core.ErrCodeForbidden))
		}
		_, err := NewDelete(deps, authtest.Admin(), core.MustNewID()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))
	})
}

type capturingRepo struct {
	appRepo
	got model.SearchFilter
}

func (r *capturingRepo) Search(_ context.Context, filter model.SearchFilter) ([]*model.Summary, error) {
	r.got = filter
	return []*model.Summary{}, nil
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should bound the page size", func(t *testing.T) {
		repo := &capturingRepo{appRepo: appRepo{newStore()}}
		deps := &Deps{Repo: repo, DefaultLimit: 25, MaxLimit: 100}

		_, err := NewSearch(deps, authtest.Operator(), model.SearchFilter{}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 25, repo.got.Limit)

		_, err = NewSearch(deps, authtest.Reviewer(), model.SearchFilter{Limit: 5000, Offset: -1}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 100, repo.got.Limit)
		assert.Zero(t, repo.got.Offset)
	})

	t.Run("Should reject unknown statuses", func(t *testing.T) {
		deps := &Deps{Repo: &capturingRepo{appRepo: appRepo{newStore()}}}
		_, err := NewSearch(deps, authtest.Admin(), model.SearchFilter{Status: "ARCHIVED"}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeBadRequest))
	})
}

func TestGet(t *testing.T) {
	t.Run("Should include attachments in upload order", func(t *testing.T) {
		s := newStore()
		deps, _ := newDeps(s)
		pending := s.addPending(reasonmodel.TypeDefault, s.addCustomer(false).ID, core.MustNewID())
		s.attachments[pending.ID] = []*attachmentmodel.Attachment{{Filename: "a.pdf"}, {Filename: "b.pdf"}}

		detail, err := NewGet(deps, authtest.Reviewer(), pending.ID).Execute(context.Background())
		require.NoError(t, err)
		require.Len(t, detail.Attachments, 2)
		assert.Equal(t, "a.pdf", detail.Attachments[0].Filename)
		assert.Equal(t, pending.ID, detail.ID)
	})
}
