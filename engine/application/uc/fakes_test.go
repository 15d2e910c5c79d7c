package uc

import (
	"context"
	"sync"

	"github.com/compozy/defaultdesk/engine/application/model"
	attachmentmodel "github.com/compozy/defaultdesk/engine/attachment/model"
	"github.com/compozy/defaultdesk/engine/core"
	customermodel "github.com/compozy/defaultdesk/engine/customer/model"
	customeruc "github.com/compozy/defaultdesk/engine/customer/uc"
	notificationmodel "github.com/compozy/defaultdesk/engine/notification/model"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
	reasonuc "github.com/compozy/defaultdesk/engine/reason/uc"
)

// store is an in-memory stand-in for the postgres tables the workflow touches.
// Create re-checks the customer flag at insert time and Review applies only
// while the row is still PENDING, as the repository does.
type store struct {
	mu            sync.Mutex
	apps          map[core.ID]*model.Application
	customers     map[core.ID]*customermodel.Customer
	reasons       map[core.ID]*reasonmodel.Reason
	attachments   map[core.ID][]*attachmentmodel.Attachment
	notifications []*notificationmodel.Notification
	flips         int

	beforeInsert func()
	beforeDecide func()
	beforeApply  func()
}

func newStore() *store {
	return &store{
		apps:        make(map[core.ID]*model.Application),
		customers:   make(map[core.ID]*customermodel.Customer),
		reasons:     make(map[core.ID]*reasonmodel.Reason),
		attachments: make(map[core.ID][]*attachmentmodel.Attachment),
	}
}

func (s *store) addCustomer(isDefault bool) *customermodel.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &customermodel.Customer{ID: core.MustNewID(), Name: "Acme", IsDefault: isDefault}
	s.customers[c.ID] = c
	return c
}

func (s *store) addReason(typ reasonmodel.Type, enabled bool) *reasonmodel.Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &reasonmodel.Reason{ID: core.MustNewID(), Type: typ, Description: "reason", Enabled: enabled}
	s.reasons[r.ID] = r
	return r
}

func (s *store) addPending(typ reasonmodel.Type, customerID, createdBy core.ID) *model.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &model.Application{
		ID:         core.MustNewID(),
		Type:       typ,
		CustomerID: customerID,
		ReasonID:   core.MustNewID(),
		Status:     model.StatusPending,
		CreatedBy:  createdBy,
	}
	s.apps[a.ID] = a
	return a
}

func (s *store) customerDefault(id core.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers[id].IsDefault
}

func (s *store) app(id core.ID) *model.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.apps[id]
	return &cp
}

type appRepo struct{ *store }

func (r appRepo) Create(_ context.Context, app *model.Application) error {
	if r.beforeInsert != nil {
		r.beforeInsert()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[app.CustomerID]
	if !ok {
		return ErrReferenceMissing
	}
	if customer.IsDefault != app.Type.RequiredFlag() {
		return ErrCustomerFlagChanged
	}
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r appRepo) Get(_ context.Context, id core.ID) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (r appRepo) Search(_ context.Context, _ model.SearchFilter) ([]*model.Summary, error) {
	return nil, nil
}

func (r appRepo) Review(ctx context.Context, id core.ID, decide DecideFunc) (*model.Application, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.beforeDecide != nil {
		r.beforeDecide()
	}
	review, err := decide(current)
	if err != nil {
		return nil, err
	}
	if r.beforeApply != nil {
		r.beforeApply()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app.Status != model.StatusPending {
		return nil, ErrConcurrentReview
	}
	app.Status = review.Decision
	reviewer := review.ReviewedBy
	at := review.ReviewedAt
	app.ReviewedBy = &reviewer
	app.ReviewedAt = &at
	if review.CustomerDefault != nil {
		r.customers[app.CustomerID].IsDefault = *review.CustomerDefault
		r.flips++
	}
	r.notifications = append(r.notifications, review.Notification)
	cp := *app
	return &cp, nil
}

func (r appRepo) Delete(_ context.Context, id core.ID) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	delete(r.apps, id)
	delete(r.attachments, id)
	return a, nil
}

type customerReader struct{ *store }

func (r customerReader) Get(_ context.Context, id core.ID) (*customermodel.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, customeruc.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

type reasonReader struct{ *store }

func (r reasonReader) Get(_ context.Context, id core.ID) (*reasonmodel.Reason, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reason, ok := r.reasons[id]
	if !ok {
		return nil, reasonuc.ErrReasonNotFound
	}
	cp := *reason
	return &cp, nil
}

type attachmentLister struct{ *store }

func (r attachmentLister) ListByApplication(_ context.Context, id core.ID) ([]*attachmentmodel.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attachments[id], nil
}
