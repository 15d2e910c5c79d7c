package uc

import (
	"context"
	"time"

	"github.com/compozy/defaultdesk/engine/application/model"
	attachmentmodel "github.com/compozy/defaultdesk/engine/attachment/model"
	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/core"
	customermodel "github.com/compozy/defaultdesk/engine/customer/model"
	"github.com/compozy/defaultdesk/engine/infra/cache"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
)

// DecideFunc inspects the current row and returns the change to persist. An
// error aborts the review without writing anything.
type DecideFunc func(current *model.Application) (*model.Review, error)

type Repository interface {
	Create(ctx context.Context, app *model.Application) error
	Get(ctx context.Context, id core.ID) (*model.Application, error)
	Search(ctx context.Context, filter model.SearchFilter) ([]*model.Summary, error)
	// Review applies decide's change in one transaction: the status update
	// guarded by status = PENDING, the customer flag and the creator's
	// notification. A lost guard returns ErrConcurrentReview.
	Review(ctx context.Context, id core.ID, decide DecideFunc) (*model.Application, error)
	// Delete removes the application and its attachment rows and returns the
	// row as it was.
	Delete(ctx context.Context, id core.ID) (*model.Application, error)
}

type CustomerReader interface {
	Get(ctx context.Context, id core.ID) (*customermodel.Customer, error)
}

type ReasonReader interface {
	Get(ctx context.Context, id core.ID) (*reasonmodel.Reason, error)
}

type AttachmentLister interface {
	ListByApplication(ctx context.Context, applicationID core.ID) ([]*attachmentmodel.Attachment, error)
}

// Metrics observes review outcomes.
type Metrics interface {
	RecordReview(ctx context.Context, decision string, err error)
}

// Deps wires the workflow engine to storage, locking and audit.
type Deps struct {
	Repo        Repository
	Customers   CustomerReader
	Reasons     ReasonReader
	Attachments AttachmentLister
	Locks       cache.LockManager
	Audit       audit.Sink
	Metrics     Metrics
	Timeouts    core.Timeouts
	// LockTTL bounds how long a crashed holder can block an application.
	LockTTL      time.Duration
	DefaultLimit int
	MaxLimit     int
}

const defaultLockTTL = 30 * time.Second

func lockResource(id core.ID) string {
	return "application:" + id.String()
}
