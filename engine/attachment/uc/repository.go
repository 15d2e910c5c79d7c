package uc

import (
	"context"
	"errors"
	"time"

	appmodel "github.com/compozy/defaultdesk/engine/application/model"
	"github.com/compozy/defaultdesk/engine/attachment"
	"github.com/compozy/defaultdesk/engine/attachment/model"
	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/core"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrApplicationNotPending means the application left PENDING between the
	// policy check and the insert.
	ErrApplicationNotPending = errors.New("application is no longer pending")
)

type Repository interface {
	// Add re-reads the owning application under a share lock and inserts the
	// row only while it is still PENDING.
	Add(ctx context.Context, att *model.Attachment) error
	ListByApplication(ctx context.Context, applicationID core.ID) ([]*model.Attachment, error)
	Get(ctx context.Context, applicationID, attachmentID core.ID) (*model.Attachment, error)
}

type ApplicationReader interface {
	Get(ctx context.Context, id core.ID) (*appmodel.Application, error)
}

// Metrics observes upload outcomes and stored bytes.
type Metrics interface {
	RecordUpload(ctx context.Context, size int64, err error)
}

type Deps struct {
	Repo          Repository
	Applications  ApplicationReader
	Blobs         attachment.BlobStore
	Audit         audit.Sink
	Metrics       Metrics
	Timeouts      core.Timeouts
	PresignExpiry time.Duration
	MaxBytes      int64
}
