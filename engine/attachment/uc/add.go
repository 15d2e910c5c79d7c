package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	appmodel "github.com/compozy/defaultdesk/engine/application/model"
	appuc "github.com/compozy/defaultdesk/engine/application/uc"
	"github.com/compozy/defaultdesk/engine/attachment"
	"github.com/compozy/defaultdesk/engine/attachment/model"
	"github.com/compozy/defaultdesk/engine/audit"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/compozy/defaultdesk/pkg/logger"
)

type File struct {
	Filename     string
	DeclaredType string
	Data         []byte
}

type Add struct {
	deps          *Deps
	actor         *authmodel.Principal
	applicationID core.ID
	file          *File
}

func NewAdd(deps *Deps, actor *authmodel.Principal, applicationID core.ID, file *File) *Add {
	return &Add{deps: deps, actor: actor, applicationID: applicationID, file: file}
}

func (uc *Add) Execute(ctx context.Context) (*model.Attachment, error) {
	att, err := uc.add(ctx)
	if uc.deps.Metrics != nil {
		var size int64
		if att != nil {
			size = att.Size
		}
		uc.deps.Metrics.RecordUpload(ctx, size, err)
	}
	return att, err
}

func (uc *Add) add(ctx context.Context) (*model.Attachment, error) {
	if uc.actor == nil || uc.actor.User == nil {
		return nil, core.Forbidden("no authenticated actor")
	}
	if !policy.RoleGrants(uc.actor.Role(), policy.ActionAdd, policy.KindAttachment) {
		return nil, core.Forbidden(fmt.Sprintf("%s may not add attachments", uc.actor.Role()))
	}
	app, err := uc.loadApplication(ctx)
	if err != nil {
		return nil, err
	}
	resource := policy.AttachmentOf(app.CreatedBy, app.Status == appmodel.StatusPending)
	if err := policy.Require(uc.actor, policy.ActionAdd, resource); err != nil {
		return nil, err
	}
	filename, err := uc.validate()
	if err != nil {
		return nil, err
	}
	att := &model.Attachment{
		ID:            core.MustNewID(),
		ApplicationID: app.ID,
		Filename:      filename,
		ContentType:   attachment.DetectContentType(uc.file.Data, uc.file.DeclaredType),
		Size:          int64(len(uc.file.Data)),
		UploadedBy:    uc.actor.ID(),
	}
	ref, err := core.WithTimeoutResult(ctx, "store blob", uc.deps.Timeouts.Blob,
		func(ctx context.Context) (attachment.BlobRef, error) {
			return uc.deps.Blobs.Put(ctx, attachment.ObjectKey(app.ID, att.ID, filename), uc.file.Data, att.ContentType)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	att.BlobKey = ref.Key
	att.BlobURL = ref.URL
	att.UploadedAt = time.Now().UTC()
	err = core.WithTimeout(ctx, "insert attachment", uc.deps.Timeouts.Operation, func(ctx context.Context) error {
		return uc.deps.Repo.Add(ctx, att)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrApplicationNotPending):
			return nil, core.NewError(err, core.ErrCodeForbidden, map[string]any{"application_id": app.ID})
		case errors.Is(err, appuc.ErrApplicationNotFound):
			return nil, core.NotFound(err)
		case core.CodeOf(err) != "":
			return nil, err
		}
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}
	logger.FromContext(ctx).Info(
		"Attachment added",
		"application_id", app.ID,
		"attachment_id", att.ID,
		"size", att.Size,
		"content_type", att.ContentType,
		"by", uc.actor.ID(),
	)
	audit.Record(ctx, uc.deps.Audit, uc.deps.Timeouts.Operation, audit.NewEntry(
		ctx, uc.actor.ID(), audit.ActionUpload, audit.TargetAttachment, app.ID.String(),
		map[string]any{"attachment_id": att.ID, "filename": att.Filename, "size": att.Size},
	))
	return att, nil
}

// loadApplication hides whether the application exists from callers that
// could never attach to it anyway; only admins see NOT_FOUND.
func (uc *Add) loadApplication(ctx context.Context) (*appmodel.Application, error) {
	app, err := core.WithTimeoutResult(ctx, "load application", uc.deps.Timeouts.Operation,
		func(ctx context.Context) (*appmodel.Application, error) {
			return uc.deps.Applications.Get(ctx, uc.applicationID)
		})
	if err == nil {
		return app, nil
	}
	if errors.Is(err, appuc.ErrApplicationNotFound) {
		if uc.actor.Role() == authmodel.RoleAdmin {
			return nil, core.NotFound(err)
		}
		return nil, core.Forbidden("operator may not add attachment")
	}
	if core.CodeOf(err) != "" {
		return nil, err
	}
	return nil, fmt.Errorf("failed to load application: %w", err)
}

func (uc *Add) validate() (string, error) {
	if uc.file == nil || len(uc.file.Data) == 0 {
		return "", core.BadRequest(fmt.Errorf("file is empty"))
	}
	if uc.deps.MaxBytes > 0 && int64(len(uc.file.Data)) > uc.deps.MaxBytes {
		return "", core.BadRequest(fmt.Errorf("file exceeds %d bytes", uc.deps.MaxBytes))
	}
	filename := attachment.SanitizeFilename(uc.file.Filename)
	if filename == "" {
		return "", core.BadRequest(fmt.Errorf("filename is required"))
	}
	return filename, nil
}
