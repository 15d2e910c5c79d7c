package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	appmodel "github.com/compozy/defaultdesk/engine/application/model"
	appuc "github.com/compozy/defaultdesk/engine/application/uc"
	"github.com/compozy/defaultdesk/engine/attachment/model"
	authmodel "github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/policy"
)

type List struct {
	deps          *Deps
	actor         *authmodel.Principal
	applicationID core.ID
}

func NewList(deps *Deps, actor *authmodel.Principal, applicationID core.ID) *List {
	return &List{deps: deps, actor: actor, applicationID: applicationID}
}

func (uc *List) Execute(ctx context.Context) ([]*model.Attachment, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindAttachment)); err != nil {
		return nil, err
	}
	_, err := core.WithTimeoutResult(ctx, "load application", uc.deps.Timeouts.Operation,
		func(ctx context.Context) (*appmodel.Application, error) {
			return uc.deps.Applications.Get(ctx, uc.applicationID)
		})
	if err != nil {
		return nil, mapLookupError(err, "application")
	}
	out, err := core.WithTimeoutResult(ctx, "list attachments", uc.deps.Timeouts.Operation,
		func(ctx context.Context) ([]*model.Attachment, error) {
			return uc.deps.Repo.ListByApplication(ctx, uc.applicationID)
		})
	if err != nil {
		return nil, mapLookupError(err, "attachments")
	}
	if out == nil {
		out = []*model.Attachment{}
	}
	return out, nil
}

// DownloadURL is a link to one attachment. ExpiresAt is zero for links that
// do not expire.
type DownloadURL struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type Presign struct {
	deps          *Deps
	actor         *authmodel.Principal
	applicationID core.ID
	attachmentID  core.ID
}

func NewPresign(deps *Deps, actor *authmodel.Principal, applicationID, attachmentID core.ID) *Presign {
	return &Presign{deps: deps, actor: actor, applicationID: applicationID, attachmentID: attachmentID}
}

func (uc *Presign) Execute(ctx context.Context) (*DownloadURL, error) {
	if err := policy.Require(uc.actor, policy.ActionView, policy.Of(policy.KindAttachment)); err != nil {
		return nil, err
	}
	att, err := core.WithTimeoutResult(ctx, "load attachment", uc.deps.Timeouts.Operation,
		func(ctx context.Context) (*model.Attachment, error) {
			return uc.deps.Repo.Get(ctx, uc.applicationID, uc.attachmentID)
		})
	if err != nil {
		return nil, mapLookupError(err, "attachment")
	}
	url, err := core.WithTimeoutResult(ctx, "presign blob", uc.deps.Timeouts.Blob,
		func(ctx context.Context) (string, error) {
			return uc.deps.Blobs.URL(ctx, att.BlobKey, uc.deps.PresignExpiry)
		})
	if err != nil {
		if core.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve download url: %w", err)
	}
	out := &DownloadURL{URL: url}
	if uc.deps.PresignExpiry > 0 && url != att.BlobURL {
		expires := time.Now().UTC().Add(uc.deps.PresignExpiry)
		out.ExpiresAt = &expires
	}
	return out, nil
}

func mapLookupError(err error, what string) error {
	switch {
	case errors.Is(err, appuc.ErrApplicationNotFound), errors.Is(err, ErrAttachmentNotFound):
		return core.NotFound(err)
	case core.CodeOf(err) != "":
		return err
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
