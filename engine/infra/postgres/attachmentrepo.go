package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	appmodel "github.com/compozy/defaultdesk/engine/application/model"
	appuc "github.com/compozy/defaultdesk/engine/application/uc"
	"github.com/compozy/defaultdesk/engine/attachment/model"
	"github.com/compozy/defaultdesk/engine/attachment/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

var attachmentColumns = []string{
	"id", "application_id", "filename", "content_type", "size",
	"blob_key", "blob_url", "uploaded_by", "uploaded_at",
}

type AttachmentRepo struct {
	db DB
}

func NewAttachmentRepo(db DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

// Add holds a share lock on the application while inserting, so a review
// cannot commit between the PENDING check and the insert.
func (r *AttachmentRepo) Add(ctx context.Context, att *model.Attachment) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		app, err := getApplication(ctx, tx, att.ApplicationID, "FOR SHARE")
		if err != nil {
			return err
		}
		if app.Status != appmodel.StatusPending {
			return uc.ErrApplicationNotPending
		}
		query, args, err := squirrel.Insert("attachments").
			Columns(attachmentColumns...).
			Values(
				att.ID, att.ApplicationID, att.Filename, att.ContentType, att.Size,
				att.BlobKey, att.BlobURL, att.UploadedBy, att.UploadedAt,
			).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("building insert query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return appuc.ErrApplicationNotFound
			}
			return fmt.Errorf("inserting attachment: %w", err)
		}
		return nil
	})
}

func (r *AttachmentRepo) ListByApplication(ctx context.Context, applicationID core.ID) ([]*model.Attachment, error) {
	query, args, err := squirrel.Select(attachmentColumns...).
		From("attachments").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("uploaded_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var out []*model.Attachment
	if err := pgxscan.Select(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scanning attachments: %w", err)
	}
	return out, nil
}

func (r *AttachmentRepo) Get(ctx context.Context, applicationID, attachmentID core.ID) (*model.Attachment, error) {
	query, args, err := squirrel.Select(attachmentColumns...).
		From("attachments").
		Where(squirrel.Eq{"id": attachmentID, "application_id": applicationID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var att model.Attachment
	if err := pgxscan.Get(ctx, r.db, &att, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("scanning attachment: %w", err)
	}
	return &att, nil
}
