package model

import (
	"time"

	"github.com/compozy/defaultdesk/engine/core"
)

// Attachment is append-only: once stored it outlives its application's
// review.
type Attachment struct {
	ID            core.ID   `db:"id"             json:"id"`
	ApplicationID core.ID   `db:"application_id" json:"application_id"`
	Filename      string    `db:"filename"       json:"filename"`
	ContentType   string    `db:"content_type"   json:"content_type"`
	Size          int64     `db:"size"           json:"size"`
	BlobKey       string    `db:"blob_key"       json:"blob_key"`
	BlobURL       string    `db:"blob_url"       json:"url"`
	UploadedBy    core.ID   `db:"uploaded_by"    json:"uploaded_by"`
	UploadedAt    time.Time `db:"uploaded_at"    json:"uploaded_at"`
}
