package uc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appmodel "github.com/compozy/defaultdesk/engine/application/model"
	appuc "github.com/compozy/defaultdesk/engine/application/uc"
	"github.com/compozy/defaultdesk/engine/attachment"
	"github.com/compozy/defaultdesk/engine/attachment/model"
	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/auth/authtest"
	"github.com/compozy/defaultdesk/engine/core"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	apps  map[core.ID]*appmodel.Application
	rows  []*model.Attachment
	addFn func(att *model.Attachment) error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: make(map[core.ID]*appmodel.Application)}
}

func (r *fakeRepo) addApp(status appmodel.Status, createdBy core.ID) *appmodel.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := &appmodel.Application{
		ID:        core.MustNewID(),
		Type:      reasonmodel.TypeDefault,
		Status:    status,
		CreatedBy: createdBy,
	}
	r.apps[app.ID] = app
	return app
}

func (r *fakeRepo) Get(_ context.Context, id core.ID) (*appmodel.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, appuc.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (r *fakeRepo) Add(_ context.Context, att *model.Attachment) error {
	if r.addFn != nil {
		if err := r.addFn(att); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[att.ApplicationID]
	if !ok {
		return appuc.ErrApplicationNotFound
	}
	if app.Status != appmodel.StatusPending {
		return ErrApplicationNotPending
	}
	r.rows = append(r.rows, att)
	return nil
}

func (r *fakeRepo) ListByApplication(_ context.Context, applicationID core.ID) ([]*model.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Attachment
	for _, row := range r.rows {
		if row.ApplicationID == applicationID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) getAttachment(_ context.Context, applicationID, attachmentID core.ID) (*model.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ApplicationID == applicationID && row.ID == attachmentID {
			return row, nil
		}
	}
	return nil, ErrAttachmentNotFound
}

// attachmentRepo exposes the fake under the Repository method set; Get is
// taken by the application reader side.
type attachmentRepo struct{ *fakeRepo }

func (r attachmentRepo) Get(ctx context.Context, applicationID, attachmentID core.ID) (*model.Attachment, error) {
	return r.getAttachment(ctx, applicationID, attachmentID)
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delay   time.Duration
}

func (b *memBlobs) Put(ctx context.Context, key string, data []byte, _ string) (attachment.BlobRef, error) {
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return attachment.BlobRef{}, ctx.Err()
		}
	}
	if b.putErr != nil {
		return attachment.BlobRef{}, b.putErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = make(map[string][]byte)
	}
	b.objects[key] = data
	return attachment.BlobRef{Key: key, URL: "/files/" + key}, nil
}

func (b *memBlobs) URL(_ context.Context, key string, expiry time.Duration) (string, error) {
	if expiry > 0 {
		return "https://signed.example.com/" + key + "?ttl=" + expiry.String(), nil
	}
	return "/files/" + key, nil
}

func newDeps() (*Deps, *fakeRepo, *memBlobs, *audit.MemorySink) {
	repo := newFakeRepo()
	blobs := &memBlobs{}
	sink := audit.NewMemorySink()
	return &Deps{
		Repo:         attachmentRepo{repo},
		Applications: repo,
		Blobs:        blobs,
		Audit:        sink,
		Timeouts:     core.Timeouts{Operation: time.Second, Blob: time.Second},
		MaxBytes:     1024,
	}, repo, blobs, sink
}

func pdf() *File {
	return &File{Filename: "../evidence report.pdf", Data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")}
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("Should let the creating operator attach while pending", func(t *testing.T) {
		deps, repo, blobs, sink := newDeps()
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())

		att, err := NewAdd(deps, operator, app.ID, pdf()).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, "evidence_report.pdf", att.Filename)
		assert.Equal(t, "application/pdf", att.ContentType)
		assert.Equal(t, operator.ID(), att.UploadedBy)
		assert.Equal(t, attachment.ObjectKey(app.ID, att.ID, att.Filename), att.BlobKey)
		assert.Contains(t, blobs.objects, att.BlobKey)
		assert.Equal(t, "/files/"+att.BlobKey, att.BlobURL)

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, audit.ActionUpload, entries[0].Action)
		assert.Equal(t, audit.TargetAttachment, entries[0].TargetType)
		assert.Equal(t, app.ID.String(), entries[0].TargetID)
	})

	t.Run("Should let an admin attach to any pending application", func(t *testing.T) {
		deps, repo, _, _ := newDeps()
		app := repo.addApp(appmodel.StatusPending, core.MustNewID())
		_, err := NewAdd(deps, authtest.Admin(), app.ID, pdf()).Execute(ctx)
		assert.NoError(t, err)
	})

	t.Run("Should forbid another operator", func(t *testing.T) {
		deps, repo, blobs, _ := newDeps()
		app := repo.addApp(appmodel.StatusPending, core.MustNewID())
		_, err := NewAdd(deps, authtest.Operator(), app.ID, pdf()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeForbidden))
		assert.Empty(t, blobs.objects)
	})

	t.Run("Should forbid reviewers before looking the application up", func(t *testing.T) {
		deps, _, _, _ := newDeps()
		_, err := NewAdd(deps, authtest.Reviewer(), core.MustNewID(), pdf()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeForbidden))
	})

	t.Run("Should forbid attaching once reviewed, even for admins", func(t *testing.T) {
		for _, status := range []appmodel.Status{appmodel.StatusApproved, appmodel.StatusRejected} {
			deps, repo, _, _ := newDeps()
			app := repo.addApp(status, core.MustNewID())
			_, err := NewAdd(deps, authtest.Admin(), app.ID, pdf()).Execute(ctx)
			assert.True(t, core.IsCode(err, core.ErrCodeForbidden), status)
		}
	})

	t.Run("Should hide a missing application from operators", func(t *testing.T) {
		deps, _, _, _ := newDeps()
		_, err := NewAdd(deps, authtest.Operator(), core.MustNewID(), pdf()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeForbidden))

		_, err = NewAdd(deps, authtest.Admin(), core.MustNewID(), pdf()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))
	})

	t.Run("Should forbid when the application is reviewed mid-upload", func(t *testing.T) {
		deps, repo, _, sink := newDeps()
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())
		repo.addFn = func(*model.Attachment) error {
			repo.mu.Lock()
			repo.apps[app.ID].Status = appmodel.StatusApproved
			repo.mu.Unlock()
			return nil
		}
		_, err := NewAdd(deps, operator, app.ID, pdf()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeForbidden))
		assert.Empty(t, repo.rows)
		assert.Empty(t, sink.Entries())
	})

	t.Run("Should reject empty and oversized files", func(t *testing.T) {
		deps, repo, _, _ := newDeps()
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())

		_, err := NewAdd(deps, operator, app.ID, &File{Filename: "a.txt"}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeBadRequest))

		big := &File{Filename: "a.bin", Data: make([]byte, 2048)}
		_, err = NewAdd(deps, operator, app.ID, big).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeBadRequest))

		_, err = NewAdd(deps, operator, app.ID, &File{Filename: "..", Data: []byte("x")}).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeBadRequest))
	})

	t.Run("Should time out a slow blob store", func(t *testing.T) {
		deps, repo, blobs, _ := newDeps()
		deps.Timeouts.Blob = 20 * time.Millisecond
		blobs.delay = time.Second
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())

		_, err := NewAdd(deps, operator, app.ID, pdf()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeTimeout))
		assert.Empty(t, repo.rows)
	})

	t.Run("Should not record a row when the blob write fails", func(t *testing.T) {
		deps, repo, blobs, _ := newDeps()
		blobs.putErr = errors.New("bucket gone")
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())

		_, err := NewAdd(deps, operator, app.ID, pdf()).Execute(ctx)
		require.Error(t, err)
		assert.Empty(t, core.CodeOf(err))
		assert.Empty(t, repo.rows)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("Should list attachments for any role", func(t *testing.T) {
		deps, repo, _, _ := newDeps()
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())
		_, err := NewAdd(deps, operator, app.ID, pdf()).Execute(ctx)
		require.NoError(t, err)

		out, err := NewList(deps, authtest.Reviewer(), app.ID).Execute(ctx)
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("Should return an empty list rather than nil", func(t *testing.T) {
		deps, repo, _, _ := newDeps()
		app := repo.addApp(appmodel.StatusPending, core.MustNewID())
		out, err := NewList(deps, authtest.Operator(), app.ID).Execute(ctx)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("Should return NOT_FOUND for a missing application", func(t *testing.T) {
		deps, _, _, _ := newDeps()
		_, err := NewList(deps, authtest.Admin(), core.MustNewID()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))
	})
}

func TestPresign(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return a signed link with its expiry", func(t *testing.T) {
		deps, repo, _, _ := newDeps()
		deps.PresignExpiry = 10 * time.Minute
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())
		att, err := NewAdd(deps, operator, app.ID, pdf()).Execute(ctx)
		require.NoError(t, err)

		out, err := NewPresign(deps, authtest.Reviewer(), app.ID, att.ID).Execute(ctx)
		require.NoError(t, err)
		assert.Contains(t, out.URL, "https://signed.example.com/")
		require.NotNil(t, out.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), *out.ExpiresAt, time.Minute)
	})

	t.Run("Should omit the expiry for stable links", func(t *testing.T) {
		deps, repo, _, _ := newDeps()
		operator := authtest.Operator()
		app := repo.addApp(appmodel.StatusPending, operator.ID())
		att, err := NewAdd(deps, operator, app.ID, pdf()).Execute(ctx)
		require.NoError(t, err)

		out, err := NewPresign(deps, operator, app.ID, att.ID).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, att.BlobURL, out.URL)
		assert.Nil(t, out.ExpiresAt)
	})

	t.Run("Should return NOT_FOUND for an unknown attachment", func(t *testing.T) {
		deps, repo, _, _ := newDeps()
		app := repo.addApp(appmodel.StatusPending, core.MustNewID())
		_, err := NewPresign(deps, authtest.Admin(), app.ID, core.MustNewID()).Execute(ctx)
		assert.True(t, core.IsCode(err, core.ErrCodeNotFound))
	})
}
