package appstate

import (
	"context"
	"fmt"

	appuc "github.com/compozy/defaultdesk/engine/application/uc"
	"github.com/compozy/defaultdesk/engine/attachment"
	attachmentuc "github.com/compozy/defaultdesk/engine/attachment/uc"
	"github.com/compozy/defaultdesk/engine/audit"
	authuc "github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/core"
	customeruc "github.com/compozy/defaultdesk/engine/customer/uc"
	"github.com/compozy/defaultdesk/engine/infra/cache"
	"github.com/compozy/defaultdesk/engine/infra/monitoring"
	"github.com/compozy/defaultdesk/engine/infra/repo"
	notificationuc "github.com/compozy/defaultdesk/engine/notification/uc"
	reasonuc "github.com/compozy/defaultdesk/engine/reason/uc"
	statsuc "github.com/compozy/defaultdesk/engine/stats/uc"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	stateKey contextKey = "app_state"
)

// BaseDeps are the long-lived resources opened at startup.
type BaseDeps struct {
	Config  *config.Config
	Store   *repo.Provider
	Locks   cache.LockManager
	Blobs   attachment.BlobStore
	Metrics *monitoring.WorkflowMetrics
}

func NewBaseDeps(
	cfg *config.Config,
	store *repo.Provider,
	locks cache.LockManager,
	blobs attachment.BlobStore,
	metrics *monitoring.WorkflowMetrics,
) BaseDeps {
	return BaseDeps{
		Config:  cfg,
		Store:   store,
		Locks:   locks,
		Blobs:   blobs,
		Metrics: metrics,
	}
}

// State is what handlers build use cases from. Repositories are created once
// and shared; they are safe for concurrent use.
type State struct {
	BaseDeps
	Timeouts      core.Timeouts
	AuthRepo      authuc.Repository
	AuthSettings  authuc.Settings
	Customers     customeruc.Repository
	Reasons       reasonuc.Repository
	Notifications notificationuc.Repository
	Stats         statsuc.Repository
	Audit         audit.Sink
	Applications  *appuc.Deps
	Attachments   *attachmentuc.Deps
}

func NewState(deps BaseDeps) (*State, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("repository provider is required")
	}
	if deps.Blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if deps.Locks == nil {
		deps.Locks = cache.NewMemoryLockManager()
	}
	cfg := deps.Config
	timeouts := TimeoutsFromConfig(cfg)
	auditSink := deps.Store.NewAuditSink()
	applications := deps.Store.NewApplicationRepo()
	attachments := deps.Store.NewAttachmentRepo()
	state := &State{
		BaseDeps: deps,
		Timeouts: timeouts,
		AuthRepo: deps.Store.NewAuthRepo(),
		AuthSettings: authuc.Settings{
			SessionTTL: cfg.Auth.SessionTTL,
			BcryptCost: cfg.Auth.BcryptCost,
		},
		Customers:     deps.Store.NewCustomerRepo(),
		Reasons:       deps.Store.NewReasonRepo(),
		Notifications: deps.Store.NewNotificationRepo(),
		Stats:         deps.Store.NewStatsRepo(),
		Audit:         auditSink,
		Applications: &appuc.Deps{
			Repo:         applications,
			Customers:    deps.Store.NewCustomerRepo(),
			Reasons:      deps.Store.NewReasonRepo(),
			Attachments:  attachments,
			Locks:        deps.Locks,
			Audit:        auditSink,
			Timeouts:     timeouts,
			DefaultLimit: cfg.Search.DefaultLimit,
			MaxLimit:     cfg.Search.MaxLimit,
		},
		Attachments: &attachmentuc.Deps{
			Repo:          attachments,
			Applications:  applications,
			Blobs:         deps.Blobs,
			Audit:         auditSink,
			Timeouts:      timeouts,
			PresignExpiry: cfg.Storage.PresignExpiry,
			MaxBytes:      cfg.Server.MaxUploadBytes,
		},
	}
	if deps.Metrics != nil {
		state.Applications.Metrics = deps.Metrics
		state.Attachments.Metrics = deps.Metrics
	}
	return state, nil
}

func TimeoutsFromConfig(cfg *config.Config) core.Timeouts {
	return core.Timeouts{
		Operation: cfg.Timeouts.Operation,
		Lock:      cfg.Timeouts.Lock,
		Blob:      cfg.Timeouts.Blob,
		Auth:      cfg.Timeouts.Auth,
	}
}

func WithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateKey, state)
}

func GetState(ctx context.Context) (*State, error) {
	state, ok := ctx.Value(stateKey).(*State)
	if !ok {
		return nil, fmt.Errorf("app state not found in context")
	}
	return state, nil
}

func StateMiddleware(state *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithState(c.Request.Context(), state)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
