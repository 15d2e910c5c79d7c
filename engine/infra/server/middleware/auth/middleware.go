package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/auth/userctx"
	"github.com/compozy/defaultdesk/engine/core"
	monitoringmetrics "github.com/compozy/defaultdesk/engine/infra/monitoring/metrics"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ContextKeyToken holds the raw bearer token so logout can revoke it.
const ContextKeyToken = "auth.token"

var errMalformedHeader = errors.New("malformed authorization header")

// Manager resolves bearer tokens into principals.
type Manager struct {
	repo     uc.Repository
	timeout  time.Duration
	attempts metric.Int64Counter
}

// NewManager creates a manager that bounds every resolution by timeout.
func NewManager(repo uc.Repository, timeout time.Duration) *Manager {
	return &Manager{repo: repo, timeout: timeout}
}

// WithMetrics counts resolutions by outcome.
func (m *Manager) WithMetrics(ctx context.Context, meter metric.Meter) *Manager {
	if meter == nil {
		return m
	}
	counter, err := meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem("auth", "attempts_total"),
		metric.WithDescription("Bearer token resolutions by outcome"),
	)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to initialize auth metrics", "error", err)
		return m
	}
	m.attempts = counter
	return m
}

// Middleware rejects the request with a 401 unless it carries a usable
// session token. The principal is re-read on every request.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			log.Debug("Authentication failed", "reason", err.Error())
			m.record(ctx, "missing")
			router.RespondWithError(c, core.NewError(err, core.ErrCodeInvalidCredentials, nil))
			return
		}
		principal, err := core.WithTimeoutResult(
			ctx,
			"resolve session",
			m.timeout,
			uc.NewResolveSession(m.repo, token).Execute,
		)
		if err != nil {
			m.record(ctx, outcomeOf(err))
			router.RespondWithError(c, err)
			return
		}
		m.record(ctx, "success")
		c.Set(ContextKeyToken, token)
		c.Request = c.Request.WithContext(userctx.WithPrincipal(ctx, principal))
		log.Debug("Authentication successful", "user_id", principal.ID())
		c.Next()
	}
}

// TokenFromContext returns the bearer token accepted by Middleware.
func TokenFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

// RequireRole lets only the listed roles through. It must run after
// Middleware.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal := router.GetPrincipal(c)
		if principal == nil {
			return
		}
		if _, ok := allowed[principal.Role()]; !ok {
			router.RespondWithError(c, core.Forbidden("role not permitted"))
			return
		}
		c.Next()
	}
}

func extractBearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errMalformedHeader
	}
	return parts[1], nil
}

func (m *Manager) record(ctx context.Context, outcome string) {
	if m.attempts == nil {
		return
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func outcomeOf(err error) string {
	if code := core.CodeOf(err); code != "" {
		return strings.ToLower(code)
	}
	return "error"
}
