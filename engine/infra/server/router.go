package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/appstate"
	auditmw "github.com/compozy/defaultdesk/engine/infra/server/middleware/audit"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/engine/infra/server/routes"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/compozy/defaultdesk/pkg/version"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
)

func (s *Server) buildRouter(state *appstate.State) error {
	log := logger.FromContext(s.ctx)
	if s.cfg.Runtime.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(log))
	var meter metric.Meter
	if s.monitoring != nil && s.monitoring.IsInitialized() {
		meter = s.monitoring.Meter()
		r.Use(s.monitoring.GinMiddleware())
		r.GET(s.monitoring.Path(), gin.WrapH(s.monitoring.ExporterHandler()))
	}
	if len(s.cfg.Server.CORS.AllowedOrigins) > 0 {
		r.Use(CORSMiddleware(s.cfg.Server.CORS))
	}
	r.Use(auditmw.ClientIP())
	if s.cfg.Audit.HTTPRequests {
		r.Use(auditmw.Requests(state.Audit, state.Timeouts.Operation))
	}
	r.Use(appstate.StateMiddleware(state))

	r.GET(routes.Health(), CreateHealthHandler(s.healthCheck, version.GetVersion(), state.Timeouts.Operation))
	if s.files != nil {
		if base := strings.TrimRight(s.cfg.Storage.PublicBaseURL, "/"); strings.HasPrefix(base, "/") {
			r.GET(base+"/*key", gin.WrapH(s.files))
		}
	}
	deps := RouteDeps{
		Auth:        authMiddleware(s.ctx, state, meter),
		LoginGuards: loginGuards(s.ctx, state, s.redisClient(), meter),
		MaxUpload:   s.cfg.Server.MaxUploadBytes,
	}
	if err := RegisterRoutes(&r.RouterGroup, deps); err != nil {
		return err
	}
	r.NoRoute(func(c *gin.Context) {
		router.RespondProblemWithCode(c, http.StatusNotFound, core.ErrCodeNotFound, "route not found")
	})
	s.router = r
	log.Info("Completed route registration", "routes", len(r.Routes()))
	return nil
}

func (s *Server) logStartupBanner() {
	log := logger.FromContext(s.ctx)
	httpURL := fmt.Sprintf("http://%s:%d", friendlyHost(s.cfg.Server.Host), s.cfg.Server.Port)
	lines := []string{
		fmt.Sprintf("defaultdesk %s", version.GetVersion()),
		fmt.Sprintf("  API      > %s", httpURL),
		fmt.Sprintf("  Token    > %s%s", httpURL, routes.Token()),
		fmt.Sprintf("  Health   > %s%s", httpURL, routes.Health()),
	}
	if s.monitoring != nil && s.monitoring.IsInitialized() {
		lines = append(lines, fmt.Sprintf("  Metrics  > %s%s", httpURL, s.monitoring.Path()))
	}
	log.Info("\n" + strings.Join(lines, "\n"))
}
