package server

import (
	"fmt"

	approuter "github.com/compozy/defaultdesk/engine/application/router"
	attachmentrouter "github.com/compozy/defaultdesk/engine/attachment/router"
	auditrouter "github.com/compozy/defaultdesk/engine/audit/router"
	authrouter "github.com/compozy/defaultdesk/engine/auth/router"
	customerrouter "github.com/compozy/defaultdesk/engine/customer/router"
	"github.com/compozy/defaultdesk/engine/infra/server/middleware/size"
	notificationrouter "github.com/compozy/defaultdesk/engine/notification/router"
	reasonrouter "github.com/compozy/defaultdesk/engine/reason/router"
	statsrouter "github.com/compozy/defaultdesk/engine/stats/router"
	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for part headers around a max-size file.
const multipartOverhead = 1 << 20

type RouteDeps struct {
	// Auth resolves the bearer token; every route except the token endpoint
	// runs behind it.
	Auth        gin.HandlerFunc
	LoginGuards []gin.HandlerFunc
	MaxUpload   int64
}

func RegisterRoutes(base *gin.RouterGroup, deps RouteDeps) error {
	if deps.Auth == nil {
		return fmt.Errorf("auth middleware is required")
	}
	protected := base.Group("", deps.Auth)
	authrouter.Register(base, protected, deps.LoginGuards...)
	customerrouter.Register(protected)
	reasonrouter.Register(protected)
	approuter.Register(protected)
	var uploadGuards []gin.HandlerFunc
	if deps.MaxUpload > 0 {
		uploadGuards = append(uploadGuards, size.BodySizeLimiter(deps.MaxUpload+multipartOverhead))
	}
	attachmentrouter.Register(protected, uploadGuards...)
	notificationrouter.Register(protected)
	statsrouter.Register(protected)
	auditrouter.Register(protected)
	return nil
}
