package auditrouter

import (
	"fmt"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/audit"
	"github.com/compozy/defaultdesk/engine/audit/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/gin-gonic/gin"
)

// listAuditLogs returns audit entries, newest first.
//
//	@Summary		List audit logs
//	@Description	Admin only. start and end are RFC 3339; end is exclusive.
//	@Tags			audit
//	@Produce		json
//	@Security		BearerAuth
//	@Param			user_id		query		string								false	"Actor ID"
//	@Param			action		query		string								false	"Action"		example("REVIEW")
//	@Param			target_type	query		string								false	"Target type"	example("Application")
//	@Param			start		query		string								false	"From (inclusive)"
//	@Param			end			query		string								false	"Until (exclusive)"
//	@Param			limit		query		int									false	"Max entries (max 1000)"	example(100)
//	@Success		200			{object}	router.Response{data=[]audit.Entry}	"Audit entries retrieved"
//	@Failure		400			{object}	core.ProblemDocument				"Invalid filter"
//	@Failure		403			{object}	core.ProblemDocument				"Forbidden"
//	@Router			/audit-logs [get]
func listAuditLogs(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	entries, err := router.Execute(c, state, "list audit entries", uc.NewList(state.Audit, principal, filter))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "audit entries retrieved", entries)
}

func parseFilter(c *gin.Context) (audit.Filter, error) {
	filter := audit.Filter{
		Action:     strings.ToUpper(strings.TrimSpace(c.Query("action"))),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		Limit:      router.LimitOrDefault(c.Query("limit"), audit.DefaultListLimit, audit.MaxListLimit),
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		id, err := core.ParseID(raw)
		if err != nil {
			return audit.Filter{}, core.BadRequest(err)
		}
		filter.ActorID = id
	}
	var err error
	if filter.Start, err = timeParam(c, "start"); err != nil {
		return audit.Filter{}, err
	}
	if filter.End, err = timeParam(c, "end"); err != nil {
		return audit.Filter{}, err
	}
	return filter, nil
}

func timeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, core.BadRequest(fmt.Errorf("invalid %s %q: expected RFC 3339", name, raw))
	}
	ts = ts.UTC()
	return &ts, nil
}
