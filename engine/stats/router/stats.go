package statsrouter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/engine/stats/model"
	"github.com/compozy/defaultdesk/engine/stats/uc"
	"github.com/gin-gonic/gin"
)

// yearParam reads ?year=, defaulting to the current UTC year.
func yearParam(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return time.Now().UTC().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.BadRequest(fmt.Errorf("invalid year %q", raw))
	}
	return year, nil
}

func countBy(dim model.Dimension) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := router.GetAppState(c)
		principal := router.GetPrincipal(c)
		if state == nil || principal == nil {
			return
		}
		year, err := yearParam(c)
		if err != nil {
			router.RespondWithError(c, err)
			return
		}
		buckets, err := router.Execute(c, state, "count approvals",
			uc.NewCount(state.Stats, principal, dim, year, state.Timeouts))
		if err != nil {
			router.RespondWithError(c, err)
			return
		}
		router.RespondOK(c, "stats retrieved", buckets)
	}
}

// industryStats counts approvals per customer industry.
//
//	@Summary		Approvals by industry
//	@Description	Counts APPROVED applications reviewed in the year, split into default and rebirth.
//	@Tags			stats
//	@Produce		json
//	@Security		BearerAuth
//	@Param			year	query		int								false	"Calendar year (UTC), defaults to the current one"	example(2026)
//	@Success		200		{object}	router.Response{data=[]model.Bucket}	"Stats retrieved"
//	@Failure		400		{object}	core.ProblemDocument					"Invalid year"
//	@Router			/stats/industry [get]
func industryStats(c *gin.Context) {
	countBy(model.DimensionIndustry)(c)
}

// regionStats counts approvals per customer region.
//
//	@Summary	Approvals by region
//	@Tags		stats
//	@Produce	json
//	@Security	BearerAuth
//	@Param		year	query		int										false	"Calendar year (UTC)"
//	@Success	200		{object}	router.Response{data=[]model.Bucket}	"Stats retrieved"
//	@Failure	400		{object}	core.ProblemDocument					"Invalid year"
//	@Router		/stats/region [get]
func regionStats(c *gin.Context) {
	countBy(model.DimensionRegion)(c)
}

// summaryStats returns both breakdowns in one response.
//
//	@Summary	Approvals summary
//	@Tags		stats
//	@Produce	json
//	@Security	BearerAuth
//	@Param		year	query		int									false	"Calendar year (UTC)"
//	@Success	200		{object}	router.Response{data=model.Summary}	"Stats retrieved"
//	@Failure	400		{object}	core.ProblemDocument				"Invalid year"
//	@Router		/stats/summary [get]
func summaryStats(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	year, err := yearParam(c)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	summary, err := router.Execute(c, state, "summarize approvals",
		uc.NewSummarize(state.Stats, principal, year, state.Timeouts))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "stats retrieved", summary)
}
