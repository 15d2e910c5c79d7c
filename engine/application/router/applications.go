package approuter

import (
	"github.com/compozy/defaultdesk/engine/application/model"
	"github.com/compozy/defaultdesk/engine/application/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	reasonmodel "github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/gin-gonic/gin"
)

// createApplication opens a PENDING application for a customer.
//
//	@Summary		Create application
//	@Description	Request a default or rebirth status change. The reason must be enabled and match the type.
//	@Tags			applications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		uc.CreateInput							true	"Application"
//	@Success		201		{object}	router.Response{data=model.Application}	"Application created"
//	@Failure		400		{object}	core.ProblemDocument					"Invalid request or customer state"
//	@Failure		403		{object}	core.ProblemDocument					"Forbidden"
//	@Failure		404		{object}	core.ProblemDocument					"Customer or reason not found"
//	@Router			/applications [post]
func createApplication(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	var input uc.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		router.RespondWithError(c, core.BadRequest(err))
		return
	}
	app, err := uc.NewCreate(state.Applications, principal, &input).Execute(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondCreated(c, "application created", app)
}

// searchApplications lists applications with customer and reason names.
//
//	@Summary		Search applications
//	@Description	Substring match on customer name; exact match on status and type. Results are bounded.
//	@Tags			applications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			customer_name	query		string	false	"Customer name substring"	example("acme")
//	@Param			status			query		string	false	"PENDING, APPROVED or REJECTED"
//	@Param			type			query		string	false	"DEFAULT or REBIRTH"
//	@Param			limit			query		int		false	"Page size (max 200)"	example(50)
//	@Param			offset			query		int		false	"Rows to skip"			example(0)
//	@Success		200				{object}	router.Response{data=[]model.Summary}	"Applications retrieved"
//	@Header			200				{string}	Link	"RFC 8288 pagination links for next/prev"
//	@Failure		400				{object}	core.ProblemDocument	"Invalid query"
//	@Router			/applications/search [get]
func searchApplications(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	filter, err := parseSearchFilter(c, state.Applications)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	rows, err := uc.NewSearch(state.Applications, principal, filter).Execute(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.SetLinkHeaders(c, filter.Limit, filter.Offset, len(rows))
	router.RespondOK(c, "applications retrieved", rows)
}

func parseSearchFilter(c *gin.Context, deps *uc.Deps) (model.SearchFilter, error) {
	offset, err := router.OffsetParam(c)
	if err != nil {
		return model.SearchFilter{}, err
	}
	filter := model.SearchFilter{
		CustomerName: c.Query("customer_name"),
		Limit:        router.LimitOrDefault(c.Query("limit"), deps.DefaultLimit, deps.MaxLimit),
		Offset:       offset,
	}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			return model.SearchFilter{}, core.BadRequest(err)
		}
		filter.Status = status
	}
	if raw := c.Query("type"); raw != "" {
		typ, err := reasonmodel.ParseType(raw)
		if err != nil {
			return model.SearchFilter{}, core.BadRequest(err)
		}
		filter.Type = typ
	}
	return filter, nil
}

// getApplication returns one application with its attachments.
//
//	@Summary		Get application
//	@Tags			applications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string							true	"Application ID"
//	@Success		200	{object}	router.Response{data=uc.Detail}	"Application retrieved"
//	@Failure		404	{object}	core.ProblemDocument			"Application not found"
//	@Router			/applications/{id} [get]
func getApplication(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := uc.NewGet(state.Applications, principal, id).Execute(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "application retrieved", detail)
}

// reviewApplication approves or rejects a PENDING application. Approval
// updates the customer's default flag in the same transaction.
//
//	@Summary		Review application
//	@Tags			applications
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string									true	"Application ID"
//	@Param			request	body		uc.ReviewInput							true	"Decision"
//	@Success		200		{object}	router.Response{data=model.Application}	"Application reviewed"
//	@Failure		400		{object}	core.ProblemDocument					"Invalid decision"
//	@Failure		403		{object}	core.ProblemDocument					"Forbidden"
//	@Failure		404		{object}	core.ProblemDocument					"Application not found"
//	@Failure		409		{object}	core.ProblemDocument					"Already reviewed or review in progress"
//	@Router			/applications/{id}/review [post]
func reviewApplication(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	var input uc.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		router.RespondWithError(c, core.BadRequest(err))
		return
	}
	app, err := uc.NewReview(state.Applications, principal, id, &input).Execute(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "application reviewed", app)
}

// deleteApplication removes an application and its attachment rows. The
// customer flag is left as it is.
//
//	@Summary		Delete application
//	@Tags			applications
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Application ID"
//	@Success		204
//	@Failure		403	{object}	core.ProblemDocument	"Forbidden"
//	@Failure		404	{object}	core.ProblemDocument	"Application not found"
//	@Router			/applications/{id} [delete]
func deleteApplication(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := uc.NewDelete(state.Applications, principal, id).Execute(c.Request.Context()); err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondNoContent(c)
}
