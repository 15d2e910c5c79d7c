package reasonrouter

import (
	"fmt"
	"strconv"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/engine/reason/model"
	"github.com/compozy/defaultdesk/engine/reason/uc"
	"github.com/gin-gonic/gin"
)

// listReasons returns the reason catalogue in sort order.
//
//	@Summary		List reasons
//	@Tags			reasons
//	@Produce		json
//	@Security		BearerAuth
//	@Param			type			query		string	false	"DEFAULT or REBIRTH"	example("DEFAULT")
//	@Param			enabled_only	query		bool	false	"Hide disabled reasons"
//	@Success		200				{object}	router.Response{data=[]model.Reason}	"Reasons retrieved"
//	@Failure		400				{object}	core.ProblemDocument					"Invalid query"
//	@Router			/reasons [get]
func listReasons(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	var filter model.Filter
	if raw := c.Query("type"); raw != "" {
		typ, err := model.ParseType(raw)
		if err != nil {
			router.RespondWithError(c, core.BadRequest(err))
			return
		}
		filter.Type = typ
	}
	if raw := c.Query("enabled_only"); raw != "" {
		only, err := strconv.ParseBool(raw)
		if err != nil {
			router.RespondWithError(c, core.BadRequest(fmt.Errorf("invalid enabled_only %q", raw)))
			return
		}
		filter.EnabledOnly = only
	}
	reasons, err := router.Execute(c, state, "list reasons", uc.NewList(state.Reasons, principal, filter))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "reasons retrieved", reasons)
}

// createReason adds a reason. Admin only.
//
//	@Summary		Create reason
//	@Tags			reasons
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		uc.CreateInput						true	"Reason"
//	@Success		201		{object}	router.Response{data=model.Reason}	"Reason created"
//	@Failure		400		{object}	core.ProblemDocument				"Invalid request"
//	@Failure		403		{object}	core.ProblemDocument				"Forbidden"
//	@Router			/reasons [post]
func createReason(c *gin.Context) {
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
	reason, err := router.Execute(c, state, "create reason", uc.NewCreate(state.Reasons, principal, &input))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondCreated(c, "reason created", reason)
}

// updateReason edits description, order or the enabled flag.
//
//	@Summary		Update reason
//	@Tags			reasons
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"Reason ID"
//	@Param			request	body		uc.UpdateInput						true	"Changes"
//	@Success		200		{object}	router.Response{data=model.Reason}	"Reason updated"
//	@Failure		400		{object}	core.ProblemDocument				"Invalid request"
//	@Failure		403		{object}	core.ProblemDocument				"Forbidden"
//	@Failure		404		{object}	core.ProblemDocument				"Reason not found"
//	@Router			/reasons/{id} [patch]
func updateReason(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	var input uc.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		router.RespondWithError(c, core.BadRequest(err))
		return
	}
	reason, err := router.Execute(c, state, "update reason", uc.NewUpdate(state.Reasons, principal, id, &input))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "reason updated", reason)
}

// deleteReason removes an unused reason.
//
//	@Summary		Delete reason
//	@Tags			reasons
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Reason ID"
//	@Success		204
//	@Failure		403	{object}	core.ProblemDocument	"Forbidden"
//	@Failure		404	{object}	core.ProblemDocument	"Reason not found"
//	@Failure		409	{object}	core.ProblemDocument	"Reason in use"
//	@Router			/reasons/{id} [delete]
func deleteReason(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := router.Execute(c, state, "delete reason", uc.NewDelete(state.Reasons, principal, id)); err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondNoContent(c)
}
