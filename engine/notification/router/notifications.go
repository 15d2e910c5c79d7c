package notificationrouter

import (
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/engine/notification/uc"
	"github.com/gin-gonic/gin"
)

// listNotifications returns the caller's inbox, newest first.
//
//	@Summary	List notifications
//	@Tags		notifications
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int											false	"Max items (max 500)"	example(100)
//	@Success	200		{object}	router.Response{data=[]model.Notification}	"Notifications retrieved"
//	@Router		/notifications [get]
func listNotifications(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	limit := router.LimitOrDefault(c.Query("limit"), uc.DefaultListLimit, uc.MaxListLimit)
	out, err := router.Execute(c, state, "list notifications", uc.NewList(state.Notifications, principal, limit))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "notifications retrieved", out)
}

// markNotificationRead flags one of the caller's notifications as read.
//
//	@Summary	Mark notification read
//	@Tags		notifications
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Notification ID"
//	@Success	204
//	@Failure	404	{object}	core.ProblemDocument	"Not found or not yours"
//	@Router		/notifications/{id}/read [post]
func markNotificationRead(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := router.Execute(c, state, "mark notification read",
		uc.NewMarkRead(state.Notifications, principal, id)); err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondNoContent(c)
}
