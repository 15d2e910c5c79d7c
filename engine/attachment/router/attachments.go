package attachmentrouter

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/compozy/defaultdesk/engine/attachment/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/compozy/defaultdesk/engine/policy"
	"github.com/gin-gonic/gin"
)

const formField = "file"

var errMissingFile = errors.New("multipart field \"file\" is required")

// addAttachment uploads one file to a PENDING application.
//
//	@Summary		Add attachment
//	@Description	Only the creator (or an admin) may attach, and only while the application is PENDING.
//	@Tags			attachments
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string									true	"Application ID"
//	@Param			file	formData	file									true	"Evidence file"
//	@Success		201		{object}	router.Response{data=model.Attachment}	"Attachment stored"
//	@Failure		400		{object}	core.ProblemDocument					"Missing or oversized file"
//	@Failure		403		{object}	core.ProblemDocument					"Forbidden"
//	@Failure		404		{object}	core.ProblemDocument					"Application not found"
//	@Router			/applications/{id}/attachments [post]
func addAttachment(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	if !policy.RoleGrants(principal.Role(), policy.ActionAdd, policy.KindAttachment) {
		router.RespondWithError(c, core.Forbidden(fmt.Sprintf("%s may not add attachment", principal.Role())))
		return
	}
	file, err := readFormFile(c, state.Attachments.MaxBytes)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	att, err := uc.NewAdd(state.Attachments, principal, id, file).Execute(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondCreated(c, "attachment stored", att)
}

// readFormFile loads the upload into memory. maxBytes <= 0 disables the cap.
func readFormFile(c *gin.Context, maxBytes int64) (*uc.File, error) {
	header, err := c.FormFile(formField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, core.BadRequest(fmt.Errorf("request body exceeds %d bytes", maxErr.Limit))
		}
		return nil, core.BadRequest(errMissingFile)
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, core.BadRequest(fmt.Errorf("file exceeds %d bytes", maxBytes))
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return &uc.File{
		Filename:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Data:         data,
	}, nil
}

// listAttachments returns an application's attachments in upload order.
//
//	@Summary		List attachments
//	@Tags			attachments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string										true	"Application ID"
//	@Success		200	{object}	router.Response{data=[]model.Attachment}	"Attachments retrieved"
//	@Failure		404	{object}	core.ProblemDocument						"Application not found"
//	@Router			/applications/{id}/attachments [get]
func listAttachments(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	atts, err := uc.NewList(state.Attachments, principal, id).Execute(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "attachments retrieved", atts)
}

// attachmentURL returns a download link for one attachment.
//
//	@Summary		Attachment download URL
//	@Tags			attachments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id				path		string									true	"Application ID"
//	@Param			attachment_id	path		string									true	"Attachment ID"
//	@Success		200				{object}	router.Response{data=uc.DownloadURL}	"URL issued"
//	@Failure		404				{object}	core.ProblemDocument					"Attachment not found"
//	@Router			/applications/{id}/attachments/{attachment_id}/url [get]
func attachmentURL(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	appID, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	attID, ok := router.GetIDParam(c, "attachment_id")
	if !ok {
		return
	}
	url, err := uc.NewPresign(state.Attachments, principal, appID, attID).Execute(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "url issued", url)
}
