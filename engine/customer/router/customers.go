package customerrouter

import (
	"fmt"
	"strconv"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/compozy/defaultdesk/engine/customer/model"
	"github.com/compozy/defaultdesk/engine/customer/uc"
	"github.com/compozy/defaultdesk/engine/infra/server/router"
	"github.com/gin-gonic/gin"
)

// listCustomers returns a page of customers.
//
//	@Summary		List customers
//	@Description	Filter by name substring and default flag. Pages are bounded.
//	@Tags			customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			name		query		string	false	"Name substring"	example("acme")
//	@Param			is_default	query		bool	false	"Default flag"
//	@Param			limit		query		int		false	"Page size (max 200)"	example(50)
//	@Param			offset		query		int		false	"Rows to skip"			example(0)
//	@Success		200			{object}	router.Response{data=[]model.Customer}	"Customers retrieved"
//	@Header			200			{string}	Link	"RFC 8288 pagination links for next/prev"
//	@Failure		400			{object}	core.ProblemDocument	"Invalid query"
//	@Router			/customers [get]
func listCustomers(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	offset, err := router.OffsetParam(c)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	filter := model.Filter{
		Name:   c.Query("name"),
		Limit:  router.LimitOrDefault(c.Query("limit"), uc.DefaultPageSize, uc.MaxPageSize),
		Offset: offset,
	}
	if raw := c.Query("is_default"); raw != "" {
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			router.RespondWithError(c, core.BadRequest(fmt.Errorf("invalid is_default %q", raw)))
			return
		}
		filter.IsDefault = &flag
	}
	customers, err := router.Execute(c, state, "list customers", uc.NewList(state.Customers, principal, filter))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.SetLinkHeaders(c, filter.Limit, filter.Offset, len(customers))
	router.RespondOK(c, "customers retrieved", customers)
}

// getCustomer returns one customer.
//
//	@Summary		Get customer
//	@Tags			customers
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string									true	"Customer ID"
//	@Success		200	{object}	router.Response{data=model.Customer}	"Customer retrieved"
//	@Failure		404	{object}	core.ProblemDocument					"Customer not found"
//	@Router			/customers/{id} [get]
func getCustomer(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	customer, err := router.Execute(c, state, "get customer", uc.NewGet(state.Customers, principal, id))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "customer retrieved", customer)
}

// createCustomer adds a customer. New customers are never default.
//
//	@Summary		Create customer
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		uc.CreateInput							true	"Customer"
//	@Success		201		{object}	router.Response{data=model.Customer}	"Customer created"
//	@Failure		400		{object}	core.ProblemDocument					"Invalid request"
//	@Failure		403		{object}	core.ProblemDocument					"Forbidden"
//	@Failure		409		{object}	core.ProblemDocument					"Name already exists"
//	@Router			/customers [post]
func createCustomer(c *gin.Context) {
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
	customer, err := router.Execute(c, state, "create customer", uc.NewCreate(state.Customers, principal, &input))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondCreated(c, "customer created", customer)
}

// updateCustomer edits master data. The default flag is read-only here.
//
//	@Summary		Update customer
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string									true	"Customer ID"
//	@Param			request	body		uc.UpdateInput							true	"Changes"
//	@Success		200		{object}	router.Response{data=model.Customer}	"Customer updated"
//	@Failure		400		{object}	core.ProblemDocument					"Invalid request"
//	@Failure		403		{object}	core.ProblemDocument					"Forbidden"
//	@Failure		404		{object}	core.ProblemDocument					"Customer not found"
//	@Failure		409		{object}	core.ProblemDocument					"Name already exists"
//	@Router			/customers/{id} [patch]
func updateCustomer(c *gin.Context) {
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
	customer, err := router.Execute(c, state, "update customer", uc.NewUpdate(state.Customers, principal, id, &input))
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "customer updated", customer)
}

// deleteCustomer removes a customer with no applications.
//
//	@Summary		Delete customer
//	@Tags			customers
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Customer ID"
//	@Success		204
//	@Failure		403	{object}	core.ProblemDocument	"Forbidden"
//	@Failure		404	{object}	core.ProblemDocument	"Customer not found"
//	@Failure		409	{object}	core.ProblemDocument	"Customer has applications"
//	@Router			/customers/{id} [delete]
func deleteCustomer(c *gin.Context) {
	state := router.GetAppState(c)
	principal := router.GetPrincipal(c)
	if state == nil || principal == nil {
		return
	}
	id, ok := router.GetIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := router.Execute(c, state, "delete customer", uc.NewDelete(state.Customers, principal, id)); err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondNoContent(c)
}
