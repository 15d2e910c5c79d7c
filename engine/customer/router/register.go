package customerrouter

import "github.com/gin-gonic/gin"

func Register(apiBase *gin.RouterGroup) {
	customersGroup := apiBase.Group("/customers")
	{
		// GET /customers
		// List customers
		customersGroup.GET("", listCustomers)

		// POST /customers
		// Create a customer
		customersGroup.POST("", createCustomer)

		// GET /customers/:id
		// Get a customer
		customersGroup.GET("/:id", getCustomer)

		// PATCH /customers/:id
		// Update master data
		customersGroup.PATCH("/:id", updateCustomer)

		// DELETE /customers/:id
		// Delete a customer
		customersGroup.DELETE("/:id", deleteCustomer)
	}
}
