package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/razbensimon/hit-computer-security-project/internal/transport/http/middleware"
	"github.com/razbensimon/hit-computer-security-project/internal/usecase"
)

// CustomerHandler exposes the customer CRM endpoints.
type CustomerHandler struct {
	auth      *usecase.AuthService
	customers *usecase.CustomerService
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(auth *usecase.AuthService, customers *usecase.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		auth:      auth,
		customers: customers,
	}
}

// RegisterRoutes binds customer routes behind authentication.
func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup) {
	protected := r.Group("", middleware.RequireAuth(h.auth))
	protected.POST("/customers", h.addCustomer)
	protected.GET("/customers", h.listCustomers)
}

// AddCustomer godoc
// @Summary Add a customer record
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body CustomerRequest true "Customer payload"
// @Success 201 {object} CustomerPayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/customers [post]
func (h *CustomerHandler) addCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name, address, and phone are required"))
		return
	}

	customer, err := h.customers.AddCustomer(c.Request.Context(),
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Address), strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, usecase.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name, address, and phone are required"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to add customer"))
		return
	}

	c.JSON(http.StatusCreated, newCustomerPayload(*customer))
}

// ListCustomers godoc
// @Summary List customer records
// @Tags Customers
// @Produce json
// @Success 200 {object} CustomerListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/customers [get]
func (h *CustomerHandler) listCustomers(c *gin.Context) {
	customers, err := h.customers.ListCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list customers"))
		return
	}

	payloads := make([]CustomerPayload, 0, len(customers))
	for _, customer := range customers {
		payloads = append(payloads, newCustomerPayload(customer))
	}

	c.JSON(http.StatusOK, CustomerListResponse{Customers: payloads, Total: len(payloads)})
}
