package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error       string `json:"error"`
	RetriesLeft *int   `json:"retries_left,omitempty"`
	TraceID     string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary describes an account view returned by the API. Password
// material never appears here.
type AccountSummary struct {
	Email               string    `json:"email"`
	DisplayName         string    `json:"display_name"`
	IsLocked            bool      `json:"is_locked"`
	FailedAttempts      int       `json:"failed_attempts"`
	ResetPasswordNeeded bool      `json:"reset_password_needed"`
	IsAdmin             bool      `json:"is_admin"`
	CreatedAt           time.Time `json:"created_at"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// RegisterResponse contains the created account view.
type RegisterResponse struct {
	Account AccountSummary `json:"account"`
	Message string         `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	Redirect  string         `json:"redirect"`
	Account   AccountSummary `json:"account"`
}

// ForgotPasswordRequest represents a password reset initiation payload.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ChangePasswordRequest captures a password change request body.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// CustomerRequest defines the payload for adding a customer record.
type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

// CustomerPayload summarizes a customer record.
type CustomerPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerListResponse wraps multiple customer records.
type CustomerListResponse struct {
	Customers []CustomerPayload `json:"customers"`
	Total     int               `json:"total"`
}

// AccountListResponse wraps the admin account listing.
type AccountListResponse struct {
	Accounts []AccountSummary `json:"accounts"`
	Total    int              `json:"total"`
}

// CountResponse reports an aggregate count.
type CountResponse struct {
	Count int `json:"count"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newAccountSummary converts a domain account to a summary suitable for API
// responses. The digest stays behind.
func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		Email:               account.Email,
		DisplayName:         account.DisplayName,
		IsLocked:            account.IsLocked,
		FailedAttempts:      account.FailedAttempts,
		ResetPasswordNeeded: account.ResetPasswordNeeded,
		IsAdmin:             account.IsAdmin,
		CreatedAt:           account.CreatedAt,
	}
}

func newCustomerPayload(customer domain.Customer) CustomerPayload {
	return CustomerPayload{
		ID:        customer.ID,
		Name:      customer.Name,
		Address:   customer.Address,
		Phone:     customer.Phone,
		CreatedAt: customer.CreatedAt,
	}
}
