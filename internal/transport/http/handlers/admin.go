package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/razbensimon/hit-computer-security-project/internal/transport/http/middleware"
	"github.com/razbensimon/hit-computer-security-project/internal/usecase"
)

// AdminHandler exposes account management endpoints for administrators.
type AdminHandler struct {
	auth  *usecase.AuthService
	admin *usecase.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(auth *usecase.AuthService, admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{
		auth:  auth,
		admin: admin,
	}
}

// RegisterRoutes binds admin routes behind authentication. The account count
// is public; everything else additionally requires the admin mark.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/accounts/count", h.countAccounts)

	protected := r.Group("", middleware.RequireAuth(h.auth), middleware.RequireAdmin())
	protected.GET("/accounts", h.listAccounts)
	protected.POST("/accounts/:email/unlock", h.unlockAccount)
	protected.DELETE("/accounts/:email", h.deleteAccount)
}

// ListAccounts godoc
// @Summary List all accounts
// @Tags Admin
// @Produce json
// @Success 200 {object} AccountListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/accounts [get]
func (h *AdminHandler) listAccounts(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	accounts, err := h.admin.ListAccounts(c.Request.Context(), session)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotAuthorized, Status: http.StatusForbidden, Message: "insufficient permissions"},
		}, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, newAccountSummary(account))
	}

	c.JSON(http.StatusOK, AccountListResponse{Accounts: summaries, Total: len(summaries)})
}

// CountAccounts godoc
// @Summary Report the number of registered accounts
// @Tags Admin
// @Produce json
// @Success 200 {object} CountResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/accounts/count [get]
func (h *AdminHandler) countAccounts(c *gin.Context) {
	count, err := h.admin.CountAccounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to count accounts"))
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// UnlockAccount godoc
// @Summary Unlock a locked account
// @Description Clears the lock and failure counter so the owner can log in again.
// @Tags Admin
// @Produce json
// @Param email path string true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/accounts/{email}/unlock [post]
func (h *AdminHandler) unlockAccount(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	email := strings.TrimSpace(c.Param("email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	if err := h.admin.UnlockAccount(c.Request.Context(), session, email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotAuthorized, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to unlock account")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account unlocked"})
}

// DeleteAccount godoc
// @Summary Delete an account
// @Description Removes the account and its password history. Deleting an absent account succeeds.
// @Tags Admin
// @Produce json
// @Param email path string true "Account email"
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/accounts/{email} [delete]
func (h *AdminHandler) deleteAccount(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	email := strings.TrimSpace(c.Param("email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	if err := h.admin.DeleteAccount(c.Request.Context(), session, email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotAuthorized, Status: http.StatusForbidden, Message: "insufficient permissions"},
		}, http.StatusInternalServerError, "failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}
