package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/razbensimon/hit-computer-security-project/internal/transport/http/middleware"
	"github.com/razbensimon/hit-computer-security-project/internal/usecase"
)

// PasswordHandler exposes password recovery and rotation endpoints.
type PasswordHandler struct {
	auth     *usecase.AuthService
	password *usecase.PasswordService
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(auth *usecase.AuthService, password *usecase.PasswordService) *PasswordHandler {
	return &PasswordHandler{
		auth:     auth,
		password: password,
	}
}

// RegisterRoutes binds password routes. The forgot-password endpoint is
// public; changing a password requires an authenticated session.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, forgotMiddlewares ...gin.HandlerFunc) {
	if len(forgotMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, forgotMiddlewares...)
		chain = append(chain, h.forgotPassword)
		r.POST("/forgot-password", chain...)
	} else {
		r.POST("/forgot-password", h.forgotPassword)
	}

	r.POST("/change-password", middleware.RequireAuth(h.auth), h.changePassword)
}

// ForgotPassword godoc
// @Summary Request a temporary password
// @Description Issues a temporary password to the account's registered contact and forces a reset on next login.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails "Rate limit exceeded"
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/forgot-password [post]
func (h *PasswordHandler) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	err := h.password.ForgotPassword(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil && !errors.Is(err, usecase.ErrAccountNotFound) {
		if errors.Is(err, usecase.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to process reset request"))
		return
	}

	// Unknown emails get the same answer as known ones.
	c.JSON(http.StatusOK, MessageResponse{
		Message: "if the account exists, a temporary password has been sent",
	})
}

// ChangePassword godoc
// @Summary Change the current account's password
// @Description Verifies the old password and replaces it, enforcing the policy and the reuse window.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Change password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 423 {object} ErrorResponse "Account locked"
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/account/change-password [post]
func (h *PasswordHandler) changePassword(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "all fields are required"))
		return
	}

	err := h.password.ChangePassword(c.Request.Context(), session.Email,
		req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		h.respondChangeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

func (h *PasswordHandler) respondChangeError(c *gin.Context, err error) {
	var reused *usecase.ReusedPasswordError
	if errors.As(err, &reused) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c,
			fmt.Sprintf("new password must differ from the last %d passwords", reused.HistorySize)))
		return
	}

	switch {
	case errors.Is(err, usecase.ErrMissingFields):
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "all fields are required"))
	case errors.Is(err, usecase.ErrPasswordConfirmMismatch):
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password confirmation does not match"))
	case errors.Is(err, usecase.ErrPasswordPolicyViolation):
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, passwordPolicyMessage(err)))
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "old password is incorrect"))
	case errors.Is(err, usecase.ErrAccountLocked):
		c.JSON(http.StatusLocked, NewErrorResponse(c, "account is locked, contact an administrator"))
	case errors.Is(err, usecase.ErrAccountNotFound):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to change password"))
	}
}
