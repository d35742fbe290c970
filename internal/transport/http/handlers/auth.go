package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/razbensimon/hit-computer-security-project/internal/usecase"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth         *usecase.AuthService
	registration *usecase.RegistrationService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, registration *usecase.RegistrationService) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		registration: registration,
	}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	r.POST("/register", h.register)

	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}
}

// Register godoc
// @Summary Register a new account
// @Description Creates an account with the supplied email, display name, and password.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request payload"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "all fields are required"))
		return
	}

	account, err := h.registration.Register(c.Request.Context(),
		strings.TrimSpace(req.Email), strings.TrimSpace(req.DisplayName), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "all fields are required"))
		case errors.Is(err, usecase.ErrDuplicateAccount):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "email already registered"))
		case errors.Is(err, usecase.ErrPasswordPolicyViolation):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, passwordPolicyMessage(err)))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to register account"))
		}
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Account: newAccountSummary(*account),
		Message: "account created",
	})
}

// Login godoc
// @Summary Authenticate an account with credentials
// @Description Validates the provided email and password, returning a session token on success.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse "Successfully authenticated"
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 423 {object} ErrorResponse "Account locked"
// @Failure 429 {object} middleware.ProblemDetails "Rate limit exceeded"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.respondLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		Redirect:  result.RedirectTarget,
		Account: AccountSummary{
			Email:               result.Session.Email,
			DisplayName:         result.Session.DisplayName,
			IsAdmin:             result.Session.IsAdmin,
			ResetPasswordNeeded: result.Session.ResetPasswordNeeded,
		},
	})
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	var badCreds *usecase.BadCredentialsError
	if errors.As(err, &badCreds) {
		resp := NewErrorResponse(c, "invalid credentials")
		retries := badCreds.RetriesLeft
		resp.RetriesLeft = &retries
		c.JSON(http.StatusUnauthorized, resp)
		return
	}

	switch {
	case errors.Is(err, usecase.ErrMissingFields):
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
	case errors.Is(err, usecase.ErrInvalidCredentials):
		// Unknown emails share this branch so callers cannot probe for accounts.
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid credentials"))
	case errors.Is(err, usecase.ErrAccountLocked):
		c.JSON(http.StatusLocked, NewErrorResponse(c, "account is locked, contact an administrator"))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "authentication failed"))
	}
}

func passwordPolicyMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return "password does not meet requirements"
	}
	return msg
}
