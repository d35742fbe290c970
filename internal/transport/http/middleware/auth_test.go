package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/security"
	"github.com/razbensimon/hit-computer-security-project/internal/usecase"
)

func newAuthTestService(t *testing.T, ttl time.Duration) (*usecase.AuthService, *security.SessionTokenCodec) {
	t.Helper()

	codec, err := security.NewSessionTokenCodec("middleware-test-signing-key", "customer-portal", ttl)
	if err != nil {
		t.Fatalf("failed to build codec: %v", err)
	}

	svc := usecase.NewAuthService(nil, nil, codec, nil, zap.NewNop(), 3)
	return svc, codec
}

func newProtectedRouter(svc *usecase.AuthService, adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	group := router.Group("/")
	group.Use(EnrichContext(), RequireAuth(svc))
	if adminOnly {
		group.Use(RequireAdmin())
	}
	group.GET("/whoami", func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": session.Email, "is_admin": session.IsAdmin})
	})

	return router
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	svc, codec := newAuthTestService(t, 30*time.Minute)

	token, err := codec.Issue(domain.Session{Email: "dana@example.com", DisplayName: "Dana"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	router := newProtectedRouter(svc, false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRequireAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	svc, _ := newAuthTestService(t, 30*time.Minute)
	router := newProtectedRouter(svc, false)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc123"},
		{name: "empty token", header: "Bearer  "},
		{name: "garbage token", header: "Bearer not-a-token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	svc, codec := newAuthTestService(t, time.Nanosecond)

	token, err := codec.Issue(domain.Session{Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	router := newProtectedRouter(svc, false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rr.Code)
	}
}

func TestRequireAdminForbidsRegularAccounts(t *testing.T) {
	svc, codec := newAuthTestService(t, 30*time.Minute)
	router := newProtectedRouter(svc, true)

	memberToken, err := codec.Issue(domain.Session{Email: "member@example.com"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rr.Code)
	}

	adminToken, err := codec.Issue(domain.Session{Email: "root@example.com", IsAdmin: true})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr = httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rr.Code)
	}
}
