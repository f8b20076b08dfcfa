package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitterhub/internal/httpapi/middleware"
	"sitterhub/internal/httpapi/models"
	"sitterhub/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuthService struct {
	claims *service.Claims
	err    error
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email, role string) (*models.User, error) {
	return nil, nil
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	return "", "", nil, nil
}

func (s *stubAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	return "", nil
}

func (s *stubAuthService) RevokeToken(ctx context.Context, refreshToken string) error {
	return nil
}

func (s *stubAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	return s.claims, s.err
}

func newProtectedRouter(auth service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(auth), func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r := newProtectedRouter(&stubAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	r := newProtectedRouter(&stubAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	r := newProtectedRouter(&stubAuthService{err: service.ErrInvalidToken})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareSetsUserID(t *testing.T) {
	r := newProtectedRouter(&stubAuthService{claims: &service.Claims{UserID: "u1", Username: "alice", Role: "pet_owner"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rl := middleware.NewRateLimiter(1, 2)
	r.GET("/limited", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])
}
