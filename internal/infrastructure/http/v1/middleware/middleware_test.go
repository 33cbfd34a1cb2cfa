package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgl/internal/core/apperror"
	appctx "cgl/internal/core/context"
)

type stubValidator map[string]*appctx.UserContext

func (v stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := v[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Trace(), ErrorHandler())
	r.GET("/", append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_type"))
	})...)
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	validator := stubValidator{
		"good": {UserID: "u1", UserType: "USER"},
	}
	r := newEngine(Auth(validator))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "Missing", header: "", status: http.StatusUnauthorized},
		{name: "NotBearer", header: "Basic good", status: http.StatusUnauthorized},
		{name: "EmptyToken", header: "Bearer  ", status: http.StatusUnauthorized},
		{name: "Invalid", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "Valid", header: "Bearer good", status: http.StatusOK},
		{name: "LowercaseScheme", header: "bearer good", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := get(r, "Bearer good")
	assert.Equal(t, "USER", w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	r := newEngine(OptionalAuth(stubValidator{"good": {UserID: "u1", UserType: "USER"}}))

	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer nope").Code)
	assert.Equal(t, "USER", get(r, "Bearer good").Body.String())
}

func TestRequireAdmin(t *testing.T) {
	validator := stubValidator{
		"admin": {UserID: "a", UserType: "ADMIN", IsAdmin: true},
		"user":  {UserID: "u", UserType: "USER"},
	}
	r := newEngine(Auth(validator), RequireAdmin())

	assert.Equal(t, http.StatusOK, get(r, "Bearer admin").Code)

	w := get(r, "Bearer user")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeForbidden)

	// Without Auth in front there is no user at all.
	assert.Equal(t, http.StatusUnauthorized, get(newEngine(RequireAdmin()), "").Code)
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewInternal(errors.New("dial tcp 10.0.0.5:5432: refused")))
		c.Abort()
	})

	w := get(r, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "request_id")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestErrorHandler_PlainError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Abort()
	})

	w := get(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestErrorHandler_AppErrorDetails(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("bad range").WithDetail("from", "abc"))
		c.Abort()
	})

	w := get(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"VALIDATION_ERROR","message":"bad range","details":{"from":"abc"}}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/", func(*gin.Context) { panic("kaboom") })

	w := get(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
}
