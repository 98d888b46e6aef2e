package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestPathVersion(t *testing.T) {
	tests := []struct {
		path    string
		version string
		ok      bool
	}{
		{"/v1/houses", "v1", true},
		{"/v2", "v2", true},
		{"/v01/houses", "v1", true},
		{"/health", "", false},
		{"/vx/houses", "", false},
		{"/v0/houses", "", false},
		{"/swagger/index.html", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			version, ok := pathVersion(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.version, version)
		})
	}
}

func versionServer(vm *VersionMiddleware) *echo.Echo {
	e := echo.New()
	e.Use(vm.APIVersionResolver())
	ok := func(c echo.Context) error { return c.String(http.StatusOK, c.Get(apiVersionContextKey).(string)) }
	e.GET("/health", ok)
	e.GET("/v2/houses", ok)
	e.Group("/v1", vm.VersionHeader("v1")).GET("/houses", ok)
	return e
}

func TestAPIVersionResolver(t *testing.T) {
	e := versionServer(NewVersionMiddleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/houses", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", rec.Body.String())
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
	assert.Empty(t, rec.Header().Get("X-API-Deprecated"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "v1", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2/houses", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "supported_versions")
}

func TestVersionHeader_Deprecated(t *testing.T) {
	vm := NewVersionMiddleware()
	vm.Deprecate("v1", "Use v2")
	e := versionServer(vm)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/houses", nil))

	assert.Equal(t, "true", rec.Header().Get("X-API-Deprecated"))
	assert.Equal(t, "Use v2", rec.Header().Get("X-API-Message"))
}
