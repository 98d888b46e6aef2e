package middleware

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"freightdesk/internal/common"

	"github.com/labstack/echo/v4"
)

const apiVersionContextKey = "api_version"

type versionInfo struct {
	deprecated bool
	note       string
}

// VersionMiddleware resolves the /vN path prefix and stamps version headers.
type VersionMiddleware struct {
	known    map[string]versionInfo
	fallback string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		known: map[string]versionInfo{
			"v1": {note: "Current stable API version"},
		},
		fallback: "v1",
	}
}

// Deprecate marks version as deprecated; responses then carry
// X-API-Deprecated: true.
func (vm *VersionMiddleware) Deprecate(version, note string) {
	vm.known[version] = versionInfo{deprecated: true, note: note}
}

// VersionHeader sets X-API-Version and the version note on every response
// of the group it is attached to.
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if info, ok := vm.known[version]; ok {
				if info.deprecated {
					h.Set("X-API-Deprecated", "true")
				}
				if info.note != "" {
					h.Set("X-API-Message", info.note)
				}
			}
			return next(c)
		}
	}
}

// APIVersionResolver answers 404 for an unknown /vN prefix. Paths without a
// version prefix (health, swagger) get the fallback version.
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version, ok := pathVersion(c.Request().URL.Path)
			if !ok {
				c.Set(apiVersionContextKey, vm.fallback)
				return next(c)
			}
			if _, known := vm.known[version]; !known {
				return c.JSON(http.StatusNotFound, common.CreateErrorResponse(common.CodeNotFound, "Unsupported API version",
					map[string]string{"supported_versions": strings.Join(vm.versions(), ", ")}))
			}
			c.Set(apiVersionContextKey, version)
			return next(c)
		}
	}
}

// pathVersion extracts "vN" from /vN or /vN/...
func pathVersion(path string) (string, bool) {
	rest, found := strings.CutPrefix(path, "/v")
	if !found {
		return "", false
	}
	segment, _, _ := strings.Cut(rest, "/")
	n, err := strconv.Atoi(segment)
	if err != nil || n <= 0 {
		return "", false
	}
	return "v" + strconv.Itoa(n), true
}

func (vm *VersionMiddleware) versions() []string {
	out := make([]string, 0, len(vm.known))
	for version := range vm.known {
		out = append(out, version)
	}
	sort.Strings(out)
	return out
}
