package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// PathMatcher matches request paths against a mixed list of exact paths
// ("/health"), prefix patterns ("/api/**") and glob patterns
// ("/api/*/public", path.Match syntax).
type PathMatcher struct {
	exact    map[string]struct{}
	prefixes []string
	patterns []string
}

// NewPathMatcher compiles the path list
func NewPathMatcher(paths []string) *PathMatcher {
	pm := &PathMatcher{exact: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if prefix, ok := strings.CutSuffix(p, "/**"); ok {
			pm.prefixes = append(pm.prefixes, prefix)
		} else if strings.ContainsAny(p, "*?[") {
			pm.patterns = append(pm.patterns, p)
		} else {
			pm.exact[p] = struct{}{}
		}
	}
	return pm
}

// Match reports whether the path matches any compiled entry
func (pm *PathMatcher) Match(urlPath string) bool {
	if pm == nil {
		return false
	}
	if _, ok := pm.exact[urlPath]; ok {
		return true
	}
	for _, prefix := range pm.prefixes {
		if urlPath == prefix {
			return true
		}
		if len(urlPath) > len(prefix) && urlPath[len(prefix)] == '/' && strings.HasPrefix(urlPath, prefix) {
			return true
		}
	}
	for _, pattern := range pm.patterns {
		if matched, _ := path.Match(pattern, urlPath); matched {
			return true
		}
	}
	return false
}

func shouldSkip(c *gin.Context, matcher *PathMatcher, skipFunc func(*gin.Context) bool) bool {
	if skipFunc != nil && skipFunc(c) {
		return true
	}
	return matcher.Match(c.Request.URL.Path)
}

// bearerToken extracts the token from the Authorization header, empty when
// the scheme is not Bearer
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// mutating reports whether the request method requires CSRF proof
func mutating(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}
