package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performWithRole(role interface{}, setRole bool) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		if setRole {
			c.Set("user_role", role)
		}
	}, RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	w := performWithRole("admin", true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	w := performWithRole("viewer", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleRejectsNonStringRoleClaim(t *testing.T) {
	// A forged or malformed token can carry any JSON type in the role claim.
	w := performWithRole(float64(1), true)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleMissingRole(t *testing.T) {
	w := performWithRole(nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
