package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/member-directory/pkg/helpers"
	"github.com/oksasatya/member-directory/pkg/response"
)

const (
	CtxAdminEmailKey = "adminEmail"
	adminCookieName  = "admin_token"
)

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if tok, err := c.Cookie(adminCookieName); err == nil {
		return tok
	}
	return ""
}

// AdminAuth accepts a bearer token (or admin_token cookie) signed by jwt and
// carrying the admin role. The admin email is stored under CtxAdminEmailKey.
func AdminAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing admin token", nil)
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid admin token", err.Error())
			return
		}
		if claims.Role != helpers.RoleAdmin {
			response.Abort(c, http.StatusForbidden, "admin role required", nil)
			return
		}
		c.Set(CtxAdminEmailKey, claims.Email)
		c.Next()
	}
}
