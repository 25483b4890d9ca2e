package web

import (
	"github.com/gin-gonic/gin"
)

// ---------- auth middlewares ----------
func (h *handlers) mustLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			redirect(c, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// mustAdmin: аноним -> /login, не админ -> 403
func (h *handlers) mustAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			redirect(c, "/login")
			c.Abort()
			return
		}
		if !u.IsAdmin() {
			h.forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
