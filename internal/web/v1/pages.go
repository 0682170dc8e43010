package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/gatehouse/middleware"
)

// Page rendering is out of scope for this service; these handlers exist
// so the gate's redirect targets resolve and protected pages prove the
// gating behavior end to end.

// RegisterPages registers the page routes on the given router.
func (h *Handler) RegisterPages(r gin.IRouter) {
	r.GET("/", func(c *gin.Context) {
		page(c, "Home", "Welcome. <a href=\"/login\">Login</a> or visit your <a href=\"/dashboard\">dashboard</a>.")
	})

	r.GET("/login", func(c *gin.Context) {
		page(c, "Login", "POST credentials to /api/auth/login to start a session.")
	})

	r.GET("/dashboard", func(c *gin.Context) {
		who := "unknown"
		if p := middleware.PayloadFromContext(c); p != nil {
			who = fmt.Sprintf("%s (%s)", p.Email, p.Role)
		}
		page(c, "Dashboard", "Signed in as "+who+".")
	})

	r.GET("/admin", func(c *gin.Context) {
		page(c, "Admin", "User administration. Data at /api/admin/users.")
	})

	r.GET("/overlay", func(c *gin.Context) {
		page(c, "Overlay", "Gated region. Access contract at /api/overlay/access.")
	})
}

func page(c *gin.Context, title, body string) {
	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte("<!doctype html><title>"+title+"</title><h1>"+title+"</h1><p>"+body+"</p>"))
}
