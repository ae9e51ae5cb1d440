package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/member-directory/internal/container"
	handlers "github.com/oksasatya/member-directory/internal/interface/http"
	"github.com/oksasatya/member-directory/internal/interface/middleware"
)

// VerificationModule wires the email verification and directory search steps.
// Public: POST /api/verify/{request,confirm,restart,search,select,create}, GET /api/verify/status
type VerificationModule struct {
	Handler    *handlers.VerificationHandler
	CookieName string
}

func NewVerificationModule(h *handlers.VerificationHandler, cookieName string) *VerificationModule {
	return &VerificationModule{Handler: h, CookieName: cookieName}
}

func (m *VerificationModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	requestLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP()) // 10 codes/min per IP
	confirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByCookie(m.CookieName), nil)
	searchLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByCookie(m.CookieName), nil)

	v := rg.Group("/verify")
	v.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil))
	{
		v.GET("/status", m.Handler.Status)
		v.POST("/request", requestLimiter, m.Handler.Request)
		v.POST("/confirm", confirmLimiter, m.Handler.Confirm)
		v.POST("/restart", m.Handler.Restart)
		v.POST("/search", searchLimiter, m.Handler.Search)
		v.POST("/select", m.Handler.Select)
		v.POST("/create", m.Handler.Create)
	}
}
