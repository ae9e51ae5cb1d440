package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/member-directory/internal/container"
	handlers "github.com/oksasatya/member-directory/internal/interface/http"
	"github.com/oksasatya/member-directory/internal/interface/middleware"
)

// MemberModule wires profile editing for a verified flow.
// GET/PATCH /api/member/profile, POST /api/member/profile/save,
// POST /api/member/family, DELETE /api/member/family/:index
type MemberModule struct {
	Handler    *handlers.MemberHandler
	CookieName string
}

func NewMemberModule(h *handlers.MemberHandler, cookieName string) *MemberModule {
	return &MemberModule{Handler: h, CookieName: cookieName}
}

func (m *MemberModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/member")
	g.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByCookie(m.CookieName), nil),
	)
	{
		g.GET("/profile", m.Handler.GetProfile)
		g.PATCH("/profile", m.Handler.PatchProfile)
		g.POST("/profile/save", m.Handler.Save)
		g.POST("/family", m.Handler.AddFamily)
		g.DELETE("/family/:index", m.Handler.RemoveFamily)
	}
}
