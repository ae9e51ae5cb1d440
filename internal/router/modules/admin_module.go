package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/member-directory/internal/container"
	handlers "github.com/oksasatya/member-directory/internal/interface/http"
	"github.com/oksasatya/member-directory/internal/interface/middleware"
	"github.com/oksasatya/member-directory/pkg/helpers"
)

// AdminModule wires the staff surface behind an admin bearer token.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AdminAuth(m.JWT))
	admin.Use(middleware.RateLimit(container.GetRedis(), 600, time.Minute, middleware.KeyByIP(), nil))
	heavy := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	{
		admin.GET("/members", m.Handler.List)
		admin.GET("/members/:id", m.Handler.Get)
		admin.PATCH("/members/:id", m.Handler.Update)
		admin.POST("/members/:id/family", m.Handler.AddFamily)
		admin.DELETE("/members/:id/family/:index", m.Handler.RemoveFamily)
		admin.POST("/export", heavy, m.Handler.Export)
		admin.GET("/export/last", m.Handler.LastExport)
		admin.POST("/reindex", heavy, m.Handler.Reindex)
	}
}
