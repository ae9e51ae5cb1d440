package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/member-directory/internal/container"
	"github.com/oksasatya/member-directory/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar and Prometheus endpoints, private networks only plus a per-IP limit
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	private := middleware.AllowPrivateIP()
	guard := func(c *gin.Context) {
		if !private(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
	rg.GET("/debug/vars", rl, guard, gin.WrapH(expvar.Handler()))
	rg.GET("/debug/metrics", rl, guard, gin.WrapH(promhttp.Handler()))
}
