// api/router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasgrc/atlas/api/controller"
	"github.com/atlasgrc/atlas/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	webhookSecret []byte,
	webhookTolerance time.Duration,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The webhook endpoint is exempt from IP rate limiting: the provider
	// retries aggressively and deliveries are already signature-gated.
	webhooks := router.Group("/api/v1")
	webhooks.Use(middleware.WebhookAuth(webhookSecret, webhookTolerance))
	controllers.Webhook.RegisterRoutes(webhooks)

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	controllers.Session.RegisterRoutes(api)
	controllers.Notification.RegisterRoutes(api)
	controllers.Ticket.RegisterRoutes(api)
	controllers.Activity.RegisterRoutes(api)
	controllers.User.RegisterRoutes(api)
	controllers.Org.RegisterRoutes(api)

	return router
}
