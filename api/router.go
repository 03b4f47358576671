package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/amenitybooking/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Areas        *AreaHandler
	Reservations *ReservationHandler
	Damages      *DamagesHandler
	Webhook      *StripeWebhookHandler
}

// NewRouter mounts the webhook outside the actor check; Stripe signs its
// requests instead.
func NewRouter(cfg config.HTTPConfig, h Handlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if h.Webhook != nil {
		h.Webhook.Register(router.Group("/webhooks"))
	}

	authorized := router.Group("/")
	authorized.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger), RequireActor())
	h.Areas.Register(authorized.Group("/areas"))
	h.Reservations.Register(authorized.Group("/reservas"))
	h.Damages.Register(authorized.Group("/pago-danos"))

	return router
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	cc.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", HeaderUserID, HeaderUserName, HeaderUserRole)
	cc.MaxAge = 12 * time.Hour
	return cc
}
