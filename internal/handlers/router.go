package handlers

import (
	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	api := r.Group("/api/v1")
	{
		// Public
		api.POST("/resolve", h.ResolveLink)
		api.POST("/resolve/auth", h.ResolveLinkWithPassword)
		api.POST("/register", h.RegisterUser)
		api.POST("/login", h.LoginUser)
		api.POST("/links", h.CreateLink) // anonymous creation allowed, auth optional

		// Billing collaborator, shared-secret auth
		api.POST("/billing/sync", h.BillingAuth(), h.SyncSubscription)

		authorized := api.Group("/")
		authorized.Use(h.AuthRequired())
		{
			authorized.GET("/links", h.ListLinks)
			authorized.PATCH("/links/:slug", h.UpdateLink)
			authorized.DELETE("/links/:slug", h.DeleteLink)
			authorized.GET("/links/:slug/analytics", h.LinkAnalytics)
			authorized.GET("/links/:slug/qr", h.LinkQR)

			authorized.POST("/keys", h.CreateAPIKey)
			authorized.GET("/keys", h.ListAPIKeys)
			authorized.DELETE("/keys/:id", h.RevokeAPIKey)

			authorized.POST("/groups", h.CreateGroup)
			authorized.GET("/groups", h.ListGroups)
			authorized.DELETE("/groups/:id", h.DeleteGroup)

			authorized.GET("/auth/plan", h.ReissuePlanToken)
			authorized.POST("/auth/2fa/enable", h.EnableTwoFactor)
			authorized.POST("/auth/2fa/verify", h.VerifyTwoFactor)
		}
	}

	return r
}
