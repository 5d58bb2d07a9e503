package routes

import (
	"net/http"
	"time"

	"campuspay/handlers"
	"campuspay/middleware"
	"campuspay/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPaymentRoutes registers the payment session and transaction endpoints.
func RegisterPaymentRoutes(r *gin.Engine, ph *handlers.PaymentHandler) {
	sessions := r.Group("/api/payment-sessions")
	{
		sessions.Use(middleware.JWTAuthStudentMiddleware())
		sessions.POST("", ph.CreateSessionHandler)
		sessions.GET("/:id", ph.GetSessionHandler)
		sessions.DELETE("/:id", ph.CancelSessionHandler)
	}

	payments := r.Group("/api/payments")
	{
		payments.GET("/methods", ph.PaymentMethodsHandler)

		payments.Use(middleware.JWTAuthStudentMiddleware())
		payments.POST("/initiate", ph.InitiatePaymentHandler)
		payments.POST("/mobile-money", ph.MobileMoneyHandler)
		payments.GET("/:id/status", ph.PaymentStatusHandler)
	}
}

// RegisterWebhookRoutes registers the public, payload-signed provider callbacks.
func RegisterWebhookRoutes(r *gin.Engine, wh *handlers.WebhookHandler) {
	r.POST("/webhooks/:provider", wh.HandleProviderWebhook)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, ph *handlers.PaymentHandler, wh *handlers.WebhookHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterPaymentRoutes(r, ph)
	RegisterWebhookRoutes(r, wh)
	RegisterHealthRoute(r)
}
