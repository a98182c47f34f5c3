package handlers

import (
	"github.com/gin-gonic/gin"

	"paisa/internal/middleware"
)

// RegisterRoutes mounts the auth, profile and transaction routes on v1.
// Everything except register, login and refresh requires a bearer token.
func RegisterRoutes(v1 *gin.RouterGroup, authHandler *AuthHandler, transactionHandler *TransactionHandler) {
	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.PUT("", transactionHandler.UpdateTransaction)
	transactions.DELETE("", transactionHandler.DeleteTransaction)
	transactions.GET("/summary", transactionHandler.GetSummary)
}
