package routes

import (
	"cabgo/internal/controllers"
	"cabgo/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.RegisterUser)
		auth.POST("/login", controllers.LoginUser)
		auth.GET("/me", middleware.RequireAuth(), controllers.GetCurrentUser)
	}
}
