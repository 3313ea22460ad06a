package routes

import (
	"cabgo/internal/controllers"
	"cabgo/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/api/drivers")
	{
		// Passengers browse available drivers without a token.
		driver.GET("/available", controllers.ListAvailableDrivers)

		driver.POST("/register", middleware.RequireAuth(), controllers.RegisterDriver)
		driver.PATCH("/availability", middleware.RequireAuth(), controllers.UpdateDriverAvailability)
	}
}
