package routes

import (
	"cabgo/internal/controllers"
	"cabgo/internal/middleware"

	"github.com/gin-gonic/gin"
)

func VehicleRoutes(r *gin.Engine) {
	vehicle := r.Group("/api/vehicles")
	vehicle.Use(middleware.RequireAuth())
	{
		vehicle.POST("/add", controllers.AddVehicle)
		vehicle.GET("", controllers.ListMyVehicles)
	}
}
