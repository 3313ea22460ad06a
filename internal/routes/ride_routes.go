package routes

import (
	"cabgo/internal/controllers"
	"cabgo/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RideRoutes(r *gin.Engine) {
	ride := r.Group("/api/rides")
	ride.Use(middleware.RequireAuth())
	{
		ride.POST("/book-ride", controllers.BookRide)
		ride.GET("/history", controllers.RideHistory)
		ride.POST("/:id/cancel", controllers.CancelRide)
		ride.POST("/:id/process-payment", controllers.ProcessRidePayment)
	}
}
