package routes

import (
	"cabgo/internal/controllers"
	"cabgo/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", controllers.ListUsers)
		admin.GET("/users/:id", controllers.GetUserDetails)
		admin.PATCH("/users/:id", controllers.UpdateUserDetails)
		admin.DELETE("/users/:id", controllers.DeleteUser)

		admin.PATCH("/drivers/:id/verify", controllers.VerifyDriverProfile)

		admin.GET("/rides", controllers.ListAllRides)
		admin.GET("/rides/:id", controllers.GetRideDetails)
		admin.PATCH("/rides/:id/cancel-by-admin", controllers.CancelRideByAdmin)

		admin.GET("/stats", controllers.GetPlatformStats)
	}
}
