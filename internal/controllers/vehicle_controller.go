package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cabgo/internal/config"
	"cabgo/internal/middleware"
	"cabgo/internal/models"
)

type addVehicleInput struct {
	Make         string             `json:"make" binding:"required"`
	Model        string             `json:"model" binding:"required"`
	Year         *int               `json:"year"`
	Color        string             `json:"color"`
	LicensePlate string             `json:"license_plate" binding:"required"`
	VehicleType  models.VehicleType `json:"vehicle_type" binding:"required"`
}

// AddVehicle registers a vehicle for the authenticated driver. Only verified
// driver profiles may add vehicles.
func AddVehicle(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !user.IsDriver {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only registered drivers can add vehicles."})
		return
	}

	var profile models.DriverProfile
	if err := config.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil || !profile.IsVerified {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Driver profile not found or not verified. Cannot add vehicle."})
		return
	}

	var input addVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}
	if !input.VehicleType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid vehicle type. Must be one of: %v", models.VehicleTypes)})
		return
	}

	vehicle := models.Vehicle{
		DriverID:     user.ID,
		Make:         input.Make,
		VehicleModel: input.Model,
		Year:         input.Year,
		Color:        input.Color,
		LicensePlate: input.LicensePlate,
		VehicleType:  input.VehicleType,
		IsActive:     true, // default to active when added
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "This license plate is already registered."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add vehicle due to an internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Vehicle added successfully.", "vehicle": vehicle})
}

// ListMyVehicles lists all vehicles registered by the authenticated driver.
func ListMyVehicles(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !user.IsDriver {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only drivers can view their vehicles."})
		return
	}

	var vehicles []models.Vehicle
	if err := config.DB.Where("driver_id = ?", user.ID).Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}
