package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cabgo/internal/config"
	"cabgo/internal/middleware"
	"cabgo/internal/models"
)

type driverRegistrationInput struct {
	LicenseNumber     string `json:"license_number" binding:"required"`
	LicenseExpiryDate string `json:"license_expiry_date"` // YYYY-MM-DD
}

// RegisterDriver turns the authenticated user into an (unverified) driver by
// creating their driver profile.
func RegisterDriver(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var existing models.DriverProfile
	err := config.DB.Where("user_id = ?", user.ID).First(&existing).Error
	if err == nil || user.IsDriver {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a driver or has an existing driver profile."})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	var input driverRegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "License number is required: " + err.Error()})
		return
	}

	var expiry *time.Time
	if input.LicenseExpiryDate != "" {
		parsed, err := time.Parse("2006-01-02", input.LicenseExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format for license expiry. Use YYYY-MM-DD."})
			return
		}
		expiry = &parsed
	}

	profile := models.DriverProfile{
		UserID:             user.ID,
		LicenseNumber:      input.LicenseNumber,
		LicenseExpiryDate:  expiry,
		IsVerified:         false, // verification is an admin task
		AvailabilityStatus: models.DriverOffline,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_driver", true).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "This license number is already registered."})
			return
		}
		logrus.WithError(err).Error("Error during driver registration")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Driver registration failed due to an internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Driver registration successful. Awaiting verification.",
		"driver_profile": gin.H{
			"driver_profile_id":   profile.ID,
			"user_id":             profile.UserID,
			"license_number":      profile.LicenseNumber,
			"is_verified":         profile.IsVerified,
			"availability_status": profile.AvailabilityStatus,
		},
	})
}

// ListAvailableDrivers lists verified drivers currently marked AVAILABLE.
// Public: passengers call this before booking.
func ListAvailableDrivers(c *gin.Context) {
	var profiles []models.DriverProfile
	err := config.DB.Where("availability_status = ? AND is_verified = ?", models.DriverAvailable, true).
		Preload("User").
		Find(&profiles).Error
	if err != nil {
		logrus.WithError(err).Error("Error fetching available drivers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch available drivers due to an internal error"})
		return
	}

	drivers := make([]gin.H, 0, len(profiles))
	for _, profile := range profiles {
		drivers = append(drivers, gin.H{
			"driver_id":         profile.UserID,
			"driver_profile_id": profile.ID,
			"full_name":         profile.User.FullName,
			"phone_number":      profile.User.PhoneNumber,
			"current_latitude":  profile.CurrentLatitude,
			"current_longitude": profile.CurrentLongitude,
		})
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

type availabilityInput struct {
	AvailabilityStatus models.AvailabilityStatus `json:"availability_status" binding:"required"`
	Latitude           *float64                  `json:"latitude"`
	Longitude          *float64                  `json:"longitude"`
}

// UpdateDriverAvailability sets the caller's availability state and optionally
// refreshes their last known position.
func UpdateDriverAvailability(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var profile models.DriverProfile
	if err := config.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver profile not found for this user."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	var input availabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Availability status is required in the request body."})
		return
	}
	if !input.AvailabilityStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availability status. Must be one of: [AVAILABLE BUSY OFFLINE]"})
		return
	}

	profile.AvailabilityStatus = input.AvailabilityStatus
	if input.Latitude != nil && input.Longitude != nil {
		now := time.Now().UTC()
		profile.CurrentLatitude = input.Latitude
		profile.CurrentLongitude = input.Longitude
		profile.LastLocationUpdate = &now
	}

	if err := config.DB.Save(&profile).Error; err != nil {
		logrus.WithError(err).Error("Error updating driver availability")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update availability due to an internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Driver availability updated successfully.",
		"driver_id":  profile.UserID,
		"new_status": profile.AvailabilityStatus,
	})
}
