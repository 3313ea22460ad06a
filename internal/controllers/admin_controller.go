package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cabgo/internal/config"
	"cabgo/internal/models"
	"cabgo/internal/rides"
)

// --- user administration ---

// ListUsers lists every user, with driver profile details where present.
func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Preload("DriverProfile").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users due to an internal error"})
		return
	}

	usersData := make([]gin.H, 0, len(users))
	for _, user := range users {
		usersData = append(usersData, adminUserResponse(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": usersData})
}

// GetUserDetails returns one user with driver profile and vehicles.
func GetUserDetails(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var user models.User
	err := config.DB.Preload("DriverProfile").Preload("Vehicles").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user details due to an internal error"})
		}
		return
	}

	response := adminUserResponse(user)
	if user.IsDriver {
		vehicles := make([]gin.H, 0, len(user.Vehicles))
		for _, v := range user.Vehicles {
			vehicles = append(vehicles, gin.H{
				"id":            v.ID,
				"make":          v.Make,
				"model":         v.VehicleModel,
				"license_plate": v.LicensePlate,
				"vehicle_type":  v.VehicleType,
				"is_active":     v.IsActive,
			})
		}
		response["vehicles"] = vehicles
	}
	c.JSON(http.StatusOK, gin.H{"user": response})
}

// updateUserInput patches user fields; pointers distinguish absent from zero.
type updateUserInput struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	IsDriver    *bool   `json:"is_driver"`
	IsAdmin     *bool   `json:"is_admin"`
}

// UpdateUserDetails patches a user record. Demoting the sole remaining admin
// is refused no matter who asks.
func UpdateUserDetails(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update payload: " + err.Error()})
		return
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.PhoneNumber != nil {
		if *input.PhoneNumber == "" {
			user.PhoneNumber = nil
		} else {
			user.PhoneNumber = input.PhoneNumber
		}
	}
	if input.IsDriver != nil {
		user.IsDriver = *input.IsDriver
	}
	if input.IsAdmin != nil {
		if user.IsAdmin && !*input.IsAdmin {
			admins, err := adminCount()
			if err != nil {
				logrus.WithError(err).Error("Error counting admins")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			if admins <= 1 {
				c.JSON(http.StatusForbidden, gin.H{"error": "Cannot remove the last admin's privileges."})
				return
			}
		}
		user.IsAdmin = *input.IsAdmin
	}

	if err := config.DB.Save(&user).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A user with this phone number already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user details due to an internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User details updated successfully.",
		"user": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"full_name":    user.FullName,
			"phone_number": user.PhoneNumber,
			"is_driver":    user.IsDriver,
			"is_admin":     user.IsAdmin,
		},
	})
}

// DeleteUser removes a user together with their driver profile and vehicles.
// Users with passenger ride history are kept; rides they drove lose their
// driver reference. The sole remaining admin cannot be deleted.
func DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	if user.IsAdmin {
		admins, err := adminCount()
		if err != nil {
			logrus.WithError(err).Error("Error counting admins")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if admins <= 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete the last admin account."})
			return
		}
	}

	var passengerRides int64
	if err := config.DB.Model(&models.Ride{}).Where("passenger_id = ?", user.ID).Count(&passengerRides).Error; err != nil {
		logrus.WithError(err).Error("Error counting passenger rides")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if passengerRides > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete user. User has existing ride history as a passenger. Consider deactivating the user instead."})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if user.IsDriver {
			if err := tx.Model(&models.Ride{}).Where("driver_id = ?", user.ID).Update("driver_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("driver_id = ?", user.ID).Delete(&models.Vehicle{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.DriverProfile{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		logrus.WithError(err).Error("Error deleting user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user due to an internal error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User " + user.Email + " and associated driver data deleted successfully."})
}

// --- driver verification ---

type verifyDriverInput struct {
	IsVerified        *bool   `json:"is_verified"`
	VerificationNotes *string `json:"verification_notes"`
}

// VerifyDriverProfile updates a driver profile's verification status and notes.
func VerifyDriverProfile(c *gin.Context) {
	profileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var profile models.DriverProfile
	if err := config.DB.Preload("User").First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver profile not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	var input verifyDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No input data provided for verification."})
		return
	}

	if input.IsVerified != nil {
		profile.IsVerified = *input.IsVerified
	}
	if input.VerificationNotes != nil {
		profile.VerificationNotes = *input.VerificationNotes
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		// Safeguard: a verified profile implies the driver flag on the user.
		if profile.IsVerified && !profile.User.IsDriver {
			return tx.Model(&models.User{}).Where("id = ?", profile.UserID).Update("is_driver", true).Error
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("Error verifying driver profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver profile verification due to an internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Driver profile verification status updated.",
		"driver_profile": gin.H{
			"id":                  profile.ID,
			"user_id":             profile.UserID,
			"license_number":      profile.LicenseNumber,
			"is_verified":         profile.IsVerified,
			"verification_notes":  profile.VerificationNotes,
			"availability_status": profile.AvailabilityStatus,
			"user_full_name":      profile.User.FullName,
		},
	})
}

// --- ride oversight ---

// ListAllRides lists every ride, most recent request first.
func ListAllRides(c *gin.Context) {
	var allRides []models.Ride
	err := config.DB.Preload("PickupLocation").
		Preload("DropoffLocation").
		Preload("Passenger").
		Preload("Driver").
		Order("requested_at DESC").
		Find(&allRides).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rides due to an internal error"})
		return
	}

	ridesData := make([]gin.H, 0, len(allRides))
	for _, ride := range allRides {
		summary := rideSummary(ride)
		summary["passenger"] = gin.H{
			"id":        ride.Passenger.ID,
			"full_name": ride.Passenger.FullName,
			"email":     ride.Passenger.Email,
		}
		if ride.Driver != nil {
			summary["driver"] = gin.H{
				"id":        ride.Driver.ID,
				"full_name": ride.Driver.FullName,
				"email":     ride.Driver.Email,
			}
		}
		ridesData = append(ridesData, summary)
	}
	c.JSON(http.StatusOK, gin.H{"rides": ridesData})
}

// GetRideDetails returns one ride with full location and payment detail.
func GetRideDetails(c *gin.Context) {
	rideID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var ride models.Ride
	err := config.DB.Preload("PickupLocation").
		Preload("DropoffLocation").
		Preload("Passenger").
		Preload("Driver").
		First(&ride, rideID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ride not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ride details due to an internal error"})
		}
		return
	}

	detail := rideSummary(ride)
	detail["passenger"] = gin.H{
		"id":        ride.Passenger.ID,
		"full_name": ride.Passenger.FullName,
		"email":     ride.Passenger.Email,
	}
	if ride.Driver != nil {
		detail["driver"] = gin.H{
			"id":        ride.Driver.ID,
			"full_name": ride.Driver.FullName,
			"email":     ride.Driver.Email,
		}
	}
	detail["pickup_location"] = gin.H{
		"id":            ride.PickupLocation.ID,
		"latitude":      ride.PickupLocation.Latitude,
		"longitude":     ride.PickupLocation.Longitude,
		"address_line1": ride.PickupLocation.AddressLine1,
		"city":          ride.PickupLocation.City,
		"postal_code":   ride.PickupLocation.PostalCode,
	}
	detail["dropoff_location"] = gin.H{
		"id":            ride.DropoffLocation.ID,
		"latitude":      ride.DropoffLocation.Latitude,
		"longitude":     ride.DropoffLocation.Longitude,
		"address_line1": ride.DropoffLocation.AddressLine1,
		"city":          ride.DropoffLocation.City,
		"postal_code":   ride.DropoffLocation.PostalCode,
	}
	detail["payment_transaction_id"] = ride.PaymentTransactionID
	detail["notes_for_driver"] = ride.NotesForDriver
	c.JSON(http.StatusOK, gin.H{"ride": detail})
}

// CancelRideByAdmin cancels any ride not already in a terminal state.
func CancelRideByAdmin(c *gin.Context) {
	rideID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var ride *models.Ride
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var cancelErr error
		ride, cancelErr = rides.CancelByAdmin(tx, rideID)
		return cancelErr
	})
	if err != nil {
		respondRideError(c, err, "Failed to cancel ride due to an internal error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Ride has been cancelled by admin.",
		"ride_id":    ride.ID,
		"new_status": ride.Status,
	})
}

// GetPlatformStats reports aggregate counts across users, drivers, rides and
// vehicles.
func GetPlatformStats(c *gin.Context) {
	var totalUsers, totalDrivers, verifiedDrivers, totalRides, totalVehicles, activeVehicles int64
	config.DB.Model(&models.User{}).Count(&totalUsers)
	config.DB.Model(&models.User{}).Where("is_driver = ?", true).Count(&totalDrivers)
	config.DB.Model(&models.DriverProfile{}).Where("is_verified = ?", true).Count(&verifiedDrivers)
	config.DB.Model(&models.Ride{}).Count(&totalRides)
	config.DB.Model(&models.Vehicle{}).Count(&totalVehicles)
	config.DB.Model(&models.Vehicle{}).Where("is_active = ?", true).Count(&activeVehicles)

	ridesByStatus := gin.H{}
	for _, status := range models.RideStatuses {
		var count int64
		config.DB.Model(&models.Ride{}).Where("status = ?", status).Count(&count)
		ridesByStatus[string(status)] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"platform_statistics": gin.H{
			"total_users": totalUsers,
			"drivers": gin.H{
				"total":      totalDrivers,
				"verified":   verifiedDrivers,
				"unverified": totalDrivers - verifiedDrivers,
			},
			"rides": gin.H{
				"total":     totalRides,
				"by_status": ridesByStatus,
			},
			"vehicles": gin.H{
				"total":    totalVehicles,
				"active":   activeVehicles,
				"inactive": totalVehicles - activeVehicles,
			},
		},
	})
}

func adminUserResponse(user models.User) gin.H {
	response := gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"full_name":    user.FullName,
		"phone_number": user.PhoneNumber,
		"is_driver":    user.IsDriver,
		"is_admin":     user.IsAdmin,
		"created_at":   user.CreatedAt,
		"updated_at":   user.UpdatedAt,
	}
	if user.IsDriver && user.DriverProfile != nil {
		response["driver_profile"] = gin.H{
			"id":                  user.DriverProfile.ID,
			"license_number":      user.DriverProfile.LicenseNumber,
			"is_verified":         user.DriverProfile.IsVerified,
			"availability_status": user.DriverProfile.AvailabilityStatus,
			"verification_notes":  user.DriverProfile.VerificationNotes,
		}
	}
	return response
}

func adminCount() (int64, error) {
	var count int64
	err := config.DB.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error
	return count, err
}
