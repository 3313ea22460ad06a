package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cabgo/internal/apperr"
	"cabgo/internal/config"
	"cabgo/internal/middleware"
	"cabgo/internal/models"
	"cabgo/internal/rides"
)

// BookRide creates both ride legs and a REQUESTED ride for the caller, in a
// single transaction.
func BookRide(c *gin.Context) {
	var input rides.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking input: " + err.Error()})
		return
	}

	passengerID := middleware.CurrentUser(c).ID

	var ride *models.Ride
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var bookErr error
		ride, bookErr = rides.Book(tx, passengerID, input)
		return bookErr
	})
	if err != nil {
		respondRideError(c, err, "Failed to book ride due to an internal error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ride booked successfully",
		"ride": gin.H{
			"id":           ride.ID,
			"passenger_id": ride.PassengerID,
			"pickup_location": gin.H{
				"id":        ride.PickupLocation.ID,
				"latitude":  ride.PickupLocation.Latitude,
				"longitude": ride.PickupLocation.Longitude,
				"address":   ride.PickupLocation.AddressLine1,
			},
			"dropoff_location": gin.H{
				"id":        ride.DropoffLocation.ID,
				"latitude":  ride.DropoffLocation.Latitude,
				"longitude": ride.DropoffLocation.Longitude,
				"address":   ride.DropoffLocation.AddressLine1,
			},
			"status":                 ride.Status,
			"requested_at":           ride.RequestedAt,
			"estimated_fare":         ride.EstimatedFare,
			"vehicle_type_requested": ride.VehicleTypeRequested,
			"notes_for_driver":       ride.NotesForDriver,
		},
	})
}

// RideHistory lists the caller's rides, most recent first.
func RideHistory(c *gin.Context) {
	passengerID := middleware.CurrentUser(c).ID

	history, err := rides.History(config.DB, passengerID)
	if err != nil {
		logrus.WithError(err).Error("Error fetching ride history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ride history due to an internal error"})
		return
	}

	ridesData := make([]gin.H, 0, len(history))
	for _, ride := range history {
		ridesData = append(ridesData, rideSummary(ride))
	}
	c.JSON(http.StatusOK, gin.H{"rides": ridesData})
}

// CancelRide lets the ride's passenger cancel while the ride is still
// REQUESTED or ACCEPTED.
func CancelRide(c *gin.Context) {
	rideID, ok := parseIDParam(c)
	if !ok {
		return
	}
	passengerID := middleware.CurrentUser(c).ID

	var ride *models.Ride
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var cancelErr error
		ride, cancelErr = rides.CancelByPassenger(tx, rideID, passengerID)
		return cancelErr
	})
	if err != nil {
		respondRideError(c, err, "Failed to cancel ride due to an internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Ride cancelled successfully",
		"ride_id":    ride.ID,
		"new_status": ride.Status,
	})
}

// ProcessRidePayment settles a completed ride with the stub payment provider.
func ProcessRidePayment(c *gin.Context) {
	rideID, ok := parseIDParam(c)
	if !ok {
		return
	}
	passengerID := middleware.CurrentUser(c).ID

	var body struct {
		PaymentMethod string `json:"payment_method"`
	}
	// Body is optional; the method defaults inside the lifecycle op.
	_ = c.ShouldBindJSON(&body)

	var ride *models.Ride
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var payErr error
		ride, payErr = rides.ProcessPayment(tx, rideID, passengerID, body.PaymentMethod)
		return payErr
	})
	if err != nil {
		respondRideError(c, err, "Failed to process payment due to an internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment processed successfully (dummy).",
		"ride_id":        ride.ID,
		"payment_status": ride.PaymentStatus,
		"transaction_id": ride.PaymentTransactionID,
		"paid_at":        ride.PaidAt,
	})
}

func rideSummary(ride models.Ride) gin.H {
	return gin.H{
		"id":                     ride.ID,
		"status":                 ride.Status,
		"requested_at":           ride.RequestedAt,
		"accepted_at":            ride.AcceptedAt,
		"started_at":             ride.StartedAt,
		"completed_at":           ride.CompletedAt,
		"cancelled_at":           ride.CancelledAt,
		"estimated_fare":         ride.EstimatedFare,
		"actual_fare":            ride.ActualFare,
		"payment_status":         ride.PaymentStatus,
		"vehicle_type_requested": ride.VehicleTypeRequested,
		"pickup_location": gin.H{
			"latitude":  ride.PickupLocation.Latitude,
			"longitude": ride.PickupLocation.Longitude,
			"address":   ride.PickupLocation.AddressLine1,
		},
		"dropoff_location": gin.H{
			"latitude":  ride.DropoffLocation.Latitude,
			"longitude": ride.DropoffLocation.Longitude,
			"address":   ride.DropoffLocation.AddressLine1,
		},
	}
}

// respondRideError maps lifecycle errors onto HTTP responses; anything outside
// the taxonomy is logged and scrubbed.
func respondRideError(c *gin.Context, err error, fallback string) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).Error(fallback)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err, fallback)})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format."})
		return 0, false
	}
	return uint(id), true
}
