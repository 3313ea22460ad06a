// Package rides owns the ride lifecycle state machine. Every mutating
// operation takes the caller's unit of work (a *gorm.DB transaction) so the
// full set of writes for one transition commits or rolls back together.
package rides

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cabgo/internal/apperr"
	"cabgo/internal/fare"
	"cabgo/internal/models"
)

// LocationInput is one leg of a booking. Latitude/longitude are pointers so a
// missing coordinate is distinguishable from 0.
type LocationInput struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	AddressLine1 string   `json:"address_line1"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
}

type BookingInput struct {
	Pickup         *LocationInput     `json:"pickup_location"`
	Dropoff        *LocationInput     `json:"dropoff_location"`
	VehicleType    models.VehicleType `json:"vehicle_type"`
	NotesForDriver string             `json:"notes_for_driver"`
}

// Book creates the pickup and dropoff locations, prices the trip and records a
// new ride in REQUESTED owned by passengerID.
func Book(tx *gorm.DB, passengerID uint, in BookingInput) (*models.Ride, error) {
	if in.Pickup == nil || in.Dropoff == nil {
		return nil, apperr.Validationf("Pickup and dropoff locations are required")
	}
	if in.Pickup.Latitude == nil || in.Pickup.Longitude == nil ||
		in.Dropoff.Latitude == nil || in.Dropoff.Longitude == nil {
		return nil, apperr.Validationf("Latitude and longitude are required for both pickup and dropoff locations")
	}

	vehicleType := in.VehicleType
	if vehicleType == "" {
		vehicleType = models.VehicleSedan
	}
	if !vehicleType.Valid() {
		return nil, apperr.Validationf("Invalid vehicle type. Must be one of: %v", models.VehicleTypes)
	}

	pickup := models.Location{
		Latitude:     *in.Pickup.Latitude,
		Longitude:    *in.Pickup.Longitude,
		AddressLine1: in.Pickup.AddressLine1,
		City:         in.Pickup.City,
		State:        in.Pickup.State,
		PostalCode:   in.Pickup.PostalCode,
	}
	if err := tx.Create(&pickup).Error; err != nil {
		return nil, err
	}

	dropoff := models.Location{
		Latitude:     *in.Dropoff.Latitude,
		Longitude:    *in.Dropoff.Longitude,
		AddressLine1: in.Dropoff.AddressLine1,
		City:         in.Dropoff.City,
		State:        in.Dropoff.State,
		PostalCode:   in.Dropoff.PostalCode,
	}
	if err := tx.Create(&dropoff).Error; err != nil {
		return nil, err
	}

	distanceKm := fare.Distance(pickup.Latitude, pickup.Longitude, dropoff.Latitude, dropoff.Longitude)
	estimated := fare.Estimate(distanceKm, vehicleType, fare.DefaultParams())

	ride := models.Ride{
		PassengerID:          passengerID,
		PickupLocationID:     pickup.ID,
		DropoffLocationID:    dropoff.ID,
		Status:               models.RideRequested,
		RequestedAt:          time.Now().UTC(),
		EstimatedFare:        &estimated,
		PaymentStatus:        models.PaymentPending,
		VehicleTypeRequested: vehicleType,
		NotesForDriver:       in.NotesForDriver,
	}
	if err := tx.Create(&ride).Error; err != nil {
		return nil, err
	}

	ride.PickupLocation = pickup
	ride.DropoffLocation = dropoff
	return &ride, nil
}

// History returns the passenger's rides, most recent request first, with both
// locations loaded.
func History(db *gorm.DB, passengerID uint) ([]models.Ride, error) {
	var userRides []models.Ride
	err := db.Where("passenger_id = ?", passengerID).
		Preload("PickupLocation").
		Preload("DropoffLocation").
		Order("requested_at DESC").
		Find(&userRides).Error
	if err != nil {
		return nil, err
	}
	return userRides, nil
}

// CancelByPassenger moves a ride to CANCELLED_PASSENGER. Only the ride's
// passenger may cancel, and only from REQUESTED or ACCEPTED.
func CancelByPassenger(tx *gorm.DB, rideID, passengerID uint) (*models.Ride, error) {
	ride, err := findRide(tx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.PassengerID != passengerID {
		return nil, apperr.Authorizationf("You are not authorized to cancel this ride")
	}
	if ride.Status != models.RideRequested && ride.Status != models.RideAccepted {
		return nil, apperr.InvalidStatef("Ride cannot be cancelled in its current status: %s", ride.Status)
	}

	now := time.Now().UTC()
	ride.Status = models.RideCancelledPassenger
	ride.CancelledAt = &now
	if err := tx.Save(ride).Error; err != nil {
		return nil, err
	}
	return ride, nil
}

// CancelByAdmin moves any non-terminal ride to CANCELLED_ADMIN.
func CancelByAdmin(tx *gorm.DB, rideID uint) (*models.Ride, error) {
	ride, err := findRide(tx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status.Terminal() {
		return nil, apperr.InvalidStatef("Ride is already %s and cannot be cancelled again.", ride.Status)
	}

	now := time.Now().UTC()
	ride.Status = models.RideCancelledAdmin
	ride.CancelledAt = &now
	if err := tx.Save(ride).Error; err != nil {
		return nil, err
	}
	return ride, nil
}

// ProcessPayment settles a completed ride with the stub payment provider.
// The estimated fare becomes the actual fare when no actual fare was recorded.
func ProcessPayment(tx *gorm.DB, rideID, passengerID uint, method string) (*models.Ride, error) {
	ride, err := findRide(tx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.PassengerID != passengerID {
		return nil, apperr.Authorizationf("You are not authorized to process payment for this ride")
	}
	if ride.Status != models.RideCompleted {
		return nil, apperr.InvalidStatef("Ride cannot be paid for in its current status: %s", ride.Status)
	}
	if ride.PaymentStatus == models.PaymentPaid {
		return nil, apperr.InvalidStatef("This ride has already been paid for.")
	}

	if method == "" {
		method = "DUMMY_CARD"
	}

	now := time.Now().UTC()
	ride.PaymentStatus = models.PaymentPaid
	ride.PaymentMethod = method
	ride.PaymentTransactionID = fmt.Sprintf("TXN-%d-%d", now.UnixNano(), ride.ID)
	ride.PaidAt = &now
	if ride.ActualFare == nil && ride.EstimatedFare != nil {
		amount := *ride.EstimatedFare
		ride.ActualFare = &amount
	}
	if err := tx.Save(ride).Error; err != nil {
		return nil, err
	}
	return ride, nil
}

func findRide(tx *gorm.DB, rideID uint) (*models.Ride, error) {
	var ride models.Ride
	if err := tx.First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("Ride not found")
		}
		return nil, err
	}
	return &ride, nil
}
