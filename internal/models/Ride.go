package models

import (
	"time"

	"gorm.io/gorm"
)

// RideStatus is the ride lifecycle state. Forward path is
// REQUESTED -> ACCEPTED -> IN_PROGRESS -> COMPLETED; every other value is a
// terminal side branch.
type RideStatus string

const (
	RideRequested          RideStatus = "REQUESTED"
	RideAccepted           RideStatus = "ACCEPTED"
	RideInProgress         RideStatus = "IN_PROGRESS"
	RideCompleted          RideStatus = "COMPLETED"
	RideCancelledPassenger RideStatus = "CANCELLED_PASSENGER"
	RideCancelledDriver    RideStatus = "CANCELLED_DRIVER"
	RideCancelledAdmin     RideStatus = "CANCELLED_ADMIN"
	RideNoDriversFound     RideStatus = "NO_DRIVERS_FOUND"
)

// RideStatuses lists every lifecycle state (used for the admin stats breakdown).
var RideStatuses = []RideStatus{
	RideRequested, RideAccepted, RideInProgress, RideCompleted,
	RideCancelledPassenger, RideCancelledDriver, RideCancelledAdmin, RideNoDriversFound,
}

// Terminal reports whether no further transitions are permitted from s.
func (s RideStatus) Terminal() bool {
	switch s {
	case RideCompleted, RideCancelledPassenger, RideCancelledDriver, RideCancelledAdmin, RideNoDriversFound:
		return true
	}
	return false
}

// PaymentStatus tracks the stubbed payment flow on a ride.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

type Ride struct {
	gorm.Model
	PassengerID uint  `json:"passenger_id" gorm:"not null;index"`
	DriverID    *uint `json:"driver_id" gorm:"index"` // nil until a driver accepts

	PickupLocationID  uint `json:"pickup_location_id" gorm:"not null"`
	DropoffLocationID uint `json:"dropoff_location_id" gorm:"not null"`

	Passenger       User     `json:"-" gorm:"foreignKey:PassengerID"`
	Driver          *User    `json:"-" gorm:"foreignKey:DriverID"`
	PickupLocation  Location `json:"pickup_location" gorm:"foreignKey:PickupLocationID"`
	DropoffLocation Location `json:"dropoff_location" gorm:"foreignKey:DropoffLocationID"`

	Status RideStatus `json:"status" gorm:"type:varchar(50);default:'REQUESTED';not null;index"`

	RequestedAt time.Time  `json:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	EstimatedFare *float64 `json:"estimated_fare"`
	ActualFare    *float64 `json:"actual_fare"` // set once payment is confirmed

	PaymentStatus        PaymentStatus `json:"payment_status" gorm:"type:varchar(50);default:'PENDING'"`
	PaymentMethod        string        `json:"payment_method"`
	PaymentTransactionID string        `json:"payment_transaction_id"`
	PaidAt               *time.Time    `json:"paid_at"`

	VehicleTypeRequested VehicleType `json:"vehicle_type_requested" gorm:"type:varchar(50)"`
	NotesForDriver       string      `json:"notes_for_driver"`
}
