package models

import (
	"time"

	"gorm.io/gorm"
)

// AvailabilityStatus is the driver's dispatch state.
type AvailabilityStatus string

const (
	DriverAvailable AvailabilityStatus = "AVAILABLE"
	DriverBusy      AvailabilityStatus = "BUSY" // on a ride
	DriverOffline   AvailabilityStatus = "OFFLINE"
)

// Valid reports whether s is one of the recognized availability values.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case DriverAvailable, DriverBusy, DriverOffline:
		return true
	}
	return false
}

type DriverProfile struct {
	gorm.Model
	UserID             uint               `json:"user_id" gorm:"unique;not null;index"` // Foreign key to User
	User               User               `json:"-" gorm:"foreignKey:UserID"`
	LicenseNumber      string             `json:"license_number" gorm:"unique;not null"`
	LicenseExpiryDate  *time.Time         `json:"license_expiry_date"`
	IsVerified         bool               `json:"is_verified" gorm:"default:false"` // flipped only by admins
	VerificationNotes  string             `json:"verification_notes"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status" gorm:"type:varchar(20);default:'OFFLINE';index"`

	// Last reported position; goes stale silently, there is no expiry.
	CurrentLatitude    *float64   `json:"current_latitude"`
	CurrentLongitude   *float64   `json:"current_longitude"`
	LastLocationUpdate *time.Time `json:"last_location_update"`
}
