package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Email        string  `json:"email" gorm:"unique;not null;index"`
	PasswordHash string  `json:"-" gorm:"not null"`
	FullName     string  `json:"full_name"`
	PhoneNumber  *string `json:"phone_number" gorm:"unique"` // pointer so an absent phone stays NULL, not ""
	IsDriver     bool    `json:"is_driver" gorm:"default:false;index"`
	IsAdmin      bool    `json:"is_admin" gorm:"default:false;index"`

	// Actor-specific relations
	DriverProfile *DriverProfile `json:"driver_profile,omitempty" gorm:"foreignKey:UserID"`
	Vehicles      []Vehicle      `json:"vehicles,omitempty" gorm:"foreignKey:DriverID"`
}
