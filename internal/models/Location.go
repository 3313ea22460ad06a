package models

import "gorm.io/gorm"

// Location is an immutable point record created once per ride leg.
type Location struct {
	gorm.Model
	Latitude     float64 `json:"latitude" gorm:"not null"`
	Longitude    float64 `json:"longitude" gorm:"not null"`
	AddressLine1 string  `json:"address_line1"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
}
