package models

import "gorm.io/gorm"

// VehicleType is the fixed set of vehicle classes a driver can register.
type VehicleType string

const (
	VehicleSedan      VehicleType = "SEDAN"
	VehicleSUV        VehicleType = "SUV"
	VehicleHatchback  VehicleType = "HATCHBACK"
	VehicleMinivan    VehicleType = "MINIVAN"
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
)

// VehicleTypes lists all recognized vehicle classes (used in validation messages).
var VehicleTypes = []VehicleType{VehicleSedan, VehicleSUV, VehicleHatchback, VehicleMinivan, VehicleMotorcycle}

func (t VehicleType) Valid() bool {
	for _, v := range VehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Vehicle struct {
	gorm.Model
	DriverID     uint        `json:"driver_id" gorm:"not null;index"` // link to the driver user
	Make         string      `json:"make" gorm:"not null"`
	VehicleModel string      `json:"model" gorm:"column:model;not null"`
	Year         *int        `json:"year"`
	Color        string      `json:"color"`
	LicensePlate string      `json:"license_plate" gorm:"unique;not null;index"`
	VehicleType  VehicleType `json:"vehicle_type" gorm:"type:varchar(20);not null"`
	IsActive     bool        `json:"is_active" gorm:"default:true"` // driver can mark a vehicle as inactive
}
