// Package fare contains the pure trip-pricing helpers: great-circle distance,
// fare estimation and ETA prediction. No I/O, no state.
package fare

import (
	"math"

	"cabgo/internal/models"
)

const earthRadiusKm = 6371.0

// Default pricing parameters, applied unless a caller overrides them.
const (
	DefaultBaseFare        = 50.0
	DefaultRatePerKm       = 15.0
	DefaultSurgeMultiplier = 1.0
	DefaultAvgSpeedKmh     = 30.0
)

// Distance returns the haversine great-circle distance in kilometres between
// two points given in decimal degrees. Total over all finite inputs.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := degToRad(lat1)
	rLat2 := degToRad(lat2)
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Params carries the tunable pricing knobs for a fare estimate.
type Params struct {
	BaseFare        float64
	RatePerKm       float64
	SurgeMultiplier float64
}

// DefaultParams returns the standard pricing parameters.
func DefaultParams() Params {
	return Params{
		BaseFare:        DefaultBaseFare,
		RatePerKm:       DefaultRatePerKm,
		SurgeMultiplier: DefaultSurgeMultiplier,
	}
}

// Estimate prices a trip of distanceKm for the requested vehicle type.
// SUVs pay a 20% higher per-km rate on a 10% higher base; hatchbacks get a 10%
// per-km discount. The surged base fare acts as a floor on the result.
func Estimate(distanceKm float64, vehicleType models.VehicleType, p Params) float64 {
	base := p.BaseFare
	rate := p.RatePerKm

	switch vehicleType {
	case models.VehicleSUV:
		rate *= 1.2
		base *= 1.1
	case models.VehicleHatchback:
		rate *= 0.9
	}

	estimated := (base + distanceKm*rate) * p.SurgeMultiplier
	minTotal := base * p.SurgeMultiplier
	return math.Max(estimated, minTotal)
}

// ETA predicts trip duration in minutes at the given average speed.
// A non-positive speed yields +Inf rather than an error.
func ETA(distanceKm, averageSpeedKmh float64) float64 {
	if averageSpeedKmh <= 0 {
		return math.Inf(1)
	}
	return distanceKm / averageSpeedKmh * 60
}
