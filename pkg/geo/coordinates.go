package geo

import (
	"errors"
	"fmt"
	"math"

	"attendance/internal/models"
)

const earthRadiusMeters = 6371008.8

var (
	ErrNotFinite   = errors.New("coordinate is not a finite number")
	ErrOutOfBounds = errors.New("coordinate out of range")
)

// ValidCoordinates checks that lat/lon are finite and inside WGS84 bounds.
func ValidCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return fmt.Errorf("latitude %v: %w", lat, ErrNotFinite)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return fmt.Errorf("longitude %v: %w", lon, ErrNotFinite)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v: %w", lat, ErrOutOfBounds)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v: %w", lon, ErrOutOfBounds)
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b models.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Center returns the point the initial map view is centred on: the first
// location of the dataset.
func Center(points []models.Coordinates) (models.Coordinates, bool) {
	if len(points) == 0 {
		return models.Coordinates{}, false
	}
	return points[0], true
}

// Nearest returns the index of the point closest to target.
func Nearest(points []models.Coordinates, target models.Coordinates) (int, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range points {
		if d := Distance(p, target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}
