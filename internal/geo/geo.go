package geo

import (
	"math"
	"strconv"
	"strings"
)

// Point is a coordinate pair in signed decimal degrees.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (p Point) Valid() bool {
	return finite(p.Lon) && finite(p.Lat)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ParsePair reads a "lon lat" coordinate string, as produced when the user
// shares a location pin instead of a textual address.
func ParsePair(s string) (Point, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Point{}, false
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, false
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, false
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return Point{}, false
	}
	p := Point{Lon: lon, Lat: lat}
	return p, p.Valid()
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometers
// (haversine formula).
func DistanceKm(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
