// Package delivery turns user coordinates and the outlet registry into a
// routing decision.
package delivery

import (
	"errors"
	"strconv"

	"github.com/pizzadrive/orderbot/internal/commerce"
	"github.com/pizzadrive/orderbot/internal/geo"
)

type Tier string

const (
	TierFree       Tier = "FREE"
	TierLowFee     Tier = "LOW_FEE"
	TierHighFee    Tier = "HIGH_FEE"
	TierOutOfRange Tier = "OUT_OF_RANGE"
)

// Delivery surcharges in minor currency units.
const (
	FeeLowMinor  = 10000 // 100 RUB
	FeeHighMinor = 30000 // 300 RUB
)

var (
	ErrNoLocations    = errors.New("no locations given")
	ErrNoneResolvable = errors.New("no resolvable locations")
)

// Decision is derived per order and lives only in session context.
type Decision struct {
	LocationID      string    `json:"location_id"`
	LocationAddress string    `json:"location_address"`
	Location        geo.Point `json:"location"`
	User            geo.Point `json:"user"`
	DistanceKm      float64   `json:"distance_km"`
	Tier            Tier      `json:"tier"`
}

// Fee returns the delivery surcharge for the decision's tier.
func (d Decision) Fee() int {
	switch d.Tier {
	case TierLowFee:
		return FeeLowMinor
	case TierHighFee:
		return FeeHighMinor
	default:
		return 0
	}
}

// Nearest picks the outlet with the minimum great-circle distance to the
// user. Ties keep the first minimal outlet in input order. Outlets with
// missing or non-numeric coordinates are skipped; empty input is a caller
// error and is reported as ErrNoLocations.
func Nearest(user geo.Point, locs []commerce.Location) (Decision, error) {
	if !user.Valid() {
		return Decision{}, errors.New("invalid user coordinates")
	}
	if len(locs) == 0 {
		return Decision{}, ErrNoLocations
	}

	best := Decision{DistanceKm: -1}
	for _, l := range locs {
		p, ok := parsePoint(l)
		if !ok {
			continue
		}
		d := geo.DistanceKm(user, p)
		if best.DistanceKm < 0 || d < best.DistanceKm {
			best = Decision{
				LocationID:      l.ID,
				LocationAddress: l.Address,
				Location:        p,
				User:            user,
				DistanceKm:      d,
			}
		}
	}
	if best.DistanceKm < 0 {
		return Decision{}, ErrNoneResolvable
	}
	best.Tier = tierFor(best.DistanceKm)
	return best, nil
}

func parsePoint(l commerce.Location) (geo.Point, bool) {
	lon, err := strconv.ParseFloat(l.Longitude, 64)
	if err != nil {
		return geo.Point{}, false
	}
	lat, err := strconv.ParseFloat(l.Latitude, 64)
	if err != nil {
		return geo.Point{}, false
	}
	p := geo.Point{Lon: lon, Lat: lat}
	return p, p.Valid()
}

// Boundaries follow the storefront's business rules: 0.5 km still walks
// free, both 5 and 20 land in the high-fee bracket.
func tierFor(d float64) Tier {
	switch {
	case d <= 0.5:
		return TierFree
	case d < 5:
		return TierLowFee
	case d <= 20:
		return TierHighFee
	default:
		return TierOutOfRange
	}
}
