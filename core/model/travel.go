package model

import "time"

// TravelMode is the means of transport between two locations.
type TravelMode string

const (
	ModeDrive   TravelMode = "drive"
	ModeWalk    TravelMode = "walk"
	ModeTransit TravelMode = "transit"
)

// BuildingType describes the destination and drives the fixed overhead of
// arriving there.
type BuildingType string

const (
	BuildingCourthouse BuildingType = "courthouse"
	BuildingOffice     BuildingType = "office"
	BuildingRemote     BuildingType = "remote"
)

// ParkingQuality grades how hard parking is at a location.
type ParkingQuality string

const (
	ParkingGood    ParkingQuality = "good"
	ParkingLimited ParkingQuality = "limited"
	ParkingScarce  ParkingQuality = "scarce"
)

// Location is a place events happen at, with the metadata the travel
// estimator derives arrival overhead from.
type Location struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Lat              float64        `json:"lat"`
	Lon              float64        `json:"lon"`
	Building         BuildingType   `json:"building"`
	Parking          ParkingQuality `json:"parking"`
	ScreeningMinutes int            `json:"screening_minutes"`
}

// TravelResult is an itemized transit estimate between two locations.
type TravelResult struct {
	OriginID      string     `json:"origin_id"`
	DestinationID string     `json:"destination_id"`
	Mode          TravelMode `json:"mode"`
	DistanceKm    float64    `json:"distance_km"`

	// BaseMinutes is raw transit time including the buffer percentage.
	BaseMinutes float64 `json:"base_minutes"`
	// Overhead terms derived from destination metadata.
	TrafficMinutes  float64 `json:"traffic_minutes"`
	ParkingMinutes  float64 `json:"parking_minutes"`
	SecurityMinutes float64 `json:"security_minutes"`
	WalkingMinutes  float64 `json:"walking_minutes"`
	PrepMinutes     float64 `json:"prep_minutes"`

	// Confidence is in [0,1]. Fallback marks estimates produced by the
	// conservative last-resort provider.
	Confidence float64   `json:"confidence"`
	Fallback   bool      `json:"fallback"`
	Provider   string    `json:"provider"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TotalMinutes returns the full door-to-seat travel time.
func (r TravelResult) TotalMinutes() float64 {
	return r.BaseMinutes + r.TrafficMinutes + r.ParkingMinutes +
		r.SecurityMinutes + r.WalkingMinutes + r.PrepMinutes
}
