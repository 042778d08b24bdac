package grids

import (
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// TripType classifies the service being priced.
type TripType string

const (
	TripTransfer  TripType = "TRANSFER"
	TripExcursion TripType = "EXCURSION"
	TripDispo     TripType = "DISPO"
	TripStay      TripType = "STAY"
)

// AddressMatchRadiusKm is the proximity within which a request point matches
// a route's configured address (100 m).
const AddressMatchRadiusKm = 0.1

// EndpointType discriminates how a route endpoint is expressed.
type EndpointType string

const (
	EndpointAddress EndpointType = "ADDRESS"
	EndpointZones   EndpointType = "ZONES"
)

// Direction restricts which way a zone route may be driven.
type Direction string

const (
	DirectionAToB          Direction = "A_TO_B"
	DirectionBToA          Direction = "B_TO_A"
	DirectionBidirectional Direction = "BIDIRECTIONAL"
)

// RouteEndpoint is one end of a zone route: a precise address or a zone set.
type RouteEndpoint struct {
	Type    EndpointType `json:"type"`
	Address *geo.Point   `json:"address,omitempty"`
	ZoneIDs []uuid.UUID  `json:"zone_ids,omitempty"`
}

// ZoneRoute is a fixed-price catalog entry between two endpoints. Legacy
// single-zone pairs are kept as a fallback for contracts created before
// typed endpoints existed.
type ZoneRoute struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	Origin      *RouteEndpoint `json:"origin,omitempty"`
	Destination *RouteEndpoint `json:"destination,omitempty"`

	LegacyFromZoneID *uuid.UUID `json:"legacy_from_zone_id,omitempty"`
	LegacyToZoneID   *uuid.UUID `json:"legacy_to_zone_id,omitempty"`

	VehicleCategoryID uuid.UUID `json:"vehicle_category_id"`
	FixedPrice        float64   `json:"fixed_price"`
	Direction         Direction `json:"direction"`
	IsActive          bool      `json:"is_active"`
}

// ExcursionPackage is a fixed-price round-trip catalog entry.
type ExcursionPackage struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	OriginZoneID      *uuid.UUID `json:"origin_zone_id,omitempty"`
	DestinationZoneID *uuid.UUID `json:"destination_zone_id,omitempty"`
	VehicleCategoryID uuid.UUID  `json:"vehicle_category_id"`
	Price             float64    `json:"price"`
	IsActive          bool       `json:"is_active"`
}

// DispoPackage prices hourly mise a disposition. BasePrice is per hour;
// kilometres beyond IncludedKmPerHour multiplied by the booked hours are
// billed at OverageRatePerKm.
type DispoPackage struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	VehicleCategoryID uuid.UUID `json:"vehicle_category_id"`
	BasePrice         float64   `json:"base_price"`
	IncludedKmPerHour float64   `json:"included_km_per_hour"`
	OverageRatePerKm  float64   `json:"overage_rate_per_km"`
	IsActive          bool      `json:"is_active"`
}

// Assignments bind catalog entries to a partner contract, optionally with a
// negotiated price replacing the catalog one.
type RouteAssignment struct {
	Route         ZoneRoute `json:"route"`
	OverridePrice *float64  `json:"override_price,omitempty"`
}

type ExcursionAssignment struct {
	Package       ExcursionPackage `json:"package"`
	OverridePrice *float64         `json:"override_price,omitempty"`
}

type DispoAssignment struct {
	Package       DispoPackage `json:"package"`
	OverridePrice *float64     `json:"override_price,omitempty"`
}

// RejectionReason explains why a catalog entry did not match a request.
type RejectionReason string

const (
	RejectInactive          RejectionReason = "INACTIVE"
	RejectCategoryMismatch  RejectionReason = "CATEGORY_MISMATCH"
	RejectZoneMismatch      RejectionReason = "ZONE_MISMATCH"
	RejectDirectionMismatch RejectionReason = "DIRECTION_MISMATCH"
)

// CheckedEntry records one considered-and-rejected catalog entry.
type CheckedEntry struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Reason RejectionReason `json:"reason"`
}

// SearchDetails aggregates everything the matcher looked at, for the
// result's audit payload.
type SearchDetails struct {
	RoutesChecked     []CheckedEntry `json:"routes_checked,omitempty"`
	ExcursionsChecked []CheckedEntry `json:"excursions_checked,omitempty"`
	DisposChecked     []CheckedEntry `json:"dispos_checked,omitempty"`
}

// MatchKind says which catalog produced a grid match.
type MatchKind string

const (
	MatchRoute     MatchKind = "ZONE_ROUTE"
	MatchExcursion MatchKind = "EXCURSION_PACKAGE"
	MatchDispo     MatchKind = "DISPO_PACKAGE"
)

// Match is a successful grid hit.
type Match struct {
	Kind           MatchKind `json:"kind"`
	EntryID        uuid.UUID `json:"entry_id"`
	EntryName      string    `json:"entry_name"`
	CatalogPrice   float64   `json:"catalog_price"`
	EffectivePrice float64   `json:"effective_price"`
	IsOverride     bool      `json:"is_override"`
	Reversed       bool      `json:"reversed,omitempty"`
}

// Request carries what the matcher needs to evaluate a contract.
type Request struct {
	Pickup  geo.Point
	Dropoff geo.Point

	// Zone ids containing each endpoint, every match not just the winner.
	PickupZoneIDs  []uuid.UUID
	DropoffZoneIDs []uuid.UUID

	VehicleCategoryID uuid.UUID
	TripType          TripType

	// Dispo parameters.
	DurationHours float64
	DistanceKm    float64
}
