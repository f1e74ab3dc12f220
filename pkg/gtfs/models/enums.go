package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCode is returned when a closed enumeration meets a code it does not define.
var ErrUnknownCode = errors.New("unknown code")

// LocationType is the location_type column of stops.txt.
type LocationType int

const (
	LocationStopPoint    LocationType = 0
	LocationStopArea     LocationType = 1
	LocationEntranceExit LocationType = 2
	LocationGenericNode  LocationType = 3
	LocationBoardingArea LocationType = 4

	// LocationStation is the name GTFS uses for code 1.
	LocationStation = LocationStopArea
)

// ParseLocationType maps an empty field to LocationStopPoint.
func ParseLocationType(s string) (LocationType, error) {
	switch strings.TrimSpace(s) {
	case "", "0":
		return LocationStopPoint, nil
	case "1":
		return LocationStopArea, nil
	case "2":
		return LocationEntranceExit, nil
	case "3":
		return LocationGenericNode, nil
	case "4":
		return LocationBoardingArea, nil
	}
	return 0, fmt.Errorf("location_type %q: %w", s, ErrUnknownCode)
}

func (t LocationType) String() string {
	switch t {
	case LocationStopPoint:
		return "StopPoint"
	case LocationStopArea:
		return "StopArea"
	case LocationEntranceExit:
		return "EntranceExit"
	case LocationGenericNode:
		return "GenericNode"
	case LocationBoardingArea:
		return "BoardingArea"
	}
	return "LocationType(" + strconv.Itoa(int(t)) + ")"
}

// RouteType is the route_type column of routes.txt. Codes without a named
// constant are kept as-is; Known reports whether a code is one of the basic types.
type RouteType int

const (
	RouteTram       RouteType = 0
	RouteSubway     RouteType = 1
	RouteRail       RouteType = 2
	RouteBus        RouteType = 3
	RouteFerry      RouteType = 4
	RouteCableCar   RouteType = 5
	RouteGondola    RouteType = 6
	RouteFunicular  RouteType = 7
	RouteTrolleybus RouteType = 11
	RouteMonorail   RouteType = 12
)

var routeTypeNames = map[RouteType]string{
	RouteTram:       "Tram",
	RouteSubway:     "Subway",
	RouteRail:       "Rail",
	RouteBus:        "Bus",
	RouteFerry:      "Ferry",
	RouteCableCar:   "CableCar",
	RouteGondola:    "Gondola",
	RouteFunicular:  "Funicular",
	RouteTrolleybus: "Trolleybus",
	RouteMonorail:   "Monorail",
}

// ParseRouteType only fails on text that is not an integer.
func ParseRouteType(s string) (RouteType, error) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("route_type %q: %w", s, err)
	}
	return RouteType(code), nil
}

func (t RouteType) Known() bool {
	_, ok := routeTypeNames[t]
	return ok
}

// Code returns the numeric route_type, for known and unknown types alike.
func (t RouteType) Code() int {
	return int(t)
}

func (t RouteType) String() string {
	if name, ok := routeTypeNames[t]; ok {
		return name
	}
	return "Other(" + strconv.Itoa(int(t)) + ")"
}

// PickupDropOffType is the pickup_type / drop_off_type column of stop_times.txt.
type PickupDropOffType int

const (
	PickupDropOffRegular              PickupDropOffType = 0
	PickupDropOffNotAvailable         PickupDropOffType = 1
	PickupDropOffArrangeByPhone       PickupDropOffType = 2
	PickupDropOffCoordinateWithDriver PickupDropOffType = 3
)

// ParsePickupDropOffType returns nil for an empty field: "unspecified" is not "regular".
func ParsePickupDropOffType(s string) (*PickupDropOffType, error) {
	var t PickupDropOffType
	switch strings.TrimSpace(s) {
	case "":
		return nil, nil
	case "0":
		t = PickupDropOffRegular
	case "1":
		t = PickupDropOffNotAvailable
	case "2":
		t = PickupDropOffArrangeByPhone
	case "3":
		t = PickupDropOffCoordinateWithDriver
	default:
		return nil, fmt.Errorf("pickup/drop-off type %q: %w", s, ErrUnknownCode)
	}
	return &t, nil
}

func (t PickupDropOffType) String() string {
	switch t {
	case PickupDropOffRegular:
		return "Regular"
	case PickupDropOffNotAvailable:
		return "NotAvailable"
	case PickupDropOffArrangeByPhone:
		return "ArrangeByPhone"
	case PickupDropOffCoordinateWithDriver:
		return "CoordinateWithDriver"
	}
	return "PickupDropOffType(" + strconv.Itoa(int(t)) + ")"
}

// ExceptionType is the exception_type column of calendar_dates.txt.
type ExceptionType int

const (
	ExceptionAdded   ExceptionType = 1
	ExceptionRemoved ExceptionType = 2
)

func ParseExceptionType(s string) (ExceptionType, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return ExceptionAdded, nil
	case "2":
		return ExceptionRemoved, nil
	}
	return 0, fmt.Errorf("exception_type %q: %w", s, ErrUnknownCode)
}

func (t ExceptionType) String() string {
	switch t {
	case ExceptionAdded:
		return "Added"
	case ExceptionRemoved:
		return "Removed"
	}
	return "ExceptionType(" + strconv.Itoa(int(t)) + ")"
}

// PaymentMethod is the payment_method column of fare_attributes.txt.
type PaymentMethod int

const (
	PaymentAboard     PaymentMethod = 0
	PaymentPaidBefore PaymentMethod = 1
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return PaymentAboard, nil
	case "1":
		return PaymentPaidBefore, nil
	}
	return 0, fmt.Errorf("payment_method %q: %w", s, ErrUnknownCode)
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentAboard:
		return "Aboard"
	case PaymentPaidBefore:
		return "PaidBefore"
	}
	return "PaymentMethod(" + strconv.Itoa(int(m)) + ")"
}

// Transfers is the transfers column of fare_attributes.txt. An empty field
// means unlimited transfers.
type Transfers int

const (
	TransfersNone      Transfers = 0
	TransfersOnce      Transfers = 1
	TransfersTwice     Transfers = 2
	TransfersUnlimited Transfers = -1
)

func ParseTransfers(s string) (Transfers, error) {
	switch strings.TrimSpace(s) {
	case "":
		return TransfersUnlimited, nil
	case "0":
		return TransfersNone, nil
	case "1":
		return TransfersOnce, nil
	case "2":
		return TransfersTwice, nil
	}
	return 0, fmt.Errorf("transfers %q: %w", s, ErrUnknownCode)
}

func (t Transfers) String() string {
	switch t {
	case TransfersNone:
		return "None"
	case TransfersOnce:
		return "Once"
	case TransfersTwice:
		return "Twice"
	case TransfersUnlimited:
		return "Unlimited"
	}
	return "Transfers(" + strconv.Itoa(int(t)) + ")"
}
