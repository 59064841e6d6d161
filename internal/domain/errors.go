package domain

import "errors"

// Sentinel errors shared by the domain and service layers.
// Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTruckFull           = errors.New("truck is at full capacity")
	ErrTruckOnRoad         = errors.New("truck is on the road")
	ErrTruckNotOnRoad      = errors.New("truck is not on the road")
	ErrOrderNotApproved    = errors.New("order must be approved before loading")
	ErrNoContainers        = errors.New("no staged containers")
	ErrNoRoute             = errors.New("no delivery route for truck")
	ErrRouteNotPlanning    = errors.New("route is not in planning")
	ErrRouteNotInProgress  = errors.New("route is not in progress")
	ErrRouteCompleted      = errors.New("route is completed")
	ErrRouteEmpty          = errors.New("route has no stops")
	ErrStopLocked          = errors.New("cannot reorder current or completed stops")
	ErrStopIndexOutOfRange = errors.New("stop index out of range")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstream            = errors.New("upstream service failed")
	ErrCaseTooSmall        = errors.New("select at least 12 bottles to create a case")
	ErrAlreadyPacked       = errors.New("container is already packed")
)
