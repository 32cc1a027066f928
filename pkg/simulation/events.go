package simulation

import (
	"time"
)

// EventType defines the type of event in the simulation
type EventType string

const (
	EventTypeConfigured      EventType = "configured"
	EventTypeRequestCreated  EventType = "request-created"
	EventTypeRequestIgnored  EventType = "request-ignored"
	EventTypeRequestAssigned EventType = "request-assigned"
	EventTypeRequestWaiting  EventType = "request-waiting"
	EventTypeBoarding        EventType = "boarding"
	EventTypeAlighting       EventType = "alighting"
	EventTypeCarIdle         EventType = "car-idle"
	EventTypeCarDeparted     EventType = "car-departed"
)

// Event represents a point-in-time event in the simulation
type Event struct {
	Tick      int
	Time      time.Time
	Type      EventType
	RequestID int
	CarID     int
	Floor     int
	Message   string
	IsWarning bool
}

// TimePoint represents the state after a specific tick
type TimePoint struct {
	Tick       int
	Time       time.Time
	Waiting    int
	Assigned   int
	InProgress int
	Completed  int
	MovingCars int
}
