package simulation

import (
	"time"

	"github.com/sherine-k/elevsim/pkg/config"
)

// CarStatus is what a car is doing during the current tick
type CarStatus int

const (
	CarIdle CarStatus = iota + 1
	CarMoving
	CarLoading
	CarUnloading
)

func (s CarStatus) String() string {
	switch s {
	case CarIdle:
		return "Idle"
	case CarMoving:
		return "Moving"
	case CarLoading:
		return "Loading"
	case CarUnloading:
		return "Unloading"
	}
	return "Unknown"
}

// MarshalText renders the status by name in JSON and YAML dumps
func (s CarStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RequestStatus is the lifecycle of a request. It only ever moves forward.
type RequestStatus int

const (
	RequestWaiting RequestStatus = iota + 1
	RequestAssigned
	RequestInProgress
	RequestCompleted
)

func (s RequestStatus) String() string {
	switch s {
	case RequestWaiting:
		return "Waiting"
	case RequestAssigned:
		return "Assigned"
	case RequestInProgress:
		return "InProgress"
	case RequestCompleted:
		return "Completed"
	}
	return "Unknown"
}

// MarshalText renders the status by name in JSON and YAML dumps
func (s RequestStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DwellPhase tracks a dwell that both unloads and loads at one floor
type DwellPhase int

const (
	PhaseNone DwellPhase = iota
	PhaseUnloadHalf
	PhaseLoadHalf
)

func (p DwellPhase) String() string {
	switch p {
	case PhaseUnloadHalf:
		return "unload-half"
	case PhaseLoadHalf:
		return "load-half"
	}
	return "none"
}

// MarshalText renders the phase by name in JSON and YAML dumps
func (p DwellPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Car is one elevator car of the fleet
type Car struct {
	ID           int        `json:"id" yaml:"id"`
	Floor        int        `json:"currentFloor" yaml:"currentFloor"`
	Status       CarStatus  `json:"status" yaml:"status"`
	Destinations []int      `json:"destinationFloors" yaml:"destinationFloors"`
	Passengers   int        `json:"currentPassengerCount" yaml:"currentPassengerCount"`
	Remaining    int        `json:"timeRemaining,omitempty" yaml:"timeRemaining,omitempty"`
	Action       string     `json:"currentAction,omitempty" yaml:"currentAction,omitempty"`
	Phase        DwellPhase `json:"dwellPhase" yaml:"dwellPhase"`
}

// Request is a passenger call from one floor to another
type Request struct {
	ID          int           `json:"callId" yaml:"callId"`
	From        int           `json:"fromFloor" yaml:"fromFloor"`
	To          int           `json:"toFloor" yaml:"toFloor"`
	CreatedTick int           `json:"callTick" yaml:"callTick"`
	CreatedAt   time.Time     `json:"callTime" yaml:"callTime"`
	Status      RequestStatus `json:"status" yaml:"status"`
	AssignedCar int           `json:"assignedElevator,omitempty" yaml:"assignedElevator,omitempty"`
}

// GoingUp reports whether the request travels upwards
func (r *Request) GoingUp() bool {
	return r.To > r.From
}

// State is the whole simulation aggregate: configuration, fleet and request history
type State struct {
	Configuration config.Configuration `json:"configuration" yaml:"configuration"`
	Cars          []*Car               `json:"elevators" yaml:"elevators"`
	Requests      []*Request           `json:"calls" yaml:"calls"`
}

// Request returns the request with the given id, or nil
func (s State) Request(id int) *Request {
	for _, req := range s.Requests {
		if req.ID == id {
			return req
		}
	}
	return nil
}

// activeFor returns the non-completed requests assigned to the car, in id order
func (s State) activeFor(carID int) []*Request {
	var active []*Request
	for _, req := range s.Requests {
		if req.AssignedCar == carID && req.Status != RequestCompleted {
			active = append(active, req)
		}
	}
	return active
}
