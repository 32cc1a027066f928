package simulation

import (
	"fmt"
)

// Step advances the simulation by one tick: every car is advanced in fleet
// order, then every waiting request is offered to the fleet again.
func (s *Simulator) Step() {
	for _, car := range s.state.Cars {
		s.advanceCar(car)
	}

	s.retryWaiting()

	s.tick++
	s.recordTimePoint()
}

func (s *Simulator) advanceCar(car *Car) {
	if car.Remaining > 0 {
		car.Remaining--
		return
	}

	active := s.state.activeFor(car.ID)

	if len(car.Destinations) == 0 {
		if len(active) == 0 {
			s.becomeIdle(car)
			return
		}
		car.Destinations = queueFromRequests(active)
	}

	next := car.Destinations[0]
	if car.Floor != next {
		s.moveToward(car, next)
		return
	}

	s.serveFloor(car, active)
}

func (s *Simulator) becomeIdle(car *Car) {
	if car.Status != CarIdle {
		s.addEvent(Event{
			Type:    EventTypeCarIdle,
			CarID:   car.ID,
			Floor:   car.Floor,
			Message: fmt.Sprintf("Elevator %d idle at floor %d", car.ID, car.Floor),
		})
	}
	car.Status = CarIdle
	car.Phase = PhaseNone
	car.Action = idleAction(car.Floor)
}

// moveToward starts a one-floor trip. The floor changes now; the travel
// timer is counted down on the following ticks.
func (s *Simulator) moveToward(car *Car, target int) {
	if car.Status != CarMoving {
		s.addEvent(Event{
			Type:    EventTypeCarDeparted,
			CarID:   car.ID,
			Floor:   car.Floor,
			Message: fmt.Sprintf("Elevator %d departing floor %d for floor %d", car.ID, car.Floor, target),
		})
	}

	car.Status = CarMoving
	car.Phase = PhaseNone
	car.Action = fmt.Sprintf("Moving to floor %d", target)
	car.Remaining = s.state.Configuration.TravelTimePerFloor
	if car.Floor < target {
		car.Floor++
	} else {
		car.Floor--
	}

	s.log.Debug().Int("car", car.ID).Int("floor", car.Floor).Int("target", target).Msg("car moving")
}

// serveFloor handles a car standing at the head of its queue. The head is
// only popped once nothing is left to load or unload there.
func (s *Simulator) serveFloor(car *Car, active []*Request) {
	var loading, unloading []*Request
	for _, req := range active {
		if req.Status == RequestAssigned && req.From == car.Floor {
			loading = append(loading, req)
		}
		if req.Status == RequestInProgress && req.To == car.Floor {
			unloading = append(unloading, req)
		}
	}

	full := s.state.Configuration.LoadingTime
	half := full / 2

	if len(unloading) > 0 && len(loading) > 0 {
		switch car.Phase {
		case PhaseNone:
			s.alight(car, unloading)
			s.dwell(car, CarUnloading, PhaseUnloadHalf, "Unloading passengers (1/2)", half)
			return
		case PhaseUnloadHalf:
			s.board(car, loading)
			s.dwell(car, CarLoading, PhaseLoadHalf, "Loading passengers (2/2)", half)
			return
		}
	}

	if len(loading) > 0 {
		s.board(car, loading)
		if car.Phase == PhaseUnloadHalf {
			s.dwell(car, CarLoading, PhaseLoadHalf, "Loading passengers (2/2)", half)
		} else {
			s.dwell(car, CarLoading, PhaseNone, "Loading passengers", full)
		}
		return
	}

	if len(unloading) > 0 {
		s.alight(car, unloading)
		s.dwell(car, CarUnloading, PhaseNone, "Unloading passengers", full)
		return
	}

	car.Destinations = car.Destinations[1:]
}

func (s *Simulator) dwell(car *Car, status CarStatus, phase DwellPhase, action string, ticks int) {
	car.Status = status
	car.Phase = phase
	car.Action = action
	car.Remaining = ticks
}

func (s *Simulator) board(car *Car, requests []*Request) {
	for _, req := range requests {
		req.Status = RequestInProgress
		car.Passengers++
		s.addEvent(Event{
			Type:      EventTypeBoarding,
			RequestID: req.ID,
			CarID:     car.ID,
			Floor:     car.Floor,
			Message:   fmt.Sprintf("Call %d boarded elevator %d at floor %d", req.ID, car.ID, car.Floor),
		})
	}
}

func (s *Simulator) alight(car *Car, requests []*Request) {
	for _, req := range requests {
		req.Status = RequestCompleted
		if car.Passengers > 0 {
			car.Passengers--
		}
		s.addEvent(Event{
			Type:      EventTypeAlighting,
			RequestID: req.ID,
			CarID:     car.ID,
			Floor:     car.Floor,
			Message:   fmt.Sprintf("Call %d left elevator %d at floor %d", req.ID, car.ID, car.Floor),
		})
	}
}

// retryWaiting offers every waiting request to the fleet in id order
func (s *Simulator) retryWaiting() {
	for _, req := range s.state.Requests {
		if req.Status == RequestWaiting {
			s.dispatch(req)
		}
	}
}

func (s *Simulator) recordTimePoint() {
	tp := TimePoint{
		Tick: s.tick,
		Time: s.Now(),
	}
	for _, req := range s.state.Requests {
		switch req.Status {
		case RequestWaiting:
			tp.Waiting++
		case RequestAssigned:
			tp.Assigned++
		case RequestInProgress:
			tp.InProgress++
		case RequestCompleted:
			tp.Completed++
		}
	}
	for _, car := range s.state.Cars {
		if car.Status == CarMoving {
			tp.MovingCars++
		}
	}
	s.timePoints = append(s.timePoints, tp)
}

func idleAction(floor int) string {
	return fmt.Sprintf("Idle at floor %d", floor)
}
