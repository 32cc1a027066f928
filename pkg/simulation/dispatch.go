package simulation

// selectCar picks the cheapest eligible car for a waiting request. Ties go to
// the car that comes first in fleet order. It does not modify anything.
func selectCar(req *Request, cars []*Car) *Car {
	up := req.GoingUp()

	var best *Car
	bestCost := 0
	for _, car := range cars {
		if !eligible(car, req.From, up) {
			continue
		}
		c := cost(car, req.From, up)
		if best == nil || c < bestCost {
			best = car
			bestCost = c
		}
	}
	return best
}

// assign records the request on the car: pickup then drop-off floor are
// appended to the destination queue, which is then deduplicated as a whole.
func assign(req *Request, car *Car) {
	car.Destinations = appendDistinct(car.Destinations, req.From, req.To)
	req.Status = RequestAssigned
	req.AssignedCar = car.ID
}

func eligible(car *Car, floor int, up bool) bool {
	switch car.Status {
	case CarIdle:
		return true
	case CarMoving:
		return onTheWay(car, floor, up)
	}
	return false
}

// onTheWay reports whether a moving car heading in direction up will pass
// floor before reaching its nearest pending stop in that direction.
func onTheWay(car *Car, floor int, up bool) bool {
	if len(car.Destinations) == 0 {
		return false
	}

	headUp := car.Destinations[0] > car.Floor
	if headUp != up {
		return false
	}

	next, ok := nearestStop(car, headUp)
	if !ok {
		return false
	}

	if up {
		return floor >= car.Floor && floor <= next
	}
	return floor <= car.Floor && floor >= next
}

// nearestStop returns the queued floor closest to the car on the up (or down)
// side of it, the car's own floor included.
func nearestStop(car *Car, up bool) (int, bool) {
	found := false
	nearest := 0
	for _, floor := range car.Destinations {
		if up && floor < car.Floor || !up && floor > car.Floor {
			continue
		}
		if !found || abs(floor-car.Floor) < abs(nearest-car.Floor) {
			nearest = floor
			found = true
		}
	}
	return nearest, found
}

func cost(car *Car, floor int, up bool) int {
	if car.Status == CarIdle || len(car.Destinations) == 0 {
		return abs(car.Floor - floor)
	}

	carUp := car.Destinations[0] > car.Floor
	if carUp == up {
		if up && floor >= car.Floor {
			return floor - car.Floor
		}
		if !up && floor <= car.Floor {
			return car.Floor - floor
		}
	}

	last := car.Destinations[len(car.Destinations)-1]
	return abs(last-car.Floor) + abs(floor-last)
}
