package simulation

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/sherine-k/elevsim/pkg/config"
	"github.com/tiendc/go-deepcopy"
)

// Simulator owns one simulation session. It does no locking of its own:
// callers that share a Simulator between goroutines must serialize
// Configure, SubmitRequest, GenerateRandomRequests and Step themselves.
type Simulator struct {
	state        State
	nextID       int
	tick         int
	epoch        time.Time
	tickDuration time.Duration
	rng          *rand.Rand
	log          zerolog.Logger
	events       []Event
	timePoints   []TimePoint
}

// Option customises a Simulator
type Option func(*Simulator)

// WithLogger sets the logger used for simulation diagnostics
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) {
		s.log = log
	}
}

// WithRand sets the random source for start floors and generated requests
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		s.rng = rng
	}
}

// WithEpoch sets the simulated time of tick 0
func WithEpoch(epoch time.Time) Option {
	return func(s *Simulator) {
		s.epoch = epoch
	}
}

// WithTickDuration sets how much simulated time one tick represents
func WithTickDuration(d time.Duration) Option {
	return func(s *Simulator) {
		s.tickDuration = d
	}
}

// NewSimulator creates a new simulator and configures it with cfg
func NewSimulator(cfg config.Configuration, opts ...Option) *Simulator {
	s := &Simulator{
		epoch:        lastMonday(time.Now()),
		tickDuration: time.Second,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.Configure(cfg)
	return s
}

// lastMonday returns midnight of the most recent Monday
func lastMonday(now time.Time) time.Time {
	weekday := now.Weekday()
	var daysBack int
	if weekday == time.Sunday {
		daysBack = 6
	} else {
		daysBack = int(weekday) - 1
	}
	d := now.AddDate(0, 0, -daysBack)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}

// Configure replaces the configuration, rebuilds the fleet and drops every
// request. The simulated clock starts over at tick 0.
func (s *Simulator) Configure(cfg config.Configuration) State {
	s.state = State{
		Configuration: cfg,
		Cars:          make([]*Car, 0, cfg.CarCount),
		Requests:      []*Request{},
	}

	for i := 0; i < cfg.CarCount; i++ {
		floor := 1
		if cfg.RandomStart && cfg.FloorCount > 0 {
			floor = s.rng.Intn(cfg.FloorCount) + 1
		}

		s.state.Cars = append(s.state.Cars, &Car{
			ID:           i + 1,
			Floor:        floor,
			Status:       CarIdle,
			Destinations: []int{},
			Action:       idleAction(floor),
		})
	}

	s.nextID = 1
	s.tick = 0
	s.events = []Event{}
	s.timePoints = []TimePoint{}

	s.addEvent(Event{
		Type:    EventTypeConfigured,
		Message: fmt.Sprintf("Configured %d floors, %d cars", cfg.FloorCount, cfg.CarCount),
	})
	s.log.Info().
		Int("floors", cfg.FloorCount).
		Int("cars", cfg.CarCount).
		Int("travelTime", cfg.TravelTimePerFloor).
		Int("loadingTime", cfg.LoadingTime).
		Bool("randomStart", cfg.RandomStart).
		Msg("simulation configured")

	return s.State()
}

// Reset re-applies the current configuration
func (s *Simulator) Reset() State {
	return s.Configure(s.state.Configuration)
}

// State returns a deep copy of the current simulation state
func (s *Simulator) State() State {
	var snapshot State
	if err := deepcopy.Copy(&snapshot, &s.state); err != nil {
		s.log.Error().Err(err).Msg("failed to copy simulation state")
	}
	return snapshot
}

// SubmitRequest creates a request and dispatches it straight away. Requests
// whose floors are equal are ignored and reported with ok == false.
func (s *Simulator) SubmitRequest(from, to int) (id int, ok bool) {
	if from == to {
		s.addEvent(Event{
			Type:    EventTypeRequestIgnored,
			Floor:   from,
			Message: fmt.Sprintf("Ignored call from floor %d to itself", from),
		})
		s.log.Debug().Int("floor", from).Msg("ignoring request with equal floors")
		return 0, false
	}

	req := &Request{
		ID:          s.nextID,
		From:        from,
		To:          to,
		CreatedTick: s.tick,
		CreatedAt:   s.Now(),
		Status:      RequestWaiting,
	}
	s.nextID++
	s.state.Requests = append(s.state.Requests, req)

	s.addEvent(Event{
		Type:      EventTypeRequestCreated,
		RequestID: req.ID,
		Floor:     from,
		Message:   fmt.Sprintf("Call %d created from floor %d to %d", req.ID, from, to),
	})

	if !s.dispatch(req) {
		s.addEvent(Event{
			Type:      EventTypeRequestWaiting,
			RequestID: req.ID,
			Floor:     from,
			Message:   fmt.Sprintf("Call %d has no eligible elevator and is waiting", req.ID),
			IsWarning: true,
		})
	}

	return req.ID, true
}

// GenerateRandomRequests submits count requests with random distinct floors
func (s *Simulator) GenerateRandomRequests(count int) {
	floors := s.state.Configuration.FloorCount
	if floors < 2 {
		s.log.Warn().Int("floors", floors).Msg("cannot generate requests with fewer than two floors")
		return
	}

	for i := 0; i < count; i++ {
		from := s.rng.Intn(floors) + 1
		to := s.rng.Intn(floors-1) + 1
		if to >= from {
			to++
		}
		s.SubmitRequest(from, to)
	}
}

// dispatch tries to hand a waiting request to a car
func (s *Simulator) dispatch(req *Request) bool {
	car := selectCar(req, s.state.Cars)
	if car == nil {
		return false
	}

	assign(req, car)

	s.addEvent(Event{
		Type:      EventTypeRequestAssigned,
		RequestID: req.ID,
		CarID:     car.ID,
		Floor:     req.From,
		Message:   fmt.Sprintf("Call %d assigned to elevator %d", req.ID, car.ID),
	})
	s.log.Debug().
		Int("request", req.ID).
		Int("car", car.ID).
		Ints("queue", car.Destinations).
		Msg("request assigned")

	return true
}

// Tick returns the number of ticks stepped since the last configuration
func (s *Simulator) Tick() int {
	return s.tick
}

// Now returns the simulated time of the current tick
func (s *Simulator) Now() time.Time {
	return s.epoch.Add(time.Duration(s.tick) * s.tickDuration)
}

// addEvent adds an event to the event list
func (s *Simulator) addEvent(event Event) {
	event.Tick = s.tick
	event.Time = s.Now()
	s.events = append(s.events, event)
}

// GetEvents returns all events
func (s *Simulator) GetEvents() []Event {
	return s.events
}

// GetTimePoints returns one time point per stepped tick
func (s *Simulator) GetTimePoints() []TimePoint {
	return s.timePoints
}

// GetWarnings returns all warning events
func (s *Simulator) GetWarnings() []Event {
	warnings := []Event{}
	for _, event := range s.events {
		if event.IsWarning {
			warnings = append(warnings, event)
		}
	}
	return warnings
}
