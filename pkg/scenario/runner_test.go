package scenario

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sherine-k/elevsim/pkg/config"
	"github.com/sherine-k/elevsim/pkg/simulation"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newSimulator(sc *config.Scenario) *simulation.Simulator {
	return simulation.NewSimulator(sc.Building,
		simulation.WithRand(rand.New(rand.NewSource(7))),
		simulation.WithEpoch(monday),
		simulation.WithTickDuration(sc.TickDuration),
	)
}

func TestRunnerScriptedCalls(t *testing.T) {
	sc := &config.Scenario{
		Building:     config.Configuration{FloorCount: 6, CarCount: 2, TravelTimePerFloor: 1, LoadingTime: 2},
		Ticks:        40,
		TickDuration: time.Second,
		Requests: []config.Call{
			{Tick: 5, From: 6, To: 1},
			{Tick: 0, From: 1, To: 4},
			{Tick: 5, From: 3, To: 3},
		},
	}
	sim := newSimulator(sc)

	runner, err := NewRunner(sc, sim, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	state := sim.State()
	if len(state.Requests) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(state.Requests))
	}
	if state.Requests[0].From != 1 || state.Requests[0].CreatedTick != 0 {
		t.Errorf("Expected first request from floor 1 at tick 0, got %+v", state.Requests[0])
	}
	if state.Requests[1].From != 6 || state.Requests[1].CreatedTick != 5 {
		t.Errorf("Expected second request from floor 6 at tick 5, got %+v", state.Requests[1])
	}
	for _, req := range state.Requests {
		if req.Status != simulation.RequestCompleted {
			t.Errorf("Request %d: expected Completed after %d ticks, got %s", req.ID, sc.Ticks, req.Status)
		}
	}
	if sim.Tick() != sc.Ticks {
		t.Errorf("Expected %d ticks, got %d", sc.Ticks, sim.Tick())
	}
}

func TestRunnerCronTraffic(t *testing.T) {
	sc := &config.Scenario{
		Building:     config.Configuration{FloorCount: 8, CarCount: 2, TravelTimePerFloor: 1, LoadingTime: 1},
		Ticks:        4,
		TickDuration: 30 * time.Second,
		Traffic: []config.Traffic{
			{Name: "every-minute", Schedule: "* * * * *", Count: 2},
			{Name: "hourly", Schedule: "0 * * * *", Count: 1},
			{Name: "at-noon", Schedule: "0 12 * * *", Count: 5},
		},
	}
	sim := newSimulator(sc)

	runner, err := NewRunner(sc, sim, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// ticks at 0s, 30s, 60s, 90s
	fired := runner.Fired()
	if fired["every-minute"] != 2 {
		t.Errorf("Expected every-minute to fire twice, got %d", fired["every-minute"])
	}
	if fired["hourly"] != 1 {
		t.Errorf("Expected hourly to fire once, got %d", fired["hourly"])
	}
	if fired["at-noon"] != 0 {
		t.Errorf("Expected at-noon not to fire, got %d", fired["at-noon"])
	}
	if n := len(sim.State().Requests); n != 5 {
		t.Errorf("Expected 5 generated requests, got %d", n)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	sc := &config.Scenario{
		Building:     config.DefaultConfiguration(),
		Ticks:        10,
		TickDuration: time.Second,
	}
	sim := newSimulator(sc)
	runner, err := NewRunner(sc, sim, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if sim.Tick() != 0 {
		t.Errorf("Expected no ticks after cancel, got %d", sim.Tick())
	}
}

func TestRunnerSkipsScheduleThatNeverFires(t *testing.T) {
	sc := &config.Scenario{
		Building:     config.Configuration{FloorCount: 5, CarCount: 1, TravelTimePerFloor: 1, LoadingTime: 1},
		Ticks:        3,
		TickDuration: time.Minute,
		Traffic: []config.Traffic{
			{Name: "february-30", Schedule: "0 0 30 2 *", Count: 1},
			{Name: "every-minute", Schedule: "* * * * *", Count: 1},
		},
	}
	sim := newSimulator(sc)

	runner, err := NewRunner(sc, sim, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- runner.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return for a schedule without matches")
	}

	fired := runner.Fired()
	if fired["february-30"] != 0 {
		t.Errorf("Expected february-30 never to fire, got %d", fired["february-30"])
	}
	if fired["every-minute"] != 3 {
		t.Errorf("Expected every-minute to fire on each of 3 ticks, got %d", fired["every-minute"])
	}
	if n := len(sim.State().Requests); n != 3 {
		t.Errorf("Expected 3 generated requests, got %d", n)
	}
}
