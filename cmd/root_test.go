package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"
	"github.com/sherine-k/elevsim/pkg/chart"
	"github.com/sherine-k/elevsim/pkg/config"
	"github.com/sherine-k/elevsim/pkg/scenario"
	"github.com/sherine-k/elevsim/pkg/simulation"
	"gopkg.in/yaml.v3"
)

func testScenario() *config.Scenario {
	return &config.Scenario{
		Building:     config.Configuration{FloorCount: 5, CarCount: 2, TravelTimePerFloor: 1, LoadingTime: 2},
		Ticks:        3,
		TickDuration: time.Second,
		Seed:         11,
		Requests:     []config.Call{{Tick: 0, From: 1, To: 4}},
	}
}

func TestWriteResultJSON(t *testing.T) {
	sc := testScenario()
	sim := newSimulator(sc, zerolog.Nop())
	sim.SubmitRequest(2, 5)

	outputFormat = "json"
	defer func() { outputFormat = "text" }()

	var buf bytes.Buffer
	if err := writeResult(&buf, sim, sc); err != nil {
		t.Fatalf("writeResult failed: %v", err)
	}

	var decoded struct {
		Elevators []struct {
			ID     int    `json:"id"`
			Status string `json:"status"`
		} `json:"elevators"`
		Calls []struct {
			CallID int    `json:"callId"`
			Status string `json:"status"`
		} `json:"calls"`
		Configuration struct {
			NumberOfFloors int `json:"numberOfFloors"`
		} `json:"configuration"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if len(decoded.Elevators) != 2 || decoded.Elevators[0].Status != "Idle" {
		t.Errorf("Unexpected elevators %+v", decoded.Elevators)
	}
	if len(decoded.Calls) != 1 || decoded.Calls[0].Status != "Assigned" {
		t.Errorf("Unexpected calls %+v", decoded.Calls)
	}
	if decoded.Configuration.NumberOfFloors != 5 {
		t.Errorf("Expected 5 floors, got %d", decoded.Configuration.NumberOfFloors)
	}
}

func TestWriteResultYAML(t *testing.T) {
	sc := testScenario()
	sim := newSimulator(sc, zerolog.Nop())

	outputFormat = "yaml"
	defer func() { outputFormat = "text" }()

	var buf bytes.Buffer
	if err := writeResult(&buf, sim, sc); err != nil {
		t.Fatalf("writeResult failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	for _, key := range []string{"configuration", "elevators", "calls"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in YAML output", key)
		}
	}
}

func TestWriteResultText(t *testing.T) {
	sc := testScenario()
	sim := newSimulator(sc, zerolog.Nop())
	sim.SubmitRequest(1, 3)
	sim.Step()

	var buf bytes.Buffer
	if err := writeResult(&buf, sim, sc); err != nil {
		t.Fatalf("writeResult failed: %v", err)
	}

	for _, want := range []string{"Building", "Passengers Over Time", "Warnings"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expected text output to contain %q", want)
		}
	}
}

func TestSessionHandleKey(t *testing.T) {
	sc := testScenario()
	sim := simulation.NewSimulator(sc.Building, simulation.WithRand(rand.New(rand.NewSource(3))))
	runner, err := scenario.NewRunner(sc, sim, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	var buf bytes.Buffer
	s := &session{sc: sc, sim: sim, runner: runner, chart: chart.NewGenerator(), out: &buf}

	if s.handleKey(0, keyboard.KeySpace) {
		t.Fatalf("Expected space not to quit")
	}
	if sim.Tick() != 1 {
		t.Errorf("Expected one tick, got %d", sim.Tick())
	}
	if n := len(sim.State().Requests); n != 1 {
		t.Errorf("Expected the scripted call on the first tick, got %d requests", n)
	}

	s.handleKey('n', 0)
	if sim.Tick() != 11 {
		t.Errorf("Expected 11 ticks, got %d", sim.Tick())
	}

	s.handleKey('g', 0)
	if n := len(sim.State().Requests); n != 6 {
		t.Errorf("Expected 6 requests, got %d", n)
	}

	s.handleKey('x', 0)
	if sim.Tick() != 0 || len(sim.State().Requests) != 0 {
		t.Errorf("Expected reset simulation, got tick %d with %d requests", sim.Tick(), len(sim.State().Requests))
	}

	if !s.handleKey('q', 0) {
		t.Errorf("Expected q to quit")
	}
	if !s.handleKey(0, keyboard.KeyCtrlC) {
		t.Errorf("Expected Ctrl-C to quit")
	}
	if !strings.Contains(buf.String(), "Tick 11") {
		t.Errorf("Expected rendered tick counter in output")
	}
}

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	sc := testScenario()
	sim := simulation.NewSimulator(sc.Building, simulation.WithRand(rand.New(rand.NewSource(3))))
	runner, err := scenario.NewRunner(sc, sim, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	var buf bytes.Buffer
	return &session{sc: sc, sim: sim, runner: runner, chart: chart.NewGenerator(), out: &buf}, &buf
}

func TestSessionManualCall(t *testing.T) {
	s, buf := newTestSession(t)

	keys := []struct {
		char rune
		key  keyboard.Key
	}{
		{'c', 0}, {'2', 0}, {0, keyboard.KeySpace}, {'5', 0}, {0, keyboard.KeyEnter},
	}
	for _, k := range keys {
		if s.handleKey(k.char, k.key) {
			t.Fatalf("Expected %q/%d not to quit", k.char, k.key)
		}
	}

	state := s.sim.State()
	if len(state.Requests) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(state.Requests))
	}
	if req := state.Requests[0]; req.From != 2 || req.To != 5 || req.Status != simulation.RequestAssigned {
		t.Errorf("Expected assigned call 2 -> 5, got %+v", req)
	}
	if s.calling {
		t.Errorf("Expected call entry to end on Enter")
	}
	if s.sim.Tick() != 0 {
		t.Errorf("Expected a manual call not to step, got tick %d", s.sim.Tick())
	}

	// q is not a quit key while typing, Esc cancels the entry
	s.handleKey('c', 0)
	if s.handleKey('q', 0) {
		t.Errorf("Expected q to be ignored during call entry")
	}
	if s.handleKey(0, keyboard.KeyEsc) || s.calling {
		t.Errorf("Expected Esc to cancel the entry without quitting")
	}
	if !strings.Contains(buf.String(), "call cancelled") {
		t.Errorf("Expected cancel message in output")
	}
}

func TestSessionManualCallRejected(t *testing.T) {
	cases := map[string][]rune{
		"out of range": {'1', ',', '9'},
		"same floor":   {'3', ',', '3'},
		"one floor":    {'4'},
	}

	for name, typed := range cases {
		t.Run(name, func(t *testing.T) {
			s, buf := newTestSession(t)
			s.handleKey('c', 0)
			for _, char := range typed {
				s.handleKey(char, 0)
			}
			s.handleKey(0, keyboard.KeyEnter)

			if n := len(s.sim.State().Requests); n != 0 {
				t.Errorf("Expected no request, got %d", n)
			}
			if !strings.Contains(buf.String(), "call rejected") {
				t.Errorf("Expected rejection message, got %q", buf.String())
			}
		})
	}
}

func TestSessionManualCallBackspace(t *testing.T) {
	s, _ := newTestSession(t)
	for _, char := range []rune{'c', '1', ',', '4', '4'} {
		s.handleKey(char, 0)
	}
	s.handleKey(0, keyboard.KeyBackspace2)
	s.handleKey(0, keyboard.KeyEnter)

	state := s.sim.State()
	if len(state.Requests) != 1 || state.Requests[0].To != 4 {
		t.Errorf("Expected call 1 -> 4 after backspace, got %+v", state.Requests)
	}
}

func TestSessionLoopStopsOnCancel(t *testing.T) {
	s, _ := newTestSession(t)
	keys := make(chan keyboard.KeyEvent)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.loop(ctx, keys) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean stop on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("loop did not return after cancel without a key press")
	}
}

func TestSessionLoopKeyEvents(t *testing.T) {
	readErr := errors.New("tty gone")

	cases := map[string]struct {
		events  []keyboard.KeyEvent
		closed  bool
		wantErr error
		ticks   int
	}{
		"quit key": {
			events: []keyboard.KeyEvent{{Rune: 's'}, {Key: keyboard.KeySpace}, {Rune: 'q'}},
			ticks:  2,
		},
		"read error": {
			events:  []keyboard.KeyEvent{{Rune: 's'}, {Err: readErr}},
			wantErr: readErr,
			ticks:   1,
		},
		"closed channel": {
			events: []keyboard.KeyEvent{{Rune: 's'}},
			closed: true,
			ticks:  1,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestSession(t)
			keys := make(chan keyboard.KeyEvent, len(tc.events))
			for _, ev := range tc.events {
				keys <- ev
			}
			if tc.closed {
				close(keys)
			}

			err := s.loop(context.Background(), keys)
			if tc.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
			if s.sim.Tick() != tc.ticks {
				t.Errorf("Expected %d ticks, got %d", tc.ticks, s.sim.Tick())
			}
		})
	}
}
