package scenario

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/sherine-k/elevsim/pkg/config"
	"github.com/sherine-k/elevsim/pkg/simulation"
)

// Runner steps a Simulator through a scenario, issuing scripted calls and
// cron-scheduled random traffic against the simulated clock
type Runner struct {
	scenario *config.Scenario
	sim      *simulation.Simulator
	calls    []config.Call
	traffic  []*trafficRule
	log      zerolog.Logger
}

type trafficRule struct {
	traffic  config.Traffic
	schedule cron.Schedule
	next     time.Time
	fired    int
}

// NewRunner prepares a runner for the scenario. The simulator must already be
// configured with the scenario's building.
func NewRunner(sc *config.Scenario, sim *simulation.Simulator, log zerolog.Logger) (*Runner, error) {
	calls := append([]config.Call(nil), sc.Requests...)
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Tick < calls[j].Tick
	})

	r := &Runner{
		scenario: sc,
		sim:      sim,
		calls:    calls,
		log:      log,
	}

	// Next is strictly after its argument, so back off a second to let a
	// schedule fire on the first tick.
	start := sim.Now().Add(-time.Second)
	for _, traffic := range sc.Traffic {
		schedule, err := config.CronParser.Parse(traffic.Schedule)
		if err != nil {
			return nil, fmt.Errorf("traffic %s: %w", traffic.Name, err)
		}
		next := schedule.Next(start)
		if next.IsZero() {
			log.Warn().
				Str("traffic", traffic.Name).
				Str("schedule", traffic.Schedule).
				Msg("traffic schedule never fires, skipping")
		}
		r.traffic = append(r.traffic, &trafficRule{
			traffic:  traffic,
			schedule: schedule,
			next:     next,
		})
	}

	return r, nil
}

// Run steps the scenario's tick count, stopping early if ctx is done
func (r *Runner) Run(ctx context.Context) error {
	for r.sim.Tick() < r.scenario.Ticks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stopped at tick %d: %w", r.sim.Tick(), err)
		}
		r.Advance()
	}

	r.log.Info().Int("ticks", r.sim.Tick()).Msg("scenario finished")
	return nil
}

// Advance issues everything due at the current tick and then steps once
func (r *Runner) Advance() {
	tick := r.sim.Tick()

	for len(r.calls) > 0 && r.calls[0].Tick <= tick {
		call := r.calls[0]
		r.calls = r.calls[1:]
		if _, ok := r.sim.SubmitRequest(call.From, call.To); !ok {
			r.log.Debug().Int("tick", tick).Int("floor", call.From).Msg("scripted call ignored")
		}
	}

	now := r.sim.Now()
	for _, rule := range r.traffic {
		// a zero next time means the schedule has no further matches
		for !rule.next.IsZero() && !rule.next.After(now) {
			r.log.Debug().
				Str("traffic", rule.traffic.Name).
				Int("count", rule.traffic.Count).
				Time("at", rule.next).
				Msg("traffic fired")
			r.sim.GenerateRandomRequests(rule.traffic.Count)
			rule.fired++
			rule.next = rule.schedule.Next(rule.next)
		}
	}

	r.sim.Step()
}

// Fired returns how often each traffic rule has fired, by name
func (r *Runner) Fired() map[string]int {
	fired := make(map[string]int, len(r.traffic))
	for _, rule := range r.traffic {
		fired[rule.traffic.Name] += rule.fired
	}
	return fired
}
