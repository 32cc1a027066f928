package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/eiannone/keyboard"
	"github.com/sherine-k/elevsim/pkg/chart"
	"github.com/sherine-k/elevsim/pkg/config"
	"github.com/sherine-k/elevsim/pkg/logger"
	"github.com/sherine-k/elevsim/pkg/scenario"
	"github.com/sherine-k/elevsim/pkg/simulation"
	"github.com/spf13/cobra"
)

const (
	interactiveHelp = `Keys: [space]/s step, n step 10, c call, r random call, g 5 random calls, x reset, q quit`
	callHelp        = `Call from,to: type two floors and press Enter, Esc cancels`
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Step the simulation from the keyboard",
	Long: `Runs the scenario one tick per key press. Scripted calls and traffic rules
from the scenario fire as their ticks come up, and c takes a manual call
typed as "from,to". Without a scenario file the default building is used.`,
	RunE: runInteractive,
}

// session ties the key bindings to one simulator
type session struct {
	sc     *config.Scenario
	sim    *simulation.Simulator
	runner *scenario.Runner
	chart  *chart.Generator
	out    io.Writer

	// calling is set while a manual call is being typed into entry
	calling bool
	entry   string
}

func runInteractive(cmd *cobra.Command, args []string) error {
	log := *logger.GetLogger()

	sc, err := loadScenario(cmd)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		sc, err = config.ParseScenario(nil)
	}
	if err != nil {
		return err
	}

	sim := newSimulator(sc, log)
	runner, err := scenario.NewRunner(sc, sim, log)
	if err != nil {
		return fmt.Errorf("failed to prepare scenario: %w", err)
	}

	s := &session{
		sc:     sc,
		sim:    sim,
		runner: runner,
		chart:  chart.NewGenerator(),
		out:    cmd.OutOrStdout(),
	}

	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer keyboard.Close()

	s.render()
	return s.loop(cmd.Context(), keys)
}

// loop feeds key events to the session until a quit key, a read error, or
// ctx is done
func (s *session) loop(ctx context.Context, keys <-chan keyboard.KeyEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return fmt.Errorf("failed to read key: %w", ev.Err)
			}
			if s.handleKey(ev.Rune, ev.Key) {
				return nil
			}
		}
	}
}

// handleKey applies one key press and reports whether the session should end
func (s *session) handleKey(char rune, key keyboard.Key) bool {
	if s.calling {
		return s.handleCallKey(char, key)
	}

	switch {
	case key == keyboard.KeyCtrlC || key == keyboard.KeyEsc || char == 'q':
		return true
	case key == keyboard.KeySpace || char == ' ' || char == 's':
		s.runner.Advance()
	case char == 'n':
		for i := 0; i < 10; i++ {
			s.runner.Advance()
		}
	case char == 'c':
		s.calling = true
		s.entry = ""
		fmt.Fprintln(s.out, callHelp)
		return false
	case char == 'r':
		s.sim.GenerateRandomRequests(1)
	case char == 'g':
		s.sim.GenerateRandomRequests(5)
	case char == 'x':
		s.sim.Reset()
		runner, err := scenario.NewRunner(s.sc, s.sim, *logger.GetLogger())
		if err != nil {
			fmt.Fprintf(s.out, "failed to restart scenario: %v\n", err)
			return true
		}
		s.runner = runner
	default:
		fmt.Fprintln(s.out, interactiveHelp)
		return false
	}

	s.render()
	return false
}

// handleCallKey edits the manual call entry. Only Ctrl-C ends the session
// from here.
func (s *session) handleCallKey(char rune, key keyboard.Key) bool {
	switch {
	case key == keyboard.KeyCtrlC:
		return true
	case key == keyboard.KeyEsc:
		s.calling = false
		fmt.Fprintln(s.out, "call cancelled")
		return false
	case key == keyboard.KeyEnter:
		s.calling = false
		if err := s.submitCall(s.entry); err != nil {
			fmt.Fprintf(s.out, "call rejected: %v\n", err)
			return false
		}
		s.render()
		return false
	case key == keyboard.KeyBackspace || key == keyboard.KeyBackspace2:
		if s.entry != "" {
			s.entry = s.entry[:len(s.entry)-1]
		}
	case key == keyboard.KeySpace || char == ' ' || char == ',':
		s.entry += ","
	case char >= '0' && char <= '9':
		s.entry += string(char)
	default:
		return false
	}

	fmt.Fprintf(s.out, "\rcall: %s", s.entry)
	return false
}

// submitCall parses "from,to" and submits it to the simulator
func (s *session) submitCall(entry string) error {
	fields := strings.FieldsFunc(entry, func(r rune) bool { return r == ',' })
	if len(fields) != 2 {
		return fmt.Errorf("expected two floors, got %q", entry)
	}

	floors := s.sim.State().Configuration.FloorCount
	var parsed [2]int
	for i, field := range fields {
		floor, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("invalid floor %q: %w", field, err)
		}
		if floor < 1 || floor > floors {
			return fmt.Errorf("floor %d outside [1, %d]", floor, floors)
		}
		parsed[i] = floor
	}

	if _, ok := s.sim.SubmitRequest(parsed[0], parsed[1]); !ok {
		return fmt.Errorf("floors %d and %d are the same", parsed[0], parsed[1])
	}
	return nil
}

func (s *session) render() {
	fmt.Fprintf(s.out, "\nTick %d  (%s)\n", s.sim.Tick(), s.sim.Now().Format("15:04:05"))
	fmt.Fprint(s.out, s.chart.GenerateBuildingView(s.sim.State()))
	fmt.Fprintln(s.out, interactiveHelp)
}
