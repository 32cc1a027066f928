package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/sherine-k/elevsim/pkg/chart"
	"github.com/sherine-k/elevsim/pkg/config"
	"github.com/sherine-k/elevsim/pkg/logger"
	"github.com/sherine-k/elevsim/pkg/scenario"
	"github.com/sherine-k/elevsim/pkg/simulation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configFile       string
	envFile          string
	logLevel         string
	outputFormat     string
	showTimeline     bool
	timelineLimit    int
	showEventSummary bool
)

var rootCmd = &cobra.Command{
	Use:   "elevsim",
	Short: "Multi-elevator building simulator",
	Long: `A CLI tool that simulates a fleet of elevator cars serving passenger calls.

This tool reads a scenario file describing the building, scripted calls and
cron-scheduled random traffic, steps the simulation tick by tick and prints
the final building state along with a chart of passengers over time.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runSimulation,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "scenario.yaml", "Path to scenario file")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to env file with building overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, disabled)")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, json, yaml)")
	rootCmd.Flags().BoolVarP(&showTimeline, "timeline", "t", false, "Show detailed timeline of events")
	rootCmd.Flags().IntVarP(&timelineLimit, "timeline-limit", "l", 50, "Limit number of timeline events to display")
	rootCmd.Flags().BoolVarP(&showEventSummary, "summary", "s", true, "Show event summary")

	rootCmd.AddCommand(interactiveCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.GetLoggerConfigured(level)
	return nil
}

// loadScenario reads the scenario file and applies env overrides. The env
// file is only required when the flag was given explicitly.
func loadScenario(cmd *cobra.Command) (*config.Scenario, error) {
	sc, err := config.LoadScenario(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	required := cmd.Flags().Changed("env-file")
	if err := config.ApplyEnvFile(envFile, &sc.Building, required); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return sc, nil
}

func newSimulator(sc *config.Scenario, log zerolog.Logger) *simulation.Simulator {
	opts := []simulation.Option{
		simulation.WithLogger(log),
		simulation.WithTickDuration(sc.TickDuration),
	}
	if sc.Seed != 0 {
		opts = append(opts, simulation.WithRand(rand.New(rand.NewSource(sc.Seed))))
	}
	return simulation.NewSimulator(sc.Building, opts...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := *logger.GetLogger()

	switch outputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}

	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "text" {
		fmt.Fprintf(out, "Loaded scenario from %s\n", configFile)
		fmt.Fprintf(out, "  - Floors: %d\n", sc.Building.FloorCount)
		fmt.Fprintf(out, "  - Elevators: %d\n", sc.Building.CarCount)
		fmt.Fprintf(out, "  - Travel Time Per Floor: %d ticks\n", sc.Building.TravelTimePerFloor)
		fmt.Fprintf(out, "  - Loading Time: %d ticks\n", sc.Building.LoadingTime)
		fmt.Fprintf(out, "  - Ticks: %d of %s\n", sc.Ticks, sc.TickDuration)
		fmt.Fprintf(out, "  - Scripted Calls: %d\n", len(sc.Requests))
		fmt.Fprintf(out, "  - Traffic Rules: %d\n\n", len(sc.Traffic))
	}

	// Create and run simulator
	sim := newSimulator(sc, log)
	runner, err := scenario.NewRunner(sc, sim, log)
	if err != nil {
		return fmt.Errorf("failed to prepare scenario: %w", err)
	}
	if err := runner.Run(cmd.Context()); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	return writeResult(out, sim, sc)
}

func writeResult(out io.Writer, sim *simulation.Simulator, sc *config.Scenario) error {
	state := sim.State()

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		return nil
	}

	chartGen := chart.NewGenerator()
	events := sim.GetEvents()

	fmt.Fprintln(out, chartGen.GenerateBuildingView(state))
	fmt.Fprintln(out, chartGen.GenerateRequestChart(sim.GetTimePoints()))

	if showEventSummary {
		elapsed := time.Duration(sim.Tick()) * sc.TickDuration
		fmt.Fprintln(out, chartGen.GenerateEventSummary(events, elapsed))
	}

	fmt.Fprintln(out, chartGen.GenerateWarnings(sim.GetWarnings()))

	if showTimeline {
		fmt.Fprintln(out, chartGen.GenerateDetailedTimeline(events, timelineLimit))
	}

	return nil
}
