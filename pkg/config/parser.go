package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Environment keys that override the building section
const (
	EnvFloors      = "ELEVSIM_FLOORS"
	EnvCars        = "ELEVSIM_CARS"
	EnvTravelTime  = "ELEVSIM_TRAVEL_TIME"
	EnvLoadingTime = "ELEVSIM_LOADING_TIME"
	EnvRandomStart = "ELEVSIM_RANDOM_START"
)

const defaultTicks = 200

// CronParser is the parser used for traffic schedules
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// LoadScenario loads and parses the scenario file
func LoadScenario(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario parses scenario YAML, fills defaults and validates the result
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Building: DefaultConfiguration()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	if scenario.Ticks == 0 {
		scenario.Ticks = defaultTicks
	}
	if scenario.TickDuration == 0 {
		scenario.TickDuration = time.Second
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ApplyEnvFile overrides building values with the keys found in a .env file.
// A missing file is ignored unless required is set.
func ApplyEnvFile(filename string, cfg *Configuration, required bool) error {
	env, err := godotenv.Read(filename)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read env file: %w", err)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvFloors, &cfg.FloorCount},
		{EnvCars, &cfg.CarCount},
		{EnvTravelTime, &cfg.TravelTimePerFloor},
		{EnvLoadingTime, &cfg.LoadingTime},
	}
	for _, item := range ints {
		raw, ok := env[item.key]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", item.key, err)
		}
		*item.dst = v
	}

	if raw, ok := env[EnvRandomStart]; ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRandomStart, err)
		}
		cfg.RandomStart = v
	}

	return ValidateConfiguration(*cfg)
}

// ValidateConfiguration validates the building parameters
func ValidateConfiguration(cfg Configuration) error {
	if cfg.FloorCount < 1 {
		return fmt.Errorf("floorCount must be at least 1")
	}

	if cfg.CarCount < 1 {
		return fmt.Errorf("carCount must be at least 1")
	}

	if cfg.TravelTimePerFloor < 1 {
		return fmt.Errorf("travelTimePerFloor must be at least 1")
	}

	if cfg.LoadingTime < 1 {
		return fmt.Errorf("loadingTime must be at least 1")
	}

	return nil
}

// validateScenario validates the scenario
func validateScenario(scenario *Scenario) error {
	if err := ValidateConfiguration(scenario.Building); err != nil {
		return fmt.Errorf("building: %w", err)
	}

	if scenario.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative")
	}

	if scenario.TickDuration < 0 {
		return fmt.Errorf("tickDuration must not be negative")
	}

	floors := scenario.Building.FloorCount
	for i, call := range scenario.Requests {
		if call.Tick < 0 {
			return fmt.Errorf("request %d: tick must not be negative", i)
		}
		if call.From < 1 || call.From > floors {
			return fmt.Errorf("request %d: from floor %d outside [1, %d]", i, call.From, floors)
		}
		if call.To < 1 || call.To > floors {
			return fmt.Errorf("request %d: to floor %d outside [1, %d]", i, call.To, floors)
		}
	}

	for i, traffic := range scenario.Traffic {
		if traffic.Name == "" {
			return fmt.Errorf("traffic %d: name is required", i)
		}

		if traffic.Count <= 0 {
			return fmt.Errorf("traffic %s: count must be greater than 0", traffic.Name)
		}

		schedule, err := CronParser.Parse(traffic.Schedule)
		if err != nil {
			return fmt.Errorf("traffic %s: invalid schedule: %w", traffic.Name, err)
		}
		if schedule.Next(time.Now()).IsZero() {
			return fmt.Errorf("traffic %s: schedule %q never fires", traffic.Name, traffic.Schedule)
		}
	}

	return nil
}
