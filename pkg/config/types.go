package config

import (
	"time"
)

// Configuration holds the building parameters for one simulation session
type Configuration struct {
	FloorCount         int  `yaml:"floorCount" json:"numberOfFloors"`
	CarCount           int  `yaml:"carCount" json:"numberOfElevators"`
	TravelTimePerFloor int  `yaml:"travelTimePerFloor" json:"travelTimePerFloor"`
	LoadingTime        int  `yaml:"loadingTime" json:"loadingTime"`
	RandomStart        bool `yaml:"randomStart" json:"randomElevatorStart"`
}

// DefaultConfiguration returns the building used when nothing else is given
func DefaultConfiguration() Configuration {
	return Configuration{
		FloorCount:         10,
		CarCount:           4,
		TravelTimePerFloor: 10,
		LoadingTime:        10,
	}
}

// Scenario represents the entire scenario file for the simulator
type Scenario struct {
	Building     Configuration `yaml:"building"`
	Ticks        int           `yaml:"ticks"`
	TickDuration time.Duration `yaml:"tickDuration"`
	Seed         int64         `yaml:"seed,omitempty"`
	Requests     []Call        `yaml:"requests,omitempty"`
	Traffic      []Traffic     `yaml:"traffic,omitempty"`
}

// Call is a scripted manual request issued before the given tick is stepped
type Call struct {
	Tick int `yaml:"tick"`
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Traffic generates random calls whenever its cron schedule fires on the simulated clock
type Traffic struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"`
	Count    int    `yaml:"count"`
}
