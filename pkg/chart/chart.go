package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/sherine-k/elevsim/pkg/simulation"
)

const (
	chartWidth  = 80
	chartHeight = 20
)

// Generator generates ASCII charts
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width:  chartWidth,
		height: chartHeight,
	}
}

func (g *Generator) header(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")
}

// GenerateBuildingView draws every floor top-down with the cars standing on it
func (g *Generator) GenerateBuildingView(state simulation.State) string {
	var sb strings.Builder

	g.header(&sb, "Building")

	floors := state.Configuration.FloorCount
	for floor := floors; floor >= 1; floor-- {
		sb.WriteString(fmt.Sprintf("%3d |", floor))
		for _, car := range state.Cars {
			if car.Floor == floor {
				sb.WriteString(fmt.Sprintf(" [%s%d]", statusGlyph(car.Status), car.ID))
			} else {
				sb.WriteString("  .  ")
			}
		}

		waiting := 0
		for _, req := range state.Requests {
			if req.From == floor && req.Status == simulation.RequestWaiting {
				waiting++
			}
		}
		if waiting > 0 {
			sb.WriteString(fmt.Sprintf("   %d waiting", waiting))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for _, car := range state.Cars {
		sb.WriteString(fmt.Sprintf("  Elevator %d: floor %d, %s, %d aboard, queue %v",
			car.ID, car.Floor, car.Status, car.Passengers, car.Destinations))
		if car.Remaining > 0 {
			sb.WriteString(fmt.Sprintf(", %d ticks left", car.Remaining))
		}
		if car.Action != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", car.Action))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString("Legend: I - Idle, M - Moving, L - Loading, U - Unloading\n")

	return sb.String()
}

func statusGlyph(status simulation.CarStatus) string {
	switch status {
	case simulation.CarMoving:
		return "M"
	case simulation.CarLoading:
		return "L"
	case simulation.CarUnloading:
		return "U"
	}
	return "I"
}

// GenerateRequestChart generates an ASCII chart of waiting and riding
// passengers over time
func (g *Generator) GenerateRequestChart(timePoints []simulation.TimePoint) string {
	if len(timePoints) == 0 {
		return "No data to display"
	}

	var sb strings.Builder

	g.header(&sb, "Passengers Over Time")

	maxTotal := 0
	for _, tp := range timePoints {
		if total := tp.Waiting + tp.Assigned + tp.InProgress; total > maxTotal {
			maxTotal = total
		}
	}

	rows := maxTotal
	if rows > g.height {
		rows = g.height
	}
	plotWidth := g.width - 6

	// Build the chart from top to bottom, scaling when there are more
	// passengers than rows
	for row := rows; row >= 1; row-- {
		threshold := row
		if maxTotal > g.height {
			threshold = (row*maxTotal + g.height - 1) / g.height
		}
		sb.WriteString(fmt.Sprintf("%3d |", threshold))

		for x := 0; x < len(timePoints) && x < plotWidth; x++ {
			pointIndex := x
			if len(timePoints) > plotWidth {
				pointIndex = int(float64(x) / float64(plotWidth-1) * float64(len(timePoints)-1))
			}
			tp := timePoints[pointIndex]

			switch {
			case tp.InProgress >= threshold:
				sb.WriteString("█")
			case tp.InProgress+tp.Assigned >= threshold:
				sb.WriteString("+")
			case tp.InProgress+tp.Assigned+tp.Waiting >= threshold:
				sb.WriteString("*")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	// X-axis
	sb.WriteString("    +")
	sb.WriteString(strings.Repeat("-", plotWidth))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("     tick %d .. %d\n", timePoints[0].Tick, timePoints[len(timePoints)-1].Tick))

	// Legend
	sb.WriteString("\n")
	sb.WriteString("Legend:\n")
	sb.WriteString("    █ - Riding (in progress)\n")
	sb.WriteString("    + - Assigned, waiting for pickup\n")
	sb.WriteString("    * - Waiting for an elevator\n")
	sb.WriteString("\n")

	return sb.String()
}

// GenerateEventSummary generates a summary of events
func (g *Generator) GenerateEventSummary(events []simulation.Event, elapsed time.Duration) string {
	var sb strings.Builder

	g.header(&sb, "Event Summary")

	// Group events by type
	eventsByType := make(map[simulation.EventType]int)
	for _, event := range events {
		eventsByType[event.Type]++
	}

	sb.WriteString(fmt.Sprintf("Simulated Time: %s\n", FormatDuration(elapsed)))
	sb.WriteString(fmt.Sprintf("Total Events: %d\n", len(events)))
	sb.WriteString(fmt.Sprintf("  - Calls Created: %d\n", eventsByType[simulation.EventTypeRequestCreated]))
	sb.WriteString(fmt.Sprintf("  - Calls Ignored: %d\n", eventsByType[simulation.EventTypeRequestIgnored]))
	sb.WriteString(fmt.Sprintf("  - Calls Assigned: %d\n", eventsByType[simulation.EventTypeRequestAssigned]))
	sb.WriteString(fmt.Sprintf("  - Calls Waiting: %d\n", eventsByType[simulation.EventTypeRequestWaiting]))
	sb.WriteString(fmt.Sprintf("  - Boardings: %d\n", eventsByType[simulation.EventTypeBoarding]))
	sb.WriteString(fmt.Sprintf("  - Alightings: %d\n", eventsByType[simulation.EventTypeAlighting]))
	sb.WriteString(fmt.Sprintf("  - Departures: %d\n", eventsByType[simulation.EventTypeCarDeparted]))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateWarnings generates a list of warnings
func (g *Generator) GenerateWarnings(warnings []simulation.Event) string {
	var sb strings.Builder

	g.header(&sb, "Warnings")

	if len(warnings) == 0 {
		sb.WriteString("No warnings!\n")
		return sb.String()
	}

	for _, warning := range warnings {
		timestamp := warning.Time.Format("2006-01-02 15:04:05")
		sb.WriteString(fmt.Sprintf("[%s] tick %d: %s\n", timestamp, warning.Tick, warning.Message))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total Warnings: %d\n", len(warnings)))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateDetailedTimeline generates a detailed timeline of events
func (g *Generator) GenerateDetailedTimeline(events []simulation.Event, limit int) string {
	var sb strings.Builder

	title := "Detailed Timeline"
	if limit > 0 && limit < len(events) {
		title += fmt.Sprintf(" (showing first %d events)", limit)
	}
	g.header(&sb, title)

	displayCount := len(events)
	if limit > 0 && limit < displayCount {
		displayCount = limit
	}

	for i := 0; i < displayCount; i++ {
		event := events[i]
		timestamp := event.Time.Format("15:04:05")

		typeIcon := " "
		switch event.Type {
		case simulation.EventTypeRequestCreated:
			typeIcon = "C"
		case simulation.EventTypeRequestAssigned:
			typeIcon = "A"
		case simulation.EventTypeRequestWaiting:
			typeIcon = "W"
		case simulation.EventTypeRequestIgnored:
			typeIcon = "x"
		case simulation.EventTypeBoarding:
			typeIcon = "+"
		case simulation.EventTypeAlighting:
			typeIcon = "-"
		case simulation.EventTypeCarDeparted:
			typeIcon = ">"
		case simulation.EventTypeCarIdle:
			typeIcon = "."
		case simulation.EventTypeConfigured:
			typeIcon = "#"
		}

		sb.WriteString(fmt.Sprintf("[%s] %s [%4d] %s\n",
			timestamp,
			typeIcon,
			event.Tick,
			event.Message))
	}

	if limit > 0 && limit < len(events) {
		sb.WriteString(fmt.Sprintf("\n... and %d more events\n", len(events)-limit))
	}

	sb.WriteString("\n")

	return sb.String()
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
