// Package capacity derives utilization and availability from an engineer's
// allocation data.
package capacity

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
)

var ErrDivisionUndefined = errors.New("capacity: max capacity must be greater than zero")

const (
	AvailableNow    = "Today"
	UnknownDate     = "—"
	DateLayout      = "Jan 2, 2006"
	MaxDisplayValue = 100
)

// ComputeUtilization returns round(total/max*100) without clamping.
func ComputeUtilization(total, max float64) (int, error) {
	if max <= 0 || math.IsNaN(max) {
		return 0, ErrDivisionUndefined
	}
	return int(math.Round(total / max * 100)), nil
}

// UtilizationOrZero is ComputeUtilization with the zero fallback applied.
func UtilizationOrZero(total, max float64) int {
	pct, err := ComputeUtilization(total, max)
	if err != nil {
		return 0
	}
	return pct
}

// Clamp bounds pct to [0, 100] for rendering.
func Clamp(pct int) int {
	switch {
	case pct < 0:
		return 0
	case pct > MaxDisplayValue:
		return MaxDisplayValue
	default:
		return pct
	}
}

// Utilization keeps the raw figure next to the display figure so overallocation
// stays visible to callers that need it.
type Utilization struct {
	Raw           int  `json:"raw"`
	Display       int  `json:"display"`
	Overallocated bool `json:"overallocated"`
	Defined       bool `json:"defined"`
}

func Measure(total, max float64) Utilization {
	raw, err := ComputeUtilization(total, max)
	if err != nil {
		return Utilization{}
	}
	return Utilization{
		Raw:           raw,
		Display:       Clamp(raw),
		Overallocated: raw > MaxDisplayValue,
		Defined:       true,
	}
}

// AvailabilityText renders "Today" below full utilization, otherwise the next
// available date or a placeholder when it is unknown.
func AvailabilityText(pct int, next *time.Time) string {
	if pct < MaxDisplayValue {
		return AvailableNow
	}
	if next == nil || next.IsZero() {
		return UnknownDate
	}
	return next.Format(DateLayout)
}

// Snapshot is an engineer's capacity as fetched, plus the derived utilization.
type Snapshot struct {
	EngineerID        string      `json:"engineerId"`
	TotalAllocated    float64     `json:"totalAllocated"`
	AvailableCapacity float64     `json:"availableCapacity"`
	MaxCapacity       float64     `json:"maxCapacity"`
	Utilization       Utilization `json:"utilization"`
}

// NewSnapshot combines a capacity answer with the engineer's ceiling. The
// backend value wins when it sends one.
func NewSnapshot(engineerID string, c engineer.Capacity, fallbackMax float64) Snapshot {
	max := c.MaxCapacity
	if max <= 0 {
		max = fallbackMax
	}
	total := c.TotalAllocated
	if total < 0 {
		total = 0
	}
	return Snapshot{
		EngineerID:        engineerID,
		TotalAllocated:    total,
		AvailableCapacity: c.AvailableCapacity,
		MaxCapacity:       max,
		Utilization:       Measure(total, max),
	}
}

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

func LevelFor(display int) Level {
	switch {
	case display > 80:
		return LevelHigh
	case display > 50:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Bar is what a capacity bar needs: a width in [0,100], a label and a colour band.
type Bar struct {
	Width int    `json:"width"`
	Label string `json:"label"`
	Level Level  `json:"level"`
}

func NewBar(allocated, max float64) Bar {
	width := Clamp(UtilizationOrZero(allocated, max))
	return Bar{
		Width: width,
		Label: fmt.Sprintf("%s/%s", trim(allocated), trim(max)),
		Level: LevelFor(width),
	}
}

func trim(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
