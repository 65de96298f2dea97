// Package scheduler provides the activity-scheduling stages of the household pipeline.
package scheduler

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tasha-sim/tasha-sim/sim/pipeline"
)

// validSchedulers maps accepted scheduler names.
// Empty string and "none" disable the stage.
var validSchedulers = map[string]bool{
	"":       true,
	"none":   true,
	"tasha1": true,
}

// IsValidScheduler returns true if name is a recognized scheduler.
func IsValidScheduler(name string) bool { return validSchedulers[name] }

// ValidSchedulerNames returns sorted non-empty scheduler names.
func ValidSchedulerNames() []string {
	names := make([]string, 0, len(validSchedulers))
	for name := range validSchedulers {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// New creates a scheduler stage by name. Returns nil for "" and "none", which the
// pipeline treats as pass-through.
// Panics on unrecognized names.
func New(name string) pipeline.Stage {
	if !IsValidScheduler(name) {
		panic(fmt.Sprintf("unknown scheduler %q", name))
	}
	switch name {
	case "", "none":
		return nil
	case "tasha1":
		return Tasha1{}
	default:
		panic(fmt.Sprintf("unhandled scheduler %q", name))
	}
}

// Tasha1 is the first-generation TASHA activity scheduler.
// It currently leaves trip times as observed in the survey; a scheduling algorithm
// plugs in here by mutating Trip.StartTime and Trip.ActivityStartTime per household.
type Tasha1 struct{}

// Name implements pipeline.Stage.
func (Tasha1) Name() string { return "tasha1-scheduler" }

// Apply implements pipeline.Stage.
func (t Tasha1) Apply(upstream pipeline.Stream) pipeline.Stream {
	return pipeline.PerEntity(t.Name(), func(e pipeline.Entity) error {
		logrus.Debugf("[%s] household %d: %d trips kept as observed",
			t.Name(), e.Household.ID(), e.Household.NumberOfTrips())
		return nil
	}).Apply(upstream)
}
