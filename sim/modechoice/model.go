// Package modechoice assigns a travel mode to every trip of a household.
package modechoice

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tasha-sim/tasha-sim/sim"
	"github.com/tasha-sim/tasha-sim/sim/pipeline"
	"github.com/tasha-sim/tasha-sim/sim/trace"
)

// ModeKey is the trip attribute holding the chosen mode name.
const ModeKey = "Mode"

// Mode is one row of the mode table.
type Mode struct {
	Name            string  `yaml:"name"`
	Share           float64 `yaml:"share"`            // base weight before availability filtering
	RequiresLicense bool    `yaml:"requires_license"` // unavailable to persons without a licence
	RequiresVehicle bool    `yaml:"requires_vehicle"` // unavailable to households without vehicles
}

// availableTo reports whether a person of hh may use the mode.
func (m Mode) availableTo(hh *sim.Household, p *sim.Person) bool {
	if m.RequiresLicense && !p.DriversLicense() {
		return false
	}
	if m.RequiresVehicle && hh.Vehicles() == 0 {
		return false
	}
	return true
}

// ValidateModes checks a mode table: at least one mode, unique non-empty names,
// finite non-negative shares and a positive total.
func ValidateModes(modes []Mode) error {
	if len(modes) == 0 {
		return fmt.Errorf("at least one mode is required")
	}
	seen := make(map[string]bool, len(modes))
	total := 0.0
	for i, m := range modes {
		prefix := fmt.Sprintf("modes[%d]", i)
		if m.Name == "" {
			return fmt.Errorf("%s: name must not be empty", prefix)
		}
		if seen[m.Name] {
			return fmt.Errorf("%s: duplicate mode %q", prefix, m.Name)
		}
		seen[m.Name] = true
		if math.IsNaN(m.Share) || math.IsInf(m.Share, 0) || m.Share < 0 {
			return fmt.Errorf("%s: share must be finite and non-negative, got %f", prefix, m.Share)
		}
		total += m.Share
	}
	if total <= 0 {
		return fmt.Errorf("mode shares sum to zero")
	}
	return nil
}

// Model is the mode-choice stage. For each trip it filters the mode table by
// availability, renormalises the remaining shares and selects one mode with a
// single draw from the household's generator.
type Model struct {
	modes []Mode
	trace *trace.SimulationTrace
}

// NewModel creates a mode-choice stage. A nil tr records nothing.
func NewModel(modes []Mode, tr *trace.SimulationTrace) (*Model, error) {
	if err := ValidateModes(modes); err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrInvalidArgument, err)
	}
	if tr == nil {
		tr = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelNone})
	}
	return &Model{modes: append([]Mode(nil), modes...), trace: tr}, nil
}

// Name implements pipeline.Stage.
func (m *Model) Name() string { return "mode-choice" }

// Apply implements pipeline.Stage.
func (m *Model) Apply(upstream pipeline.Stream) pipeline.Stream {
	return pipeline.PerEntity(m.Name(), m.chooseHousehold).Apply(upstream)
}

// chooseHousehold visits trips in person, chain, trip order so the draw sequence
// is fixed for a given household.
func (m *Model) chooseHousehold(e pipeline.Entity) error {
	hh := e.Household
	names := make([]string, 0, len(m.modes))
	weights := make([]float64, 0, len(m.modes))
	for pi, person := range hh.Persons() {
		names, weights = m.available(hh, person, names[:0], weights[:0])
		if len(names) == 0 {
			if len(person.TripChains()) == 0 {
				continue
			}
			return fmt.Errorf("person %d: no available mode", pi)
		}
		if err := sim.Normalize(weights); err != nil {
			return fmt.Errorf("person %d: %w", pi, err)
		}
		for ci, chain := range person.TripChains() {
			for ti, trip := range chain.Trips() {
				draw := e.Random.NextUniform()
				idx, err := sim.SelectFromProbabilities(draw, weights)
				if err != nil {
					return fmt.Errorf("person %d chain %d trip %d: %w", pi, ci, ti, err)
				}
				trip.Attributes().Set(ModeKey, names[idx])
				if m.trace.Config.Enabled() {
					m.trace.RecordChoice(trace.ChoiceRecord{
						HouseholdID: hh.ID(),
						Person:      pi,
						TripChain:   ci,
						Trip:        ti,
						Draw:        draw,
						Chosen:      names[idx],
						Available:   append([]string(nil), names...),
					})
				}
			}
		}
	}
	logrus.Debugf("[mode-choice] household %d: %d trips assigned", hh.ID(), hh.NumberOfTrips())
	return nil
}

// available appends the modes open to person, skipping zero-share modes.
func (m *Model) available(hh *sim.Household, person *sim.Person, names []string, weights []float64) ([]string, []float64) {
	for _, mode := range m.modes {
		if mode.Share > 0 && mode.availableTo(hh, person) {
			names = append(names, mode.Name)
			weights = append(weights, mode.Share)
		}
	}
	return names, weights
}

// TripMode returns the mode assigned to trip, if any.
func TripMode(trip *sim.Trip) (string, bool) {
	return sim.AttributeAs[string](trip.Attributes(), ModeKey)
}
