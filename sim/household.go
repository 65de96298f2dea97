package sim

import (
	"fmt"
	"math"
	"sync"
)

// NoZone marks a zone reference that is not set.
const NoZone = -1

// Household is a single household and the persons living in it.
// Persons are fixed at construction; the household owns them exclusively.
type Household struct {
	id              int
	zone            int // flat index into the zone system
	vehicles        int
	expansionFactor float64
	dwellingType    int
	persons         []*Person

	adultsOnce sync.Once
	adults     int

	attrs Attributes
}

// HouseholdConfig groups the attributes a loader reads for one household.
type HouseholdConfig struct {
	ID              int
	Zone            int
	Vehicles        int
	ExpansionFactor float64
	DwellingType    int
}

// NewHousehold creates a household owning a copy of persons.
// Returns an error for IDs outside the 32-bit seed domain, negative vehicle counts
// or nil persons.
func NewHousehold(cfg HouseholdConfig, persons []*Person) (*Household, error) {
	if cfg.ID < math.MinInt32 || cfg.ID > math.MaxInt32 {
		return nil, fmt.Errorf("%w: household id %d outside the 32-bit range", ErrInvalidArgument, cfg.ID)
	}
	if cfg.Vehicles < 0 {
		return nil, fmt.Errorf("household %d: vehicles must be non-negative, got %d", cfg.ID, cfg.Vehicles)
	}
	for i, p := range persons {
		if p == nil {
			return nil, fmt.Errorf("household %d: person[%d] is nil", cfg.ID, i)
		}
	}
	return &Household{
		id:              cfg.ID,
		zone:            cfg.Zone,
		vehicles:        cfg.Vehicles,
		expansionFactor: cfg.ExpansionFactor,
		dwellingType:    cfg.DwellingType,
		persons:         append([]*Person(nil), persons...),
	}, nil
}

// ID returns the household's unique identifier.
func (h *Household) ID() int { return h.id }

// Zone returns the flat zone index the household lives in.
func (h *Household) Zone() int { return h.zone }

// Vehicles returns the number of vehicles available to the household.
func (h *Household) Vehicles() int { return h.vehicles }

// ExpansionFactor returns the survey weight of the household.
func (h *Household) ExpansionFactor() float64 { return h.expansionFactor }

// DwellingType returns the dwelling type category.
func (h *Household) DwellingType() int { return h.dwellingType }

// Persons returns the household members in survey order.
// The slice is owned by the household and must not be modified.
func (h *Household) Persons() []*Person { return h.persons }

// NumberOfPersons returns the household size.
func (h *Household) NumberOfPersons() int { return len(h.persons) }

// NumberOfAdults returns the number of members aged 18 or over.
// Computed once and memoized.
func (h *Household) NumberOfAdults() int {
	h.adultsOnce.Do(func() {
		for _, p := range h.persons {
			if p.Adult() {
				h.adults++
			}
		}
	})
	return h.adults
}

// NumberOfChildren returns the number of members who are not adults.
func (h *Household) NumberOfChildren() int {
	return len(h.persons) - h.NumberOfAdults()
}

// NumberOfTrips returns the total trips across all persons and chains.
func (h *Household) NumberOfTrips() int {
	n := 0
	for _, p := range h.persons {
		for _, c := range p.chains {
			n += len(c.trips)
		}
	}
	return n
}

// Attributes returns the household's extension store.
func (h *Household) Attributes() *Attributes { return &h.attrs }
