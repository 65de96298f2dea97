package loader

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tasha-sim/tasha-sim/sim"
)

// CSVSource loads households from survey CSV files.
//
// Households file: household_id, home_zone, expansion_factor, dwelling_type, persons, vehicles.
// Persons file: household_id, person_number, age, sex (F/M), license (Y/N),
// employment_status, occupation[, employment_zone, school_zone].
// Trips file: household_id, person_number, trip_chain, trip_number, origin_zone,
// destination_zone, start_time, activity_start_time (minutes past midnight).
//
// Every file starts with a header row. Rows with too few columns are skipped.
// Zone 0 in a person's employment or school column means none.
type CSVSource struct {
	Households string      // required
	Persons    string      // optional; households without persons when empty
	Trips      string      // optional; persons without trips when empty
	Zones      *ZoneSystem // required
	Workers    int         // household builders; 0 = GOMAXPROCS
}

// householdColumns is the minimum width of a household row.
const householdColumns = 6

// Load implements pipeline.Source. Persons and trips are indexed up front, then
// household rows are streamed and built by a bounded worker pool. Households are
// emitted in completion order, which may differ from file order.
func (s *CSVSource) Load(ctx context.Context, emit func(*sim.Household) error) error {
	if s.Households == "" {
		return fmt.Errorf("%w: household file path must not be empty", sim.ErrInvalidArgument)
	}
	if s.Zones == nil {
		return fmt.Errorf("%w: zone system is required", sim.ErrInvalidArgument)
	}

	persons := map[int][]personRecord{}
	if s.Persons != "" {
		var err error
		if persons, err = readPersons(s.Persons); err != nil {
			return fmt.Errorf("loading persons: %w", err)
		}
	}
	trips := map[tripKey][]tripRecord{}
	if s.Trips != "" {
		var err error
		if trips, err = readTrips(s.Trips); err != nil {
			return fmt.Errorf("loading trips: %w", err)
		}
	}
	logrus.Debugf("Indexed persons for %d households and trips for %d persons", len(persons), len(trips))

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	b := &builder{zones: s.Zones, persons: persons, trips: trips}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	seen := make(map[int]int) // household id -> first row
	readErr := readRows(s.Households, householdColumns, func(rowNum int, record []string) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		p := columnParser{record: record}
		row := householdRow{
			id:              p.parseInt(0, "household_id"),
			zone:            p.parseInt(1, "home_zone"),
			expansionFactor: p.parseFloat(2, "expansion_factor"),
			dwellingType:    p.parseInt(3, "dwelling_type"),
			persons:         p.parseInt(4, "persons"),
			vehicles:        p.parseInt(5, "vehicles"),
		}
		if p.err != nil {
			return p.err
		}
		if first, dup := seen[row.id]; dup {
			return fmt.Errorf("duplicate household_id %d (first seen on row %d)", row.id, first)
		}
		seen[row.id] = rowNum
		g.Go(func() error {
			hh, err := b.build(row)
			if err != nil {
				return err
			}
			return emit(hh)
		})
		return nil
	})
	// Wait first so a worker's failure is reported instead of the cancellation
	// it caused in the reader.
	if err := g.Wait(); err != nil {
		return err
	}
	if readErr != nil {
		return fmt.Errorf("loading households: %w", readErr)
	}
	return nil
}

// householdRow is one parsed row of the households file.
type householdRow struct {
	id              int
	zone            int
	expansionFactor float64
	dwellingType    int
	persons         int
	vehicles        int
}

// builder turns indexed records into entities. Safe for concurrent use once built.
type builder struct {
	zones   *ZoneSystem
	persons map[int][]personRecord
	trips   map[tripKey][]tripRecord
}

func (b *builder) build(row householdRow) (*sim.Household, error) {
	zone, ok := b.zones.FlatIndex(row.zone)
	if !ok {
		return nil, fmt.Errorf("household %d: unknown home zone %d", row.id, row.zone)
	}
	records := b.persons[row.id]
	if row.persons != len(records) {
		logrus.Warnf("household %d declares %d persons but %d were loaded", row.id, row.persons, len(records))
	}
	persons := make([]*sim.Person, len(records))
	for i, pr := range records {
		p, err := b.buildPerson(row.id, pr)
		if err != nil {
			return nil, fmt.Errorf("household %d: %w", row.id, err)
		}
		persons[i] = p
	}
	return sim.NewHousehold(sim.HouseholdConfig{
		ID:              row.id,
		Zone:            zone,
		Vehicles:        row.vehicles,
		ExpansionFactor: row.expansionFactor,
		DwellingType:    row.dwellingType,
	}, persons)
}

func (b *builder) buildPerson(household int, pr personRecord) (*sim.Person, error) {
	p := sim.NewPerson(sim.PersonConfig{
		Age:              pr.age,
		Female:           pr.female,
		DriversLicense:   pr.license,
		EmploymentStatus: pr.employmentStatus,
		Occupation:       pr.occupation,
	})
	var err error
	if p.EmploymentZone, err = b.optionalZone(pr.employmentZone); err != nil {
		return nil, fmt.Errorf("person %d employment zone: %w", pr.number, err)
	}
	if p.SchoolZone, err = b.optionalZone(pr.schoolZone); err != nil {
		return nil, fmt.Errorf("person %d school zone: %w", pr.number, err)
	}

	chains, err := b.buildChains(b.trips[tripKey{household: household, person: pr.number}])
	if err != nil {
		return nil, fmt.Errorf("person %d: %w", pr.number, err)
	}
	if err := p.SetTripChains(chains); err != nil {
		return nil, err
	}
	return p, nil
}

// buildChains groups sorted trip records into chains by chain number.
func (b *builder) buildChains(records []tripRecord) ([]*sim.TripChain, error) {
	chains := make([]*sim.TripChain, 0)
	for start := 0; start < len(records); {
		end := start
		for end < len(records) && records[end].chain == records[start].chain {
			end++
		}
		trips := make([]*sim.Trip, 0, end-start)
		for _, tr := range records[start:end] {
			origin, ok := b.zones.FlatIndex(tr.origin)
			if !ok {
				return nil, fmt.Errorf("chain %d trip %d: unknown origin zone %d", tr.chain, tr.number, tr.origin)
			}
			destination, ok := b.zones.FlatIndex(tr.destination)
			if !ok {
				return nil, fmt.Errorf("chain %d trip %d: unknown destination zone %d", tr.chain, tr.number, tr.destination)
			}
			trips = append(trips, &sim.Trip{
				StartTime:         sim.Time(tr.startTime),
				ActivityStartTime: sim.Time(tr.activityStartTime),
				Origin:            origin,
				Destination:       destination,
			})
		}
		chain, err := sim.NewTripChain(trips)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
		start = end
	}
	return chains, nil
}

func (b *builder) optionalZone(raw int) (int, error) {
	if raw == 0 {
		return sim.NoZone, nil
	}
	flat, ok := b.zones.FlatIndex(raw)
	if !ok {
		return sim.NoZone, fmt.Errorf("unknown zone %d", raw)
	}
	return flat, nil
}
