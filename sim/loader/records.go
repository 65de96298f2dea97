package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// personRecord is one row of the persons file.
type personRecord struct {
	number           int
	age              int
	female           bool
	license          bool
	employmentStatus int
	occupation       int
	employmentZone   int // raw zone, 0 = none
	schoolZone       int // raw zone, 0 = none
}

// tripRecord is one row of the trips file.
type tripRecord struct {
	chain             int
	number            int
	origin            int // raw zone
	destination       int // raw zone
	startTime         int // minutes past midnight
	activityStartTime int
}

// tripKey identifies one person's trips.
type tripKey struct {
	household int
	person    int
}

// readRows calls fn for every data row of a CSV file with at least minColumns
// columns. The header row is skipped; shorter rows are skipped silently.
func readRows(path string, minColumns int, fn func(row int, record []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("reading header from %s: %w", path, err)
	}
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s row %d: %w", path, row, err)
		}
		if len(record) < minColumns {
			continue
		}
		if err := fn(row, record); err != nil {
			return fmt.Errorf("%s row %d: %w", path, row, err)
		}
	}
}

// columnParser converts successive columns, remembering the first failure.
type columnParser struct {
	record []string
	err    error
}

func (p *columnParser) parseInt(col int, name string) int {
	if p.err != nil {
		return 0
	}
	raw := strings.TrimSpace(p.record[col])
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v
}

func (p *columnParser) parseFloat(col int, name string) float64 {
	if p.err != nil {
		return 0
	}
	raw := strings.TrimSpace(p.record[col])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v
}

// parseFlag parses single-letter flags such as F/M or Y/N.
func (p *columnParser) parseFlag(col int, name string, yes, no string) bool {
	if p.err != nil {
		return false
	}
	raw := strings.ToUpper(strings.TrimSpace(p.record[col]))
	switch raw {
	case yes, "1", "TRUE":
		return true
	case no, "0", "FALSE":
		return false
	}
	p.err = fmt.Errorf("invalid %s %q: want %s or %s", name, raw, yes, no)
	return false
}

// parseOptionalInt parses a column that may be absent or empty.
func (p *columnParser) parseOptionalInt(col int, name string) int {
	if col >= len(p.record) || strings.TrimSpace(p.record[col]) == "" {
		return 0
	}
	return p.parseInt(col, name)
}

// readPersons indexes the persons file by household, sorted by person number.
func readPersons(path string) (map[int][]personRecord, error) {
	persons := make(map[int][]personRecord)
	err := readRows(path, 7, func(_ int, record []string) error {
		p := columnParser{record: record}
		household := p.parseInt(0, "household_id")
		pr := personRecord{
			number:           p.parseInt(1, "person_number"),
			age:              p.parseInt(2, "age"),
			female:           p.parseFlag(3, "sex", "F", "M"),
			license:          p.parseFlag(4, "license", "Y", "N"),
			employmentStatus: p.parseInt(5, "employment_status"),
			occupation:       p.parseInt(6, "occupation"),
			employmentZone:   p.parseOptionalInt(7, "employment_zone"),
			schoolZone:       p.parseOptionalInt(8, "school_zone"),
		}
		if p.err != nil {
			return p.err
		}
		if pr.age < 0 {
			return fmt.Errorf("age must be non-negative, got %d", pr.age)
		}
		persons[household] = append(persons[household], pr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, list := range persons {
		sort.SliceStable(list, func(i, j int) bool { return list[i].number < list[j].number })
	}
	return persons, nil
}

// readTrips indexes the trips file by (household, person), sorted by chain then trip number.
func readTrips(path string) (map[tripKey][]tripRecord, error) {
	trips := make(map[tripKey][]tripRecord)
	err := readRows(path, 8, func(_ int, record []string) error {
		p := columnParser{record: record}
		key := tripKey{household: p.parseInt(0, "household_id"), person: p.parseInt(1, "person_number")}
		tr := tripRecord{
			chain:             p.parseInt(2, "trip_chain"),
			number:            p.parseInt(3, "trip_number"),
			origin:            p.parseInt(4, "origin_zone"),
			destination:       p.parseInt(5, "destination_zone"),
			startTime:         p.parseInt(6, "start_time"),
			activityStartTime: p.parseInt(7, "activity_start_time"),
		}
		if p.err != nil {
			return p.err
		}
		trips[key] = append(trips[key], tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, list := range trips {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].chain != list[j].chain {
				return list[i].chain < list[j].chain
			}
			return list[i].number < list[j].number
		})
	}
	return trips, nil
}
