// Package loader builds households from survey CSV files and feeds them to the pipeline.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ZoneSystem maps raw zone numbers to dense flat indices.
type ZoneSystem struct {
	index map[int]int
	zones []int
}

// NewZoneSystem builds a zone system from zone numbers in flat-index order.
// Returns an error on duplicates.
func NewZoneSystem(zones []int) (*ZoneSystem, error) {
	zs := &ZoneSystem{index: make(map[int]int, len(zones)), zones: zones}
	for i, z := range zones {
		if _, dup := zs.index[z]; dup {
			return nil, fmt.Errorf("duplicate zone %d", z)
		}
		zs.index[z] = i
	}
	return zs, nil
}

// LoadZoneSystem reads a CSV with a header row and the zone number in the first column.
func LoadZoneSystem(path string) (*ZoneSystem, error) {
	if path == "" {
		return nil, fmt.Errorf("zone file path must not be empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening zone file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading zone header from %s: %w", path, err)
	}
	var zones []int
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("zone file %s row %d: %w", path, row, err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		z, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("zone file %s row %d: invalid zone %q: %w", path, row, record[0], err)
		}
		zones = append(zones, z)
	}
	zs, err := NewZoneSystem(zones)
	if err != nil {
		return nil, fmt.Errorf("zone file %s: %w", path, err)
	}
	return zs, nil
}

// FlatIndex returns the flat index of a raw zone number.
func (zs *ZoneSystem) FlatIndex(zone int) (int, bool) {
	i, ok := zs.index[zone]
	return i, ok
}

// Zone returns the raw zone number at a flat index.
func (zs *ZoneSystem) Zone(flat int) int { return zs.zones[flat] }

// Len returns the number of zones.
func (zs *ZoneSystem) Len() int { return len(zs.zones) }
