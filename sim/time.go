package sim

import "fmt"

// Time is a time of day in minutes past midnight.
// Values past 24:00 are allowed for trips that end after midnight.
type Time int

// NewTime builds a Time from hours and minutes.
func NewTime(hours, minutes int) Time {
	return Time(hours*60 + minutes)
}

// Hours returns the whole hours component.
func (t Time) Hours() int { return int(t) / 60 }

// Minutes returns the minutes component within the hour.
func (t Time) Minutes() int { return int(t) % 60 }

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hours(), t.Minutes())
}
