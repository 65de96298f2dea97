// Package trace provides decision-trace recording for choice-stage analysis.
// It has no dependency on sim/ and stores plain data types.
package trace

// ChoiceRecord captures a single discrete choice made for a trip.
type ChoiceRecord struct {
	HouseholdID int
	Person      int // index within the household
	TripChain   int // index within the person
	Trip        int // index within the chain
	Draw        float64
	Chosen      string
	Available   []string // modes that passed the availability filter, in table order
}
