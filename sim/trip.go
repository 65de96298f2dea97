package sim

import "fmt"

// Trip is a single movement between two zones.
// StartTime and ActivityStartTime are owned by the scheduling stage and may be changed.
type Trip struct {
	StartTime         Time // departure
	ActivityStartTime Time // arrival at the activity
	Origin            int  // flat zone index
	Destination       int  // flat zone index

	attrs Attributes
}

// Attributes returns the trip's extension store.
func (t *Trip) Attributes() *Attributes { return &t.attrs }

// TripChain is an ordered, non-empty sequence of trips that starts and ends at home.
type TripChain struct {
	trips []*Trip
	attrs Attributes
}

// NewTripChain creates a chain owning trips.
// Returns an error if trips is empty or contains nil.
func NewTripChain(trips []*Trip) (*TripChain, error) {
	if len(trips) == 0 {
		return nil, fmt.Errorf("%w: trip chain needs at least one trip", ErrInvalidArgument)
	}
	for i, t := range trips {
		if t == nil {
			return nil, fmt.Errorf("%w: trip[%d] is nil", ErrInvalidArgument, i)
		}
	}
	return &TripChain{trips: trips}, nil
}

// Trips returns the chain's trips in order.
func (c *TripChain) Trips() []*Trip { return c.trips }

// StartTime is the start time of the first trip.
func (c *TripChain) StartTime() Time { return c.trips[0].StartTime }

// EndTime is the activity start time of the last trip.
func (c *TripChain) EndTime() Time { return c.trips[len(c.trips)-1].ActivityStartTime }

// Attributes returns the chain's extension store.
func (c *TripChain) Attributes() *Attributes { return &c.attrs }
