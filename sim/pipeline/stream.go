package pipeline

import (
	"context"
	"fmt"

	"github.com/tasha-sim/tasha-sim/sim"
)

// Entity pairs a household with the generator that every stage must draw from
// when making decisions for it.
type Entity struct {
	Random    *sim.Generator
	Household *sim.Household
}

// Stream is a single-pass, pull-based sequence of entities.
//
// Next advances and reports whether an entity is available; it returns false at the
// end of the sequence or on failure, and Err distinguishes the two. Streams are not
// restartable and are not safe for concurrent use.
type Stream interface {
	Next() bool
	Entity() Entity
	Err() error
}

// seededStream pulls households from a queue and pairs each with a fresh generator.
type seededStream struct {
	ctx   context.Context
	queue *Queue[*sim.Household]
	key   sim.SimulationKey
	cur   Entity
}

// NewSeededStream returns a Stream draining queue. Each household gets its own
// Generator derived from (household ID, key), so draws do not depend on arrival order.
func NewSeededStream(ctx context.Context, queue *Queue[*sim.Household], key sim.SimulationKey) Stream {
	return &seededStream{ctx: ctx, queue: queue, key: key}
}

func (s *seededStream) Next() bool {
	hh, ok := s.queue.Take(s.ctx)
	if !ok {
		s.cur = Entity{}
		return false
	}
	s.cur = Entity{Random: s.key.ForHousehold(hh.ID()), Household: hh}
	return true
}

func (s *seededStream) Entity() Entity { return s.cur }

func (s *seededStream) Err() error { return s.queue.Err() }

// sliceStream replays a fixed set of households.
type sliceStream struct {
	households []*sim.Household
	key        sim.SimulationKey
	next       int
	cur        Entity
}

// FromHouseholds returns a Stream over households with the same seeding rule as
// NewSeededStream. Useful for driving a single stage without a producer.
func FromHouseholds(key sim.SimulationKey, households []*sim.Household) Stream {
	return &sliceStream{households: households, key: key}
}

func (s *sliceStream) Next() bool {
	if s.next >= len(s.households) {
		s.cur = Entity{}
		return false
	}
	hh := s.households[s.next]
	s.next++
	s.cur = Entity{Random: s.key.ForHousehold(hh.ID()), Household: hh}
	return true
}

func (s *sliceStream) Entity() Entity { return s.cur }

func (s *sliceStream) Err() error { return nil }

// mapStream runs fn on each entity as it is pulled through.
type mapStream struct {
	up    Stream
	stage string
	fn    func(Entity) error
	cur   Entity
	err   error
}

func (m *mapStream) Next() bool {
	if m.err != nil || !m.up.Next() {
		return false
	}
	e := m.up.Entity()
	if err := m.fn(e); err != nil {
		m.err = fmt.Errorf("%s: household %d: %w", m.stage, e.Household.ID(), err)
		m.cur = Entity{}
		return false
	}
	m.cur = e
	return true
}

func (m *mapStream) Entity() Entity { return m.cur }

func (m *mapStream) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.up.Err()
}

// Drain pulls s to exhaustion and returns the number of entities seen and s.Err().
func Drain(s Stream) (int, error) {
	n := 0
	for s.Next() {
		n++
	}
	return n, s.Err()
}
