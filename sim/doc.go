// Package sim provides the core of the TASHA household travel-demand microsimulation.
//
// # Reading Guide
//
// Start with these files to understand the core:
//   - random.go: Generator, the seeded Mersenne-Twister variant every decision draws from
//   - rng.go: SimulationKey and the per-household seed derivation
//   - choice.go: selecting an index from a probability or CDF vector with one draw
//   - household.go, person.go, trip.go: the entity graph handed between stages
//
// # Architecture
//
// The sim package defines the entities and the random/choice engine; the pipeline and
// its collaborators live in sub-packages:
//   - sim/pipeline/: bounded queue, pull-based entity streams, stage composition, Run
//   - sim/loader/: CSV survey loader and zone system (the household Source)
//   - sim/scheduler/: activity-scheduling stage
//   - sim/modechoice/: per-trip mode choice stage
//   - sim/trace/: decision trace recording
//   - sim/config/: YAML run configuration
//
// # Determinism
//
// Each household receives its own Generator seeded from (household ID, SimulationKey).
// Stages must draw only from the Generator paired with the household they process, in a
// fixed order, so results do not depend on loader concurrency or arrival order.
package sim
