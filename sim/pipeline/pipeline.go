// Package pipeline streams households from a loader through the simulation stages.
//
// One producer goroutine runs the Source and publishes households into a bounded
// Queue; the calling goroutine drains it, pairs each household with its own
// Generator and pulls it through the stages in declared order (scheduler, then
// mode choice). Any failure on either side aborts the queue and ends the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tasha-sim/tasha-sim/sim"
)

// Source produces fully constructed households.
// Load blocks until every household has been passed to emit, emit fails, or ctx ends.
// It may call emit from several goroutines.
type Source interface {
	Load(ctx context.Context, emit func(*sim.Household) error) error
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context, emit func(*sim.Household) error) error

// Load calls f.
func (f SourceFunc) Load(ctx context.Context, emit func(*sim.Household) error) error {
	return f(ctx, emit)
}

// Pipeline chains a household source with the optional scheduler and mode-choice stages.
type Pipeline struct {
	Source        Source            // required
	Scheduler     Stage             // optional; nil passes households through
	ModeChoice    Stage             // optional; nil passes households through
	Key           sim.SimulationKey // run-level base seed
	QueueCapacity int               // 0 = DefaultCapacity()
	Metrics       *Metrics          // optional
}

// Summary describes a completed run.
type Summary struct {
	RunID      string
	Households int
	Persons    int
	Trips      int
	Elapsed    time.Duration
}

// Run drives every household through the stages until the source is exhausted.
// Failures are fatal to the run; the returned error keeps the original cause.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if p.Source == nil {
		return Summary{}, fmt.Errorf("%w: pipeline needs a household source", sim.ErrInvalidArgument)
	}
	capacity := p.QueueCapacity
	if capacity <= 0 {
		capacity = DefaultCapacity()
	}

	summary := Summary{RunID: uuid.NewString()}
	log := logrus.WithField("run", summary.RunID)
	log.Infof("Starting household pipeline: key=%d, queue capacity=%d, stages=%v",
		p.Key, capacity, p.stageNames())
	start := time.Now()

	queue := NewQueue[*sim.Household](capacity)
	defer queue.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := p.Source.Load(gctx, func(hh *sim.Household) error {
			if hh == nil {
				return fmt.Errorf("%w: source emitted a nil household", sim.ErrInvalidArgument)
			}
			if err := queue.Put(gctx, hh); err != nil {
				return err
			}
			p.Metrics.observeEnqueue(queue.Len())
			return nil
		})
		if err != nil {
			queue.Abort(err)
			return err
		}
		queue.Close()
		log.Debug("Household source exhausted")
		return nil
	})

	stream := Compose(NewSeededStream(gctx, queue, p.Key), p.Scheduler, p.ModeChoice)
	for stream.Next() {
		hh := stream.Entity().Household
		trips := hh.NumberOfTrips()
		summary.Households++
		summary.Persons += hh.NumberOfPersons()
		summary.Trips += trips
		p.Metrics.observeProcessed(trips, queue.Len())
	}
	if err := stream.Err(); err != nil {
		queue.Abort(err)
	}

	err := g.Wait()
	p.Metrics.observeDepth(queue.Len())
	// The first abort cause wins over secondary errors such as ErrQueueClosed
	// returned by a producer that was cut off.
	if cause := queue.Err(); cause != nil {
		err = cause
	}
	summary.Elapsed = time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warnf("Pipeline cancelled after %d households", summary.Households)
		} else {
			log.Errorf("Pipeline failed after %d households: %v", summary.Households, err)
		}
		return summary, err
	}
	log.Infof("Pipeline complete: %d households, %d persons, %d trips in %v",
		summary.Households, summary.Persons, summary.Trips, summary.Elapsed)
	return summary, nil
}

func (p *Pipeline) stageNames() []string {
	var names []string
	for _, st := range []Stage{p.Scheduler, p.ModeChoice} {
		if st != nil {
			names = append(names, st.Name())
		}
	}
	return names
}
