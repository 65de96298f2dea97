package pipeline

// Stage transforms a stream of entities into another. Apply must be lazy: work
// happens as the downstream pulls, never up front.
type Stage interface {
	Name() string
	Apply(upstream Stream) Stream
}

type entityStage struct {
	name string
	fn   func(Entity) error
}

// PerEntity adapts a per-entity side-effect function into a Stage.
// fn runs on the consumer goroutine as each entity is pulled; a returned error ends
// the stream and becomes its Err.
func PerEntity(name string, fn func(Entity) error) Stage {
	return entityStage{name: name, fn: fn}
}

func (s entityStage) Name() string { return s.name }

func (s entityStage) Apply(upstream Stream) Stream {
	return &mapStream{up: upstream, stage: s.name, fn: s.fn}
}

// Identity is a Stage that passes entities through unchanged.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Apply(upstream Stream) Stream { return upstream }

// Compose applies stages to s in order. Nil stages are skipped, so an absent
// optional stage degrades to identity.
func Compose(s Stream, stages ...Stage) Stream {
	for _, st := range stages {
		if st == nil {
			continue
		}
		s = st.Apply(s)
	}
	return s
}
