package trace

import "sync"

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every discrete choice.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether choices should be recorded.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// SimulationTrace collects choice records during a pipeline run.
// Safe for concurrent use: stages running on different households may record at once.
type SimulationTrace struct {
	Config TraceConfig

	mu      sync.Mutex
	choices []ChoiceRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:  config,
		choices: make([]ChoiceRecord, 0),
	}
}

// RecordChoice appends a choice record. No-op when tracing is disabled.
func (st *SimulationTrace) RecordChoice(record ChoiceRecord) {
	if st == nil || !st.Config.Enabled() {
		return
	}
	st.mu.Lock()
	st.choices = append(st.choices, record)
	st.mu.Unlock()
}

// Choices returns a copy of the recorded choices in recording order.
func (st *SimulationTrace) Choices() []ChoiceRecord {
	if st == nil {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]ChoiceRecord(nil), st.choices...)
}
