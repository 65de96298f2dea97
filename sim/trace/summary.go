package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalChoices     int
	UniqueHouseholds int
	MeanDraw         float64
	ModeDistribution map[string]int // mode name → number of trips choosing it
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ModeDistribution: make(map[string]int),
	}
	choices := st.Choices()
	if len(choices) == 0 {
		return summary
	}

	summary.TotalChoices = len(choices)
	households := make(map[int]struct{})
	totalDraw := 0.0
	for _, c := range choices {
		summary.ModeDistribution[c.Chosen]++
		households[c.HouseholdID] = struct{}{}
		totalDraw += c.Draw
	}
	summary.UniqueHouseholds = len(households)
	summary.MeanDraw = totalDraw / float64(len(choices))
	return summary
}
