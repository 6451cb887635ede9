package history

import "time"

// Summary aggregates a run list for display.
type Summary struct {
	Runs         int
	ByMode       map[string]int
	AvgDuration  time.Duration
	FilesIndexed int
	LastSymbols  int
	Incomplete   int
}

// Summarize expects runs newest first, as Recent returns them.
func Summarize(runs []Run) Summary {
	sum := Summary{Runs: len(runs), ByMode: make(map[string]int)}
	if len(runs) == 0 {
		return sum
	}
	var total time.Duration
	for _, run := range runs {
		sum.ByMode[run.Mode]++
		sum.FilesIndexed += run.FilesIndexed
		total += run.Duration
		if !run.Complete {
			sum.Incomplete++
		}
	}
	sum.AvgDuration = total / time.Duration(len(runs))
	sum.LastSymbols = runs[0].Symbols
	return sum
}
