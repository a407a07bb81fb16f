package gridsearch

// Side tells which search tree an expansion belongs to. Only bidirectional
// search uses Backward.
type Side int

const (
	Forward Side = iota
	Backward
)

func (s Side) String() string {
	if s == Backward {
		return "backward"
	}
	return "forward"
}

// Expansion describes one node accepted for expansion. Observers receive them in
// order, which lets a UI replay a search step by step.
type Expansion struct {
	RunID    string
	Strategy Strategy
	// Step starts at 1 and matches Result.Expanded after the last expansion.
	Step  int
	Side  Side
	State State
	// Cost is the node's accumulated path cost g.
	Cost float64
	// FrontierSize is the number of pending entries (the recursion depth for
	// IDA*) when the node was accepted.
	FrontierSize int
}

// Observer receives expansions synchronously on the searching goroutine.
type Observer func(Expansion)

// Recorder is an Observer that keeps every expansion in memory.
type Recorder struct {
	Expansions []Expansion
}

// Observe appends e. Pass rec.Observe to WithObserver.
func (rec *Recorder) Observe(e Expansion) {
	rec.Expansions = append(rec.Expansions, e)
}

// States returns the expanded states of one run in expansion order.
func (rec *Recorder) States(runID string) []State {
	var out []State
	for _, e := range rec.Expansions {
		if e.RunID == runID {
			out = append(out, e.State)
		}
	}
	return out
}
