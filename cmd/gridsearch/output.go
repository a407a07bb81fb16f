package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdrpinto/gridsearch"
)

type stateJSON struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing string `json:"facing"`
}

type resultJSON struct {
	RunID    string      `json:"run_id"`
	Strategy string      `json:"strategy"`
	Found    bool        `json:"found"`
	Cost     float64     `json:"cost"`
	Actions  int         `json:"actions"`
	Expanded int         `json:"expanded"`
	Path     []stateJSON `json:"path"`
}

func writeJSON(w io.Writer, result gridsearch.Result) error {
	out := resultJSON{
		RunID:    result.RunID,
		Strategy: result.Strategy.String(),
		Found:    result.Found,
		Cost:     result.Cost,
		Actions:  result.Path.Len(),
		Expanded: result.Expanded,
		Path:     make([]stateJSON, 0, len(result.Path)),
	}
	for _, s := range result.Path {
		out.Path = append(out.Path, stateJSON{X: s.Pos.X, Y: s.Pos.Y, Facing: s.Facing.String()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeText(w io.Writer, result gridsearch.Result) {
	fmt.Fprintf(w, "strategy: %s\n", result.Strategy.Name())
	if !result.Found {
		fmt.Fprintln(w, "no path found")
		fmt.Fprintf(w, "expanded: %d\n", result.Expanded)
		return
	}
	fmt.Fprintf(w, "cost: %.2f\n", result.Cost)
	fmt.Fprintf(w, "actions: %d\n", result.Path.Len())
	fmt.Fprintf(w, "expanded: %d\n", result.Expanded)
	fmt.Fprintf(w, "path: %s\n", formatPath(result.Path))
}
