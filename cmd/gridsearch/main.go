// Command gridsearch runs a path search on a grid map and prints the result.
//
// Usage:
//
//	gridsearch run --strategy astar --start 2,5,north --goal 28,28,north
//	gridsearch run --strategy ids --limit 12 --map map.yaml --json
//	gridsearch run --strategy bfs --obstacles 150 --seed 7 --priority east,south,west,north
//	gridsearch strategies
//	gridsearch states --map map.yaml
//
// Telemetry:
//
//	gridsearch run --telemetry stdout
//	gridsearch run --telemetry prometheus --metrics-file /var/lib/node_exporter/gridsearch.prom
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
