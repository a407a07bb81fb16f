package gridsearch

import (
	"math"

	"github.com/pdrpinto/gridsearch/internal/tree"
)

func (r *run) uniformCost(start State) (Path, float64) {
	return r.costOrdered(start, func(State) float64 { return 0 })
}

func (r *run) aStar(start State) (Path, float64) {
	return r.costOrdered(start, r.heuristic)
}

func (r *run) heuristic(state State) float64 {
	return r.model.Heuristic(state, r.goal)
}

// costOrdered pops entries by g + estimate(state), earliest insertion first on
// ties. bestCost tracks the cheapest known g per state; a popped entry that is
// more expensive than it, or whose state was already finalized, is stale and
// dropped. With a zero estimate this is uniform-cost search.
func (r *run) costOrdered(start State, estimate func(State) float64) (Path, float64) {
	nodes := tree.New[State](initialTreeCapacity)
	open := &frontier{}
	open.push(nodes.Root(start), 0, estimate(start))

	bestCost := map[State]float64{start: 0}
	finalized := make(map[State]bool)

	for open.Len() > 0 {
		item := open.pop()
		state := nodes.State(item.Node)

		if finalized[state] || item.GScore > bestCost[state] {
			continue
		}
		finalized[state] = true
		r.visit(Forward, state, item.GScore, open.Len())

		if state == r.goal {
			return nodes.Path(item.Node), item.GScore
		}

		for _, successor := range r.model.Successors(state) {
			if finalized[successor.State] {
				continue
			}
			tentativeG := item.GScore + successor.Cost
			if known, seen := bestCost[successor.State]; seen && tentativeG >= known {
				continue
			}
			bestCost[successor.State] = tentativeG
			child := nodes.Add(item.Node, successor.State, tentativeG)
			open.push(child, tentativeG, tentativeG+estimate(successor.State))
		}
	}
	return nil, 0
}

// greedyBestFirst orders the frontier by the heuristic alone. A state is marked
// when first pushed and never pushed again.
func (r *run) greedyBestFirst(start State) (Path, float64) {
	nodes := tree.New[State](initialTreeCapacity)
	open := &frontier{}
	open.push(nodes.Root(start), 0, r.heuristic(start))
	marked := map[State]bool{start: true}

	for open.Len() > 0 {
		item := open.pop()
		state := nodes.State(item.Node)
		r.visit(Forward, state, item.GScore, open.Len())

		if state == r.goal {
			return nodes.Path(item.Node), item.GScore
		}

		for _, successor := range r.model.Successors(state) {
			if marked[successor.State] {
				continue
			}
			marked[successor.State] = true
			g := item.GScore + successor.Cost
			open.push(nodes.Add(item.Node, successor.State, g), g, r.heuristic(successor.State))
		}
	}
	return nil, 0
}

// idaStar repeats a depth-first search bounded by f = g + h. Each pass returns
// either the path or the smallest f that exceeded the bound, which becomes the
// next bound. The search gives up once that value is infinite or larger than the
// most any cycle-free path through the reachable states could cost.
//
// Bounded passes only avoid the immediate parent, so their work grows
// exponentially with the bound. A goal outside the component of start is ruled
// out up front instead of by raising the bound to the ceiling.
func (r *run) idaStar(start State) (Path, float64) {
	reachable, goalReached := r.reachable(start)
	if !goalReached {
		return nil, 0
	}
	ceiling := float64(reachable-1) * r.model.MaxActionCost()
	bound := r.heuristic(start)
	path := []State{start}

	for {
		next, found := r.boundedSearch(&path, 0, bound)
		if found {
			return Path(path), next
		}
		if math.IsInf(next, 1) || next > ceiling {
			return nil, 0
		}
		bound = next
	}
}

// boundedSearch explores below the last state of path. On success it returns
// the path cost and leaves the full path in place; otherwise it returns the
// minimum f that exceeded bound and restores path.
func (r *run) boundedSearch(path *[]State, g, bound float64) (float64, bool) {
	depth := len(*path)
	state := (*path)[depth-1]

	f := g + r.heuristic(state)
	if f > bound {
		return f, false
	}
	r.visit(Forward, state, g, depth)
	if state == r.goal {
		return g, true
	}

	minimum := math.Inf(1)
	for _, successor := range r.model.Successors(state) {
		if depth > 1 && successor.State == (*path)[depth-2] {
			continue
		}
		*path = append(*path, successor.State)
		next, found := r.boundedSearch(path, g+successor.Cost, bound)
		if found {
			return next, true
		}
		*path = (*path)[:depth]
		minimum = min(minimum, next)
	}
	return minimum, false
}

// reachable counts the states reachable from start and reports whether the goal
// is among them. It does not count as expansions.
func (r *run) reachable(start State) (int, bool) {
	seen := map[State]bool{start: true}
	queue := []State{start}
	for head := 0; head < len(queue); head++ {
		for _, successor := range r.model.Successors(queue[head]) {
			if seen[successor.State] {
				continue
			}
			seen[successor.State] = true
			queue = append(queue, successor.State)
		}
	}
	return len(seen), seen[r.goal]
}
