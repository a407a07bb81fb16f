package gridsearch

import (
	"math"

	"github.com/pdrpinto/gridsearch/internal/tree"
)

const initialTreeCapacity = 64

func (r *run) breadthFirst(start State) (Path, float64) {
	nodes := tree.New[State](initialTreeCapacity)
	queue := []tree.Handle{nodes.Root(start)}
	visited := map[State]bool{start: true}

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		state, g := nodes.State(current), nodes.Cost(current)
		r.visit(Forward, state, g, len(queue)-head-1)

		if state == r.goal {
			return nodes.Path(current), g
		}

		for _, successor := range r.model.Successors(state) {
			if visited[successor.State] {
				continue
			}
			visited[successor.State] = true
			queue = append(queue, nodes.Add(current, successor.State, g+successor.Cost))
		}
	}
	return nil, 0
}

func (r *run) depthFirst(start State) (Path, float64) {
	return r.boundedDepthFirst(start, math.Inf(1))
}

func (r *run) depthLimited(start State, limit int) (Path, float64) {
	return r.boundedDepthFirst(start, float64(limit))
}

// boundedDepthFirst is the stack-based search shared by DepthFirst and
// DepthLimited. best holds the cheapest g seen per state: a state is pushed again
// only when reached more cheaply, and entries overtaken by a cheaper push are
// skipped when popped. Nodes whose g exceeds limit are discarded.
func (r *run) boundedDepthFirst(start State, limit float64) (Path, float64) {
	nodes := tree.New[State](initialTreeCapacity)
	stack := []tree.Handle{nodes.Root(start)}
	best := map[State]float64{start: 0}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		state, g := nodes.State(current), nodes.Cost(current)

		if g > limit {
			continue
		}
		if g > best[state] {
			continue
		}
		r.visit(Forward, state, g, len(stack))

		if state == r.goal {
			return nodes.Path(current), g
		}

		// Push in reverse so the highest-priority successor is popped first.
		successors := r.model.Successors(state)
		for i := len(successors) - 1; i >= 0; i-- {
			successor := successors[i]
			next := g + successor.Cost
			if known, seen := best[successor.State]; seen && known <= next {
				continue
			}
			best[successor.State] = next
			stack = append(stack, nodes.Add(current, successor.State, next))
		}
	}
	return nil, 0
}

// iterativeDeepening runs DepthLimited with limits 0..maxLimit and returns the
// first path found.
func (r *run) iterativeDeepening(start State, maxLimit int) (Path, float64) {
	for limit := 0; limit <= maxLimit; limit++ {
		if path, cost := r.depthLimited(start, limit); path != nil {
			return path, cost
		}
	}
	return nil, 0
}

// bidirectional grows a tree from start over Successors and a tree from the goal
// over Predecessors, one expansion per side in turn, and stops as soon as a
// newly visited state is already known to the other side.
func (r *run) bidirectional(start State) (Path, float64) {
	forward := tree.New[State](initialTreeCapacity)
	backward := tree.New[State](initialTreeCapacity)

	forwardQueue := []tree.Handle{forward.Root(start)}
	backwardQueue := []tree.Handle{backward.Root(r.goal)}
	forwardSeen := map[State]tree.Handle{start: forwardQueue[0]}
	backwardSeen := map[State]tree.Handle{r.goal: backwardQueue[0]}

	for len(forwardQueue) > 0 && len(backwardQueue) > 0 {
		current := forwardQueue[0]
		forwardQueue = forwardQueue[1:]
		state, g := forward.State(current), forward.Cost(current)
		r.visit(Forward, state, g, len(forwardQueue))

		for _, successor := range r.model.Successors(state) {
			if _, seen := forwardSeen[successor.State]; seen {
				continue
			}
			child := forward.Add(current, successor.State, g+successor.Cost)
			forwardSeen[successor.State] = child
			forwardQueue = append(forwardQueue, child)

			if meet, ok := backwardSeen[successor.State]; ok {
				return tree.Join(forward, child, backward, meet), forward.Cost(child) + backward.Cost(meet)
			}
		}

		current = backwardQueue[0]
		backwardQueue = backwardQueue[1:]
		state, g = backward.State(current), backward.Cost(current)
		r.visit(Backward, state, g, len(backwardQueue))

		for _, predecessor := range r.model.Predecessors(state) {
			if _, seen := backwardSeen[predecessor.State]; seen {
				continue
			}
			child := backward.Add(current, predecessor.State, g+predecessor.Cost)
			backwardSeen[predecessor.State] = child
			backwardQueue = append(backwardQueue, child)

			if meet, ok := forwardSeen[predecessor.State]; ok {
				return tree.Join(forward, meet, backward, child), forward.Cost(meet) + backward.Cost(child)
			}
		}
	}
	return nil, 0
}
