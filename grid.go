package gridsearch

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// Default action costs.
const (
	DefaultMoveCost = 1.0
	DefaultTurnCost = 0.5
)

// Grid is a rectangular map with impassable cells. It implements Model for an
// agent that can move forward or turn in place.
//
// The expansion priority is the only mutable part of a Grid. It must not be
// changed while a search over the grid is running.
type Grid struct {
	width     int
	height    int
	obstacles map[Position]struct{}
	moveCost  float64
	turnCost  float64
	priority  map[Orientation]int
}

type gridOptions struct {
	obstacles []Position
	random    *randomObstacles
	moveCost  float64
	turnCost  float64
}

type randomObstacles struct {
	count     int
	seed      int64
	forbidden []Position
}

// GridOption configures NewGrid.
type GridOption func(*gridOptions)

// WithObstacles places obstacles at fixed positions.
func WithObstacles(positions ...Position) GridOption {
	return func(o *gridOptions) { o.obstacles = append(o.obstacles, positions...) }
}

// WithRandomObstacles scatters count obstacles over cells not listed in forbidden.
// The layout is deterministic for a given seed. count is clipped to the number of
// cells available.
func WithRandomObstacles(count int, seed int64, forbidden ...Position) GridOption {
	return func(o *gridOptions) {
		o.random = &randomObstacles{count: count, seed: seed, forbidden: forbidden}
	}
}

// WithMoveCost sets the cost of a forward move.
func WithMoveCost(cost float64) GridOption {
	return func(o *gridOptions) { o.moveCost = cost }
}

// WithTurnCost sets the cost of a quarter turn in either direction.
func WithTurnCost(cost float64) GridOption {
	return func(o *gridOptions) { o.turnCost = cost }
}

// NewGrid builds a width x height grid.
func NewGrid(width, height int, options ...GridOption) (*Grid, error) {
	opts := gridOptions{moveCost: DefaultMoveCost, turnCost: DefaultTurnCost}
	for _, option := range options {
		option(&opts)
	}

	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, width, height)
	}
	if !(opts.moveCost > 0) || !(opts.turnCost > 0) || math.IsInf(opts.moveCost, 0) || math.IsInf(opts.turnCost, 0) {
		return nil, fmt.Errorf("%w: costs must be positive and finite (move=%v, turn=%v)",
			ErrInvalidGrid, opts.moveCost, opts.turnCost)
	}

	g := &Grid{
		width:     width,
		height:    height,
		obstacles: make(map[Position]struct{}),
		moveCost:  opts.moveCost,
		turnCost:  opts.turnCost,
	}
	g.priority = rankOrientations(Orientations())

	for _, p := range opts.obstacles {
		if !g.inBounds(p) {
			return nil, fmt.Errorf("%w: obstacle %s out of bounds", ErrInvalidGrid, p)
		}
		g.obstacles[p] = struct{}{}
	}
	if opts.random != nil {
		if opts.random.count < 0 {
			return nil, fmt.Errorf("%w: negative obstacle count %d", ErrInvalidGrid, opts.random.count)
		}
		g.scatter(*opts.random)
	}
	return g, nil
}

func (g *Grid) scatter(r randomObstacles) {
	forbidden := make(map[Position]bool, len(r.forbidden))
	for _, p := range r.forbidden {
		forbidden[p] = true
	}

	candidates := make([]Position, 0, g.width*g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Position{X: x, Y: y}
			if forbidden[p] {
				continue
			}
			if _, blocked := g.obstacles[p]; blocked {
				continue
			}
			candidates = append(candidates, p)
		}
	}

	seed := uint64(r.seed)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, p := range candidates[:min(r.count, len(candidates))] {
		g.obstacles[p] = struct{}{}
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Obstacles returns the obstacle cells in row-major order.
func (g *Grid) Obstacles() []Position {
	out := make([]Position, 0, len(g.obstacles))
	for p := range g.obstacles {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Position) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return out
}

func (g *Grid) inBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// IsValid reports whether p is inside the grid and not an obstacle.
func (g *Grid) IsValid(p Position) bool {
	if !g.inBounds(p) {
		return false
	}
	_, blocked := g.obstacles[p]
	return !blocked
}

// IsValidState reports whether s can be occupied by the agent.
func (g *Grid) IsValidState(s State) bool {
	return s.Facing.IsValid() && g.IsValid(s.Pos)
}

// StateCount is the number of valid states: free cells times four orientations.
func (g *Grid) StateCount() int {
	return (g.width*g.height - len(g.obstacles)) * orientationCount
}

// AllStates lists every valid state, row-major, then in orientation order.
func (g *Grid) AllStates() []State {
	states := make([]State, 0, g.StateCount())
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Position{X: x, Y: y}
			if !g.IsValid(p) {
				continue
			}
			for _, o := range Orientations() {
				states = append(states, State{Pos: p, Facing: o})
			}
		}
	}
	return states
}

// Cost returns the fixed cost of an action, or +Inf for an action the grid does
// not define.
func (g *Grid) Cost(a Action) float64 {
	switch a {
	case MoveForward:
		return g.moveCost
	case TurnRight, TurnLeft:
		return g.turnCost
	default:
		return math.Inf(1)
	}
}

// ActionCost is Cost with an explicit error for unknown actions.
func (g *Grid) ActionCost(a Action) (float64, error) {
	c := g.Cost(a)
	if math.IsInf(c, 1) {
		return c, fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	return c, nil
}

// MaxActionCost is the most expensive single action.
func (g *Grid) MaxActionCost() float64 {
	return max(g.moveCost, g.turnCost)
}

// Successors returns the states reachable from s in one action, ordered by the
// expansion priority of the resulting orientation. Ties keep generation order:
// forward, right turn, left turn.
func (g *Grid) Successors(s State) []Successor {
	out := make([]Successor, 0, 3)
	if next := s.Pos.Step(s.Facing); g.IsValid(next) {
		out = append(out, Successor{State: State{Pos: next, Facing: s.Facing}, Cost: g.Cost(MoveForward), Action: MoveForward})
	}
	out = append(out,
		Successor{State: State{Pos: s.Pos, Facing: s.Facing.Right()}, Cost: g.Cost(TurnRight), Action: TurnRight},
		Successor{State: State{Pos: s.Pos, Facing: s.Facing.Left()}, Cost: g.Cost(TurnLeft), Action: TurnLeft},
	)
	g.sortByPriority(out)
	return out
}

// Predecessors returns the states from which s is reachable in one action. Each
// entry carries the action that leads from that state to s. Ordering follows the
// same priority rule as Successors.
func (g *Grid) Predecessors(s State) []Successor {
	out := make([]Successor, 0, 3)
	if prev := s.Pos.Step(s.Facing.Right().Right()); g.IsValid(prev) {
		out = append(out, Successor{State: State{Pos: prev, Facing: s.Facing}, Cost: g.Cost(MoveForward), Action: MoveForward})
	}
	out = append(out,
		Successor{State: State{Pos: s.Pos, Facing: s.Facing.Left()}, Cost: g.Cost(TurnRight), Action: TurnRight},
		Successor{State: State{Pos: s.Pos, Facing: s.Facing.Right()}, Cost: g.Cost(TurnLeft), Action: TurnLeft},
	)
	g.sortByPriority(out)
	return out
}

func (g *Grid) sortByPriority(succ []Successor) {
	slices.SortStableFunc(succ, func(a, b Successor) int {
		return cmp.Compare(g.rank(a.State.Facing), g.rank(b.State.Facing))
	})
}

func (g *Grid) rank(o Orientation) int {
	if r, ok := g.priority[o]; ok {
		return r
	}
	return len(g.priority)
}

// Heuristic is the Manhattan distance between the two positions scaled by the
// forward cost. Orientation is ignored.
func (g *Grid) Heuristic(s, goal State) float64 {
	dx := s.Pos.X - goal.Pos.X
	if dx < 0 {
		dx = -dx
	}
	dy := s.Pos.Y - goal.Pos.Y
	if dy < 0 {
		dy = -dy
	}
	return float64(dx+dy) * g.moveCost
}

// SetExpansionPriority replaces the orientation ranking used to order
// successors. The first orientation has the highest priority. Orientations left
// out rank after all listed ones.
func (g *Grid) SetExpansionPriority(order []Orientation) error {
	seen := make(map[Orientation]bool, len(order))
	for _, o := range order {
		if !o.IsValid() {
			return fmt.Errorf("%w: %s", ErrInvalidPriority, o)
		}
		if seen[o] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidPriority, o)
		}
		seen[o] = true
	}
	g.priority = rankOrientations(order)
	return nil
}

// ExpansionPriority returns the orientations in current priority order.
func (g *Grid) ExpansionPriority() []Orientation {
	out := Orientations()
	slices.SortStableFunc(out, func(a, b Orientation) int {
		return cmp.Compare(g.rank(a), g.rank(b))
	})
	return out
}

func rankOrientations(order []Orientation) map[Orientation]int {
	ranks := make(map[Orientation]int, len(order))
	for i, o := range order {
		ranks[o] = i
	}
	return ranks
}
