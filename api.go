package gridsearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Model is the state space explored by the engine. Grid is the provided
// implementation.
type Model interface {
	IsValidState(state State) bool
	Successors(state State) []Successor
	// Predecessors is the inverse of Successors; each entry names the action
	// leading from the returned state to the argument.
	Predecessors(state State) []Successor
	Heuristic(state State, goal State) float64
	StateCount() int
	MaxActionCost() float64
}

// Strategy selects a search algorithm.
type Strategy int

const (
	BreadthFirst Strategy = iota
	DepthFirst
	DepthLimited
	IterativeDeepening
	Bidirectional
	UniformCost
	GreedyBestFirst
	AStar
	IDAStar
)

var strategyNames = []struct {
	id   string
	long string
}{
	BreadthFirst:       {"bfs", "breadth-first"},
	DepthFirst:         {"dfs", "depth-first"},
	DepthLimited:       {"dls", "depth-limited"},
	IterativeDeepening: {"ids", "iterative-deepening"},
	Bidirectional:      {"bidirectional", "bidirectional-breadth-first"},
	UniformCost:        {"ucs", "uniform-cost"},
	GreedyBestFirst:    {"greedy", "greedy-best-first"},
	AStar:              {"astar", "a*"},
	IDAStar:            {"idastar", "ida*"},
}

// Strategies returns every supported strategy in declaration order.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategyNames))
	for i := range strategyNames {
		out[i] = Strategy(i)
	}
	return out
}

func (s Strategy) valid() bool { return s >= 0 && int(s) < len(strategyNames) }

// String returns the short identifier, e.g. "astar".
func (s Strategy) String() string {
	if !s.valid() {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s].id
}

// Name returns the descriptive name, e.g. "uniform-cost".
func (s Strategy) Name() string {
	if !s.valid() {
		return s.String()
	}
	return strategyNames[s].long
}

// UsesLimit reports whether the strategy reads the limit passed with WithLimit.
func (s Strategy) UsesLimit() bool {
	return s == DepthLimited || s == IterativeDeepening
}

// ParseStrategy accepts either the short identifier or the descriptive name.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range strategyNames {
		if name == n.id || name == n.long {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Result contains the outcome of a search.
type Result struct {
	RunID    string
	Strategy Strategy
	// Path is nil when no path exists.
	Path Path
	// Cost is the sum of action costs along Path, 0 when Found is false.
	Cost     float64
	Found    bool
	Expanded int
}

// Options defines engine-wide parameters.
type Options struct {
	Logger   *slog.Logger
	Observer Observer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithLogger sets the logger used for per-run debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithObserver registers a callback invoked for every node accepted for expansion.
func WithObserver(observer Observer) Option {
	return func(options *Options) { options.Observer = observer }
}

type runOptions struct {
	limit int
}

// RunOption configures a single Run call.
type RunOption func(*runOptions)

// WithLimit sets the cost bound of DepthLimited and the maximum bound of
// IterativeDeepening. Other strategies ignore it.
func WithLimit(limit int) RunOption {
	return func(o *runOptions) { o.limit = limit }
}

// Engine runs search strategies over a Model. An Engine holds no per-search
// state, but the Model's configuration must not change while Run executes.
type Engine struct {
	model    Model
	logger   *slog.Logger
	observer Observer
}

// NewEngine returns an engine over model.
func NewEngine(model Model, options ...Option) *Engine {
	engineOptions := Options{}
	for _, option := range options {
		option(&engineOptions)
	}
	if engineOptions.Logger == nil {
		engineOptions.Logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		model:    model,
		logger:   engineOptions.Logger,
		observer: engineOptions.Observer,
	}
}

// Run searches for a path from start to goal with the chosen strategy. Running
// out of states is reported through Result.Found, not as an error. ctx only
// carries tracing; a run always completes.
func (e *Engine) Run(
	ctx context.Context,
	strategy Strategy,
	start State,
	goal State,
	options ...RunOption,
) (Result, error) {
	if !strategy.valid() {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	runOpts := runOptions{}
	for _, option := range options {
		option(&runOpts)
	}
	if strategy.UsesLimit() && runOpts.limit < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrNegativeLimit, runOpts.limit)
	}
	if !e.model.IsValidState(start) {
		return Result{}, fmt.Errorf("%w: start %s", ErrInvalidState, start)
	}
	if !e.model.IsValidState(goal) {
		return Result{}, fmt.Errorf("%w: goal %s", ErrInvalidState, goal)
	}

	r := &run{
		model:    e.model,
		observer: e.observer,
		id:       uuid.NewString(),
		strategy: strategy,
		goal:     goal,
	}

	ctx, span := tracer.Start(ctx, "Engine.Run",
		trace.WithAttributes(
			attribute.String("run_id", r.id),
			attribute.String("strategy", strategy.String()),
			attribute.String("start", start.String()),
			attribute.String("goal", goal.String()),
		),
	)
	defer span.End()

	began := time.Now()
	var (
		path Path
		cost float64
	)
	if start == goal {
		span.AddEvent("trivial")
		path = Path{start}
	} else {
		path, cost = r.dispatch(start, runOpts.limit)
	}
	elapsed := time.Since(began)

	result := Result{
		RunID:    r.id,
		Strategy: strategy,
		Path:     path,
		Cost:     cost,
		Found:    path != nil,
		Expanded: r.expanded,
	}

	span.SetAttributes(
		attribute.Bool("found", result.Found),
		attribute.Float64("cost", result.Cost),
		attribute.Int("expanded", result.Expanded),
	)
	if !result.Found {
		span.AddEvent("no_path")
	}
	recordRunMetrics(ctx, strategy, elapsed, result.Expanded, result.Found)

	e.logger.Debug("search finished",
		slog.String("run_id", r.id),
		slog.String("strategy", strategy.String()),
		slog.Bool("found", result.Found),
		slog.Float64("cost", result.Cost),
		slog.Int("path_length", result.Path.Len()),
		slog.Int("expanded", result.Expanded),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}

// run holds the bookkeeping shared by every strategy during one Run call.
type run struct {
	model    Model
	observer Observer
	id       string
	strategy Strategy
	goal     State
	expanded int
}

func (r *run) dispatch(start State, limit int) (Path, float64) {
	switch r.strategy {
	case BreadthFirst:
		return r.breadthFirst(start)
	case DepthFirst:
		return r.depthFirst(start)
	case DepthLimited:
		return r.depthLimited(start, limit)
	case IterativeDeepening:
		return r.iterativeDeepening(start, limit)
	case Bidirectional:
		return r.bidirectional(start)
	case UniformCost:
		return r.uniformCost(start)
	case GreedyBestFirst:
		return r.greedyBestFirst(start)
	case AStar:
		return r.aStar(start)
	case IDAStar:
		return r.idaStar(start)
	}
	return nil, 0
}

// visit records that a node was accepted for expansion.
func (r *run) visit(side Side, state State, g float64, frontierSize int) {
	r.expanded++
	if r.observer == nil {
		return
	}
	r.observer(Expansion{
		RunID:        r.id,
		Strategy:     r.strategy,
		Step:         r.expanded,
		Side:         side,
		State:        state,
		Cost:         g,
		FrontierSize: frontierSize,
	})
}
