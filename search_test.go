package gridsearch

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingModel counts how often the engine asks for neighbours.
type countingModel struct {
	Model
	calls int
}

func (m *countingModel) Successors(s State) []Successor {
	m.calls++
	return m.Model.Successors(s)
}

func (m *countingModel) Predecessors(s State) []Successor {
	m.calls++
	return m.Model.Predecessors(s)
}

func runSearch(t *testing.T, model Model, strategy Strategy, start, goal State, options ...RunOption) Result {
	t.Helper()
	result, err := NewEngine(model).Run(context.Background(), strategy, start, goal, options...)
	require.NoError(t, err)
	return result
}

// requireLegalPath checks that consecutive states are linked by an action and
// returns the summed cost.
func requireLegalPath(t *testing.T, model Model, path Path) float64 {
	t.Helper()
	total := 0.0
	for i := 1; i < len(path); i++ {
		linked := false
		for _, s := range model.Successors(path[i-1]) {
			if s.State == path[i] {
				total += s.Cost
				linked = true
				break
			}
		}
		require.True(t, linked, "%s does not follow %s", path[i], path[i-1])
	}
	return total
}

func TestEngine_StartIsGoal(t *testing.T) {
	grid := newTestGrid(t, 5, 5)
	start := st(2, 2, East)

	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			model := &countingModel{Model: grid}
			result := runSearch(t, model, strategy, start, start, WithLimit(0))

			assert.True(t, result.Found)
			assert.Equal(t, Path{start}, result.Path)
			assert.Equal(t, 0.0, result.Cost)
			assert.Zero(t, result.Path.Len())
			assert.Zero(t, model.calls)
		})
	}
}

func TestEngine_ShortestScenario(t *testing.T) {
	grid := newTestGrid(t, 5, 5)
	start, goal := st(0, 0, North), st(2, 0, North)
	want := Path{st(0, 0, North), st(0, 0, East), st(1, 0, East), st(2, 0, East), st(2, 0, North)}

	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			result := runSearch(t, grid, strategy, start, goal, WithLimit(10))

			require.True(t, result.Found)
			assert.Equal(t, want, result.Path)
			assert.Equal(t, 3.0, result.Cost)
			assert.Equal(t, 4, result.Path.Len())
			assert.Positive(t, result.Expanded)
			assert.Equal(t, strategy, result.Strategy)
			assert.NotEmpty(t, result.RunID)
		})
	}
}

func TestEngine_OptimalStrategiesAgree(t *testing.T) {
	grid := newTestGrid(t, 4, 4, WithObstacles(Position{X: 1, Y: 1}, Position{X: 2, Y: 2}))
	states := grid.AllStates()

	for _, start := range states {
		for _, goal := range states {
			ucs := runSearch(t, grid, UniformCost, start, goal)
			astar := runSearch(t, grid, AStar, start, goal)
			ida := runSearch(t, grid, IDAStar, start, goal)

			require.True(t, ucs.Found, "%s -> %s", start, goal)
			assert.Equal(t, ucs.Cost, astar.Cost, "a* %s -> %s", start, goal)
			assert.Equal(t, ucs.Cost, ida.Cost, "ida* %s -> %s", start, goal)
			assert.Equal(t, ucs.Cost, requireLegalPath(t, grid, astar.Path))
			assert.Equal(t, ida.Cost, requireLegalPath(t, grid, ida.Path))
		}
	}
}

func TestEngine_BreadthFirstMinimisesActions(t *testing.T) {
	// With equal move and turn costs the cheapest path is also the shortest.
	grid := newTestGrid(t, 5, 4, WithTurnCost(1), WithObstacles(Position{X: 2, Y: 1}, Position{X: 2, Y: 2}))
	start := st(0, 0, South)

	for _, goal := range grid.AllStates() {
		bfs := runSearch(t, grid, BreadthFirst, start, goal)
		ucs := runSearch(t, grid, UniformCost, start, goal)

		require.True(t, bfs.Found)
		assert.Equal(t, ucs.Cost, float64(bfs.Path.Len()), "goal %s", goal)
		assert.Equal(t, bfs.Cost, requireLegalPath(t, grid, bfs.Path))
	}
}

func TestEngine_PathsAreLegal(t *testing.T) {
	grid := newTestGrid(t, 4, 4, WithObstacles(Position{X: 1, Y: 1}, Position{X: 2, Y: 2}))
	start := st(0, 0, North)
	strategies := []Strategy{BreadthFirst, DepthFirst, Bidirectional, GreedyBestFirst}

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			for _, goal := range grid.AllStates() {
				result := runSearch(t, grid, strategy, start, goal)
				require.True(t, result.Found, "goal %s", goal)
				require.Equal(t, start, result.Path[0])
				require.Equal(t, goal, result.Path[len(result.Path)-1])
				assert.Equal(t, result.Cost, requireLegalPath(t, grid, result.Path), "goal %s", goal)

				seen := make(map[State]bool, len(result.Path))
				for _, s := range result.Path {
					require.False(t, seen[s], "%s repeated in path to %s", s, goal)
					seen[s] = true
				}
			}
		})
	}
}

func TestEngine_DepthLimited(t *testing.T) {
	grid := newTestGrid(t, 5, 5)
	start, goal := st(0, 0, North), st(2, 0, North)

	t.Run("limit too small", func(t *testing.T) {
		result := runSearch(t, grid, DepthLimited, start, goal, WithLimit(2))
		assert.False(t, result.Found)
		assert.Nil(t, result.Path)
		assert.Zero(t, result.Cost)
	})

	t.Run("limit reached exactly", func(t *testing.T) {
		result := runSearch(t, grid, DepthLimited, start, goal, WithLimit(3))
		require.True(t, result.Found)
		assert.Equal(t, 3.0, result.Cost)
	})

	t.Run("iterative deepening stops at the first sufficient limit", func(t *testing.T) {
		ids := runSearch(t, grid, IterativeDeepening, start, goal, WithLimit(10))
		dls := runSearch(t, grid, DepthLimited, start, goal, WithLimit(3))
		assert.Equal(t, dls.Path, ids.Path)
		assert.Equal(t, dls.Cost, ids.Cost)
	})

	t.Run("iterative deepening below the needed limit", func(t *testing.T) {
		result := runSearch(t, grid, IterativeDeepening, start, goal, WithLimit(2))
		assert.False(t, result.Found)
	})

	t.Run("negative limit", func(t *testing.T) {
		for _, strategy := range []Strategy{DepthLimited, IterativeDeepening} {
			_, err := NewEngine(grid).Run(context.Background(), strategy, start, goal, WithLimit(-1))
			assert.ErrorIs(t, err, ErrNegativeLimit)
		}
		// Strategies without a limit ignore it.
		result := runSearch(t, grid, BreadthFirst, start, goal, WithLimit(-1))
		assert.True(t, result.Found)
	})
}

func TestEngine_Unsolvable(t *testing.T) {
	grid := newTestGrid(t, 5, 5, WithObstacles(Position{X: 3, Y: 4}, Position{X: 4, Y: 3}))
	start, goal := st(0, 0, North), st(4, 4, North)

	tests := []struct {
		strategy Strategy
		limit    int
	}{
		{BreadthFirst, 0},
		{DepthFirst, 0},
		{DepthLimited, 30},
		{IterativeDeepening, 8},
		{Bidirectional, 0},
		{UniformCost, 0},
		{GreedyBestFirst, 0},
		{AStar, 0},
		{IDAStar, 0},
	}
	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			done := make(chan Result, 1)
			go func() {
				result, err := NewEngine(grid).Run(context.Background(), tt.strategy, start, goal, WithLimit(tt.limit))
				assert.NoError(t, err)
				done <- result
			}()

			var result Result
			select {
			case result = <-done:
			case <-time.After(10 * time.Second):
				t.Fatalf("%s did not finish on a walled-off goal", tt.strategy.Name())
			}
			assert.False(t, result.Found)
			assert.Nil(t, result.Path)
			assert.Zero(t, result.Cost)
			if tt.strategy != IDAStar {
				// IDA* rules the goal out before its first bounded pass.
				assert.Positive(t, result.Expanded)
			}
		})
	}

	t.Run("ida* corridor", func(t *testing.T) {
		corridor := newTestGrid(t, 3, 1, WithObstacles(Position{X: 1, Y: 0}))
		result := runSearch(t, corridor, IDAStar, st(0, 0, North), st(2, 0, North))
		assert.False(t, result.Found)
		assert.Nil(t, result.Path)
		assert.Zero(t, result.Cost)
	})
}

func TestEngine_ExpansionPriority(t *testing.T) {
	t.Run("depth-first follows the priority", func(t *testing.T) {
		grid := newTestGrid(t, 5, 5)
		require.NoError(t, grid.SetExpansionPriority([]Orientation{West, South, East, North}))

		result := runSearch(t, grid, DepthFirst, st(0, 0, North), st(2, 0, North))
		require.True(t, result.Found)
		assert.Equal(t, 23.0, result.Cost)
		assert.Len(t, result.Path, 29)

		bfs := runSearch(t, grid, BreadthFirst, st(0, 0, North), st(2, 0, North))
		assert.Equal(t, 3.0, bfs.Cost)
	})

	t.Run("ties between equal routes", func(t *testing.T) {
		grid := newTestGrid(t, 5, 5)
		start, goal := st(0, 0, East), st(1, 1, East)
		viaRight := Path{st(0, 0, East), st(1, 0, East), st(1, 0, South), st(1, 1, South), st(1, 1, East)}
		viaBelow := Path{st(0, 0, East), st(0, 0, South), st(0, 1, South), st(0, 1, East), st(1, 1, East)}

		bfs := runSearch(t, grid, BreadthFirst, start, goal)
		bidi := runSearch(t, grid, Bidirectional, start, goal)
		assert.Equal(t, viaRight, bfs.Path)
		assert.Equal(t, viaBelow, bidi.Path)
		assert.Equal(t, 22.0, runSearch(t, grid, DepthFirst, start, goal).Cost)

		require.NoError(t, grid.SetExpansionPriority([]Orientation{South, West, North, East}))
		bfs = runSearch(t, grid, BreadthFirst, start, goal)
		bidi = runSearch(t, grid, Bidirectional, start, goal)
		assert.Equal(t, viaBelow, bfs.Path)
		assert.Equal(t, viaRight, bidi.Path)
		assert.Equal(t, 10.0, runSearch(t, grid, DepthFirst, start, goal).Cost)

		for _, strategy := range []Strategy{UniformCost, AStar} {
			assert.Equal(t, 3.0, runSearch(t, grid, strategy, start, goal).Cost)
		}
	})
}

func TestEngine_Observer(t *testing.T) {
	grid := newTestGrid(t, 6, 6, WithObstacles(Position{X: 2, Y: 1}, Position{X: 2, Y: 2}, Position{X: 3, Y: 3}))
	start, goal := st(0, 0, South), st(5, 4, West)

	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			rec := &Recorder{}
			engine := NewEngine(grid, WithObserver(rec.Observe))
			result, err := engine.Run(context.Background(), strategy, start, goal, WithLimit(20))
			require.NoError(t, err)

			require.Len(t, rec.Expansions, result.Expanded)
			for i, e := range rec.Expansions {
				assert.Equal(t, i+1, e.Step)
				assert.Equal(t, result.RunID, e.RunID)
				assert.Equal(t, strategy, e.Strategy)
			}
			assert.Equal(t, start, rec.Expansions[0].State)
		})
	}

	t.Run("a* accepts each state once", func(t *testing.T) {
		rec := &Recorder{}
		result, err := NewEngine(grid, WithObserver(rec.Observe)).Run(context.Background(), AStar, start, goal)
		require.NoError(t, err)

		seen := make(map[State]bool)
		for _, s := range rec.States(result.RunID) {
			assert.False(t, seen[s], "%s expanded twice", s)
			seen[s] = true
		}
		assert.True(t, seen[goal])
	})

	t.Run("bidirectional expands both sides", func(t *testing.T) {
		rec := &Recorder{}
		_, err := NewEngine(grid, WithObserver(rec.Observe)).Run(context.Background(), Bidirectional, start, goal)
		require.NoError(t, err)

		sides := make(map[Side]int)
		for _, e := range rec.Expansions {
			sides[e.Side]++
		}
		assert.Positive(t, sides[Forward])
		assert.Positive(t, sides[Backward])
		assert.Equal(t, goal, rec.Expansions[1].State)
	})

	t.Run("recorder separates runs", func(t *testing.T) {
		rec := &Recorder{}
		engine := NewEngine(grid, WithObserver(rec.Observe))
		first, err := engine.Run(context.Background(), BreadthFirst, start, goal)
		require.NoError(t, err)
		second, err := engine.Run(context.Background(), GreedyBestFirst, start, goal)
		require.NoError(t, err)

		assert.NotEqual(t, first.RunID, second.RunID)
		assert.Len(t, rec.States(first.RunID), first.Expanded)
		assert.Len(t, rec.States(second.RunID), second.Expanded)
	})
}

func TestEngine_Errors(t *testing.T) {
	grid := newTestGrid(t, 5, 5, WithObstacles(Position{X: 1, Y: 1}))
	engine := NewEngine(grid)
	ctx := context.Background()
	valid := st(0, 0, North)

	tests := []struct {
		name     string
		strategy Strategy
		start    State
		goal     State
		want     error
	}{
		{"start on obstacle", AStar, st(1, 1, North), valid, ErrInvalidState},
		{"goal outside", BreadthFirst, valid, st(5, 0, North), ErrInvalidState},
		{"bad orientation", UniformCost, State{Facing: Orientation(4)}, valid, ErrInvalidState},
		{"unknown strategy", Strategy(99), valid, valid, ErrUnknownStrategy},
		{"negative strategy", Strategy(-1), valid, valid, ErrUnknownStrategy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Run(ctx, tt.strategy, tt.start, tt.goal)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		byID, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, byID)

		byName, err := ParseStrategy(s.Name())
		require.NoError(t, err)
		assert.Equal(t, s, byName)
	}

	got, err := ParseStrategy(" A* ")
	require.NoError(t, err)
	assert.Equal(t, AStar, got)

	_, err = ParseStrategy("dijkstra")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	assert.Len(t, Strategies(), 9)
	assert.Equal(t, "Strategy(42)", Strategy(42).String())
	assert.True(t, DepthLimited.UsesLimit())
	assert.False(t, AStar.UsesLimit())
}

func TestEngine_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	grid := newTestGrid(t, 5, 5)

	result, err := NewEngine(grid, WithLogger(logger)).Run(context.Background(), AStar, st(0, 0, North), st(2, 0, North))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"search finished"`)
	assert.Contains(t, out, result.RunID)
	assert.Contains(t, out, `"strategy":"astar"`)
	assert.Contains(t, out, `"found":true`)
}
