// Package gridsearch finds paths for an agent that moves on a grid and must turn
// in place to change direction.
//
// A state is a cell plus the direction the agent faces. From any state the agent
// may move one cell forward (when that cell is free) or turn a quarter to the
// right or left. Grid models such a map and its action costs; Engine runs one of
// nine strategies over it:
//
//   - Uninformed: BreadthFirst, DepthFirst, DepthLimited, IterativeDeepening,
//     Bidirectional.
//   - Cost and heuristic driven: UniformCost, GreedyBestFirst, AStar, IDAStar.
//
// Every strategy returns a Result whose Path is nil when the goal cannot be
// reached. Successors are produced in the order given by the grid's expansion
// priority, so changing it changes which of several equally good paths the
// uninformed strategies report. Priority-queue strategies break key ties by
// insertion order, which makes every run reproducible.
//
// Searches are synchronous and single-threaded. Use WithObserver to follow a
// search one expansion at a time.
package gridsearch
