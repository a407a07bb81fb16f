package gridsearch

import (
	"fmt"
	"strings"
)

// Orientation is the direction the agent faces. The constants are declared in
// clockwise order so turning right advances by one and turning left retreats by one.
type Orientation int

const (
	North Orientation = iota
	East
	South
	West
)

const orientationCount = 4

// Orientations returns all orientations in cyclic order.
func Orientations() []Orientation {
	return []Orientation{North, East, South, West}
}

func (o Orientation) String() string {
	switch o {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// IsValid reports whether o is one of the four cardinal orientations.
func (o Orientation) IsValid() bool {
	return o >= North && o <= West
}

// Right returns the orientation after a clockwise quarter turn.
func (o Orientation) Right() Orientation {
	return (o + 1) % orientationCount
}

// Left returns the orientation after a counter-clockwise quarter turn.
func (o Orientation) Left() Orientation {
	return (o + orientationCount - 1) % orientationCount
}

// Delta returns the forward displacement. Y grows downward (rows), so North is -1.
func (o Orientation) Delta() (dx, dy int) {
	switch o {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// ParseOrientation accepts full names or single letters, case-insensitive.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
}

// Position is a grid cell. X is the column and Y is the row.
type Position struct {
	X, Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Step returns the neighbouring cell in direction o.
func (p Position) Step(o Orientation) Position {
	dx, dy := o.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// State is a configuration of the agent. Two states are equal iff both the
// position and the orientation are equal, so State can be used as a map key.
type State struct {
	Pos    Position
	Facing Orientation
}

func (s State) String() string {
	return fmt.Sprintf("(%s,%s)", s.Pos, s.Facing)
}

// Action is one of the moves available to the agent.
type Action int

const (
	MoveForward Action = iota
	TurnRight
	TurnLeft
)

func (a Action) String() string {
	switch a {
	case MoveForward:
		return "move-forward"
	case TurnRight:
		return "turn-right"
	case TurnLeft:
		return "turn-left"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Successor is a state reachable in one action together with the action's cost.
type Successor struct {
	State  State
	Cost   float64
	Action Action
}

// Path is an ordered sequence of states from start to goal inclusive.
// A nil Path means no path was found.
type Path []State

// Len returns the number of actions in the path.
func (p Path) Len() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}
