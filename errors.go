package gridsearch

import "errors"

// Sentinel errors. "No path" is never an error: it is reported through
// Result.Found.
var (
	// ErrInvalidState is returned when a start or goal state is out of bounds,
	// sits on an obstacle or has an invalid orientation.
	ErrInvalidState = errors.New("gridsearch: invalid state")

	// ErrUnknownAction signals a model inconsistency: a cost was requested for an
	// action the model does not define.
	ErrUnknownAction = errors.New("gridsearch: unknown action")

	// ErrUnknownStrategy is returned by Run and ParseStrategy for unsupported strategies.
	ErrUnknownStrategy = errors.New("gridsearch: unknown strategy")

	// ErrInvalidOrientation is returned when parsing an unrecognised orientation name.
	ErrInvalidOrientation = errors.New("gridsearch: invalid orientation")

	// ErrInvalidPriority is returned when an expansion priority list contains an
	// invalid or repeated orientation.
	ErrInvalidPriority = errors.New("gridsearch: invalid expansion priority")

	// ErrInvalidGrid is returned by NewGrid for bad dimensions, costs or obstacles.
	ErrInvalidGrid = errors.New("gridsearch: invalid grid")

	// ErrNegativeLimit is returned when a depth-bounded strategy gets a limit below zero.
	ErrNegativeLimit = errors.New("gridsearch: negative limit")
)
