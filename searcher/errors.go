package searcher

import "errors"

var (
	// ErrInvalidExpansion means a node was asked to expand a move it has already expanded or never had.
	ErrInvalidExpansion = errors.New("invalid expansion")
	// ErrTerminalRoot means a search was requested from a finished game.
	ErrTerminalRoot = errors.New("search root is terminal")
	// ErrNoMoveFound means the search finished without expanding any root child.
	ErrNoMoveFound = errors.New("no move found")
	// ErrInvalidBudget means the iteration count or exploration constant is not positive.
	ErrInvalidBudget = errors.New("invalid search budget")
)
