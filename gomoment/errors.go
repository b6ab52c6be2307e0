package gomoment

import "errors"

// Errors
var (
	ErrInvalidState      = errors.New("invalid compartment state")
	ErrUnexpectedConfig  = errors.New("unexpected model configuration")
	ErrMissingTuple      = errors.New("required tuple missing from index")
	ErrDimensionMismatch = errors.New("state vector dimension mismatch")
	ErrDuplicateLocation = errors.New("tuple holds conflicting states at one location")
	ErrBadVertex         = errors.New("bad graph vertex")
	ErrBadEdge           = errors.New("bad graph edge")
	ErrBadWeight         = errors.New("bad transmission weight")
	ErrBadRate           = errors.New("bad transition rate")
	ErrBadTransition     = errors.New("bad transition")
	ErrBadEncoding       = errors.New("bad tuple encoding")
	ErrBadCatalogParam   = errors.New("bad catalog param")
	ErrReadOnlyCatalog   = errors.New("catalog is read-only")
	ErrBadTimeGrid       = errors.New("bad integration time grid")
)
