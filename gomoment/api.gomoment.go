// Package gomoment declares the public contracts shared across the
// moment-closure toolkit: the differential system consumed by integrators,
// catalog access options, and the sentinel errors every layer reports.
package gomoment

// DiffSystem is an autonomous first-order ODE system y' = f(t, y).
//
// Derivatives must be pure: same (t, y) in, same yDot out, no retained
// state between calls. Implementations reject mismatched slice lengths
// with ErrDimensionMismatch rather than panic.
type DiffSystem interface {

	// Dimension returns the length Derivatives expects of y and yDot.
	Dimension() int

	// Derivatives writes f(t, y) into yDot.
	Derivatives(t float64, y, yDot []float64) error
}

// CatalogOpts specifies params for opening a tuple-set Catalog.
//
// An empty DbPathName opens an in-memory catalog that vanishes on Close.
type CatalogOpts struct {
	DbPathName string
	ReadOnly   bool
}

// PrintOpts controls symbolic output of tuples and equation systems.
type PrintOpts struct {

	// Counts appends per-size tuple counts after the tuple listing.
	Counts bool

	// Rates prints numeric rate values instead of model symbols.
	Rates bool
}
