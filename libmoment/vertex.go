package libmoment

import "fmt"

// Vertex binds a compartment state to a location on the contact network.
type Vertex struct {
	State State
	Loc   int
}

// Less orders vertices by location, breaking ties by state.
// Tuples sort their members with this ordering to stay canonical.
func (v Vertex) Less(w Vertex) bool {
	if v.Loc != w.Loc {
		return v.Loc < w.Loc
	}
	return v.State < w.State
}

func (v Vertex) String() string {
	return fmt.Sprintf("%v%d", v.State, v.Loc)
}
