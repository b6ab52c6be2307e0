package libmoment

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment/graph"
)

// TupleKey is the canonical encoding of a Tuple, usable as a map key.
type TupleKey string

// Tuple is a canonical set of (state, location) pairs whose joint
// probability the ODE system tracks. Members are kept sorted by
// (location, state); two tuples built from any permutation of the same
// vertices are identical. A Tuple is immutable after construction.
type Tuple struct {
	verts []Vertex
}

// NewTuple canonicalizes the given vertices into a Tuple.
// Exact duplicates collapse; two states at one location is an error.
func NewTuple(verts ...Vertex) (Tuple, error) {
	sorted := make([]Vertex, len(verts))
	copy(sorted, verts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})

	out := sorted[:0]
	for i, v := range sorted {
		if i > 0 && v.Loc == sorted[i-1].Loc {
			if v.State == sorted[i-1].State {
				continue
			}
			return Tuple{}, errors.Wrapf(gomoment.ErrDuplicateLocation,
				"location %d holds both %v and %v", v.Loc, sorted[i-1].State, v.State)
		}
		out = append(out, v)
	}
	return Tuple{verts: out}, nil
}

func (t Tuple) Len() int        { return len(t.verts) }
func (t Tuple) At(i int) Vertex { return t.verts[i] }

// Vertices returns the canonical member sequence. Callers must not mutate it.
func (t Tuple) Vertices() []Vertex { return t.verts }

// StateAt returns the state held at the given location, if any.
func (t Tuple) StateAt(loc int) (State, bool) {
	for _, v := range t.verts {
		if v.Loc == loc {
			return v.State, true
		}
	}
	return 0, false
}

// With returns the tuple extended by v. Adding a member the tuple already
// holds returns the tuple unchanged; a state conflict returns ok == false.
func (t Tuple) With(v Vertex) (Tuple, bool) {
	if have, ok := t.StateAt(v.Loc); ok {
		if have == v.State {
			return t, true
		}
		return Tuple{}, false
	}
	grown := make([]Vertex, 0, len(t.verts)+1)
	placed := false
	for _, cur := range t.verts {
		if !placed && v.Less(cur) {
			grown = append(grown, v)
			placed = true
		}
		grown = append(grown, cur)
	}
	if !placed {
		grown = append(grown, v)
	}
	return Tuple{verts: grown}, true
}

// Without returns the tuple with the member at index i removed.
func (t Tuple) Without(i int) Tuple {
	rest := make([]Vertex, 0, len(t.verts)-1)
	rest = append(rest, t.verts[:i]...)
	rest = append(rest, t.verts[i+1:]...)
	return Tuple{verts: rest}
}

// Locations returns the member locations in ascending order.
func (t Tuple) Locations() []int {
	locs := make([]int, len(t.verts))
	for i, v := range t.verts {
		locs[i] = v.Loc
	}
	return locs
}

// SingleState reports whether every member holds the given state.
func (t Tuple) SingleState(s State) bool {
	for _, v := range t.verts {
		if v.State != s {
			return false
		}
	}
	return len(t.verts) > 0
}

func (t Tuple) statesAllEqual() bool {
	for _, v := range t.verts[1:] {
		if v.State != t.verts[0].State {
			return false
		}
	}
	return true
}

// IsValid reports whether the tuple names a probability the generated
// system should track on g: members induce a connected pattern and do
// not all share one state. When closures is set, all-susceptible tuples
// are admitted regardless of either rule.
func (t Tuple) IsValid(g *graph.Graph, closures bool) bool {
	if len(t.verts) == 0 {
		return false
	}
	if len(t.verts) == 1 {
		return true
	}
	if closures && t.SingleState(Susceptible) {
		return true
	}
	if t.statesAllEqual() {
		return false
	}
	return g.Connected(t.Locations())
}

// Key returns the canonical encoding as a comparable map key.
func (t Tuple) Key() TupleKey {
	return TupleKey(t.AppendEncoding(nil))
}

// AppendEncoding appends a canonical byte encoding:
// member count, then (location varint, state byte) per member.
func (t Tuple) AppendEncoding(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(t.verts)))
	for _, v := range t.verts {
		dst = binary.AppendUvarint(dst, uint64(v.Loc))
		dst = append(dst, byte(v.State))
	}
	return dst
}

// DecodeTuple reads one encoded tuple from src, returning the remainder.
func DecodeTuple(src []byte) (Tuple, []byte, error) {
	count, n := binary.Uvarint(src)
	if n <= 0 {
		return Tuple{}, nil, gomoment.ErrBadEncoding
	}
	src = src[n:]
	verts := make([]Vertex, 0, count)
	for i := uint64(0); i < count; i++ {
		loc, n := binary.Uvarint(src)
		if n <= 0 || len(src) < n+1 {
			return Tuple{}, nil, gomoment.ErrBadEncoding
		}
		s, err := ParseState(src[n])
		if err != nil {
			return Tuple{}, nil, err
		}
		verts = append(verts, Vertex{State: s, Loc: int(loc)})
		src = src[n+1:]
	}
	t, err := NewTuple(verts...)
	if err != nil {
		return Tuple{}, nil, err
	}
	if t.Len() != int(count) {
		return Tuple{}, nil, gomoment.ErrBadEncoding
	}
	return t, src, nil
}

// Equal reports member-wise equality.
func (t Tuple) Equal(u Tuple) bool {
	if len(t.verts) != len(u.verts) {
		return false
	}
	for i, v := range t.verts {
		if v != u.verts[i] {
			return false
		}
	}
	return true
}

// String renders the tuple as an expectation, e.g. "⟨S0 I1⟩".
func (t Tuple) String() string {
	var b strings.Builder
	b.WriteString("⟨")
	for i, v := range t.verts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.String())
	}
	b.WriteString("⟩")
	return b.String()
}
