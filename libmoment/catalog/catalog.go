// Package catalog persists generated tuple families so repeated runs over
// the same configuration skip the fixed-point generation entirely.
package catalog

import (
	"encoding/binary"
	"runtime"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment"
	"github.com/moment-systems/gomoment/libmoment/graph"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState (version varints + family count)

	configKey => tuple blob
		configKey := graph encoding, NUL, tracked alphabet, NUL, closure flag, max order
		tuple blob := tuple count varint, then each tuple's canonical encoding

A family's key depends only on what the generator's output depends on:
adjacency, tracked alphabet, the closure flag and the order bound. Rates
and edge weights never change which tuples exist, so they stay out of
the key.

***/

const (
	majorVers = 2026
	minorVers = 1
)

var gCatalogStateKey = []byte{0x00, 0x00, 0x01}

type catalogState struct {
	majorVers uint64
	minorVers uint64
	numSets   uint64
}

func (st *catalogState) Marshal(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, st.majorVers)
	dst = binary.AppendUvarint(dst, st.minorVers)
	dst = binary.AppendUvarint(dst, st.numSets)
	return dst
}

func (st *catalogState) Unmarshal(src []byte) error {
	var n int
	if st.majorVers, n = binary.Uvarint(src); n <= 0 {
		return gomoment.ErrBadEncoding
	}
	src = src[n:]
	if st.minorVers, n = binary.Uvarint(src); n <= 0 {
		return gomoment.ErrBadEncoding
	}
	src = src[n:]
	if st.numSets, n = binary.Uvarint(src); n <= 0 {
		return gomoment.ErrBadEncoding
	}
	return nil
}

// Catalog is a db wrapper around stored tuple families.
type Catalog struct {
	readOnly   bool
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

// OpenCatalog opens or creates the tuple-family catalog at
// opts.DbPathName, or an in-memory catalog when the path is empty.
func OpenCatalog(opts gomoment.CatalogOpts) (*Catalog, error) {
	cat := &Catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gomoment.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.majorVers = majorVers
		cat.state.minorVers = minorVers
	}
	if err == nil && (cat.state.majorVers != majorVers || cat.state.minorVers != minorVers) {
		err = errors.Wrap(gomoment.ErrBadCatalogParam, "catalog version is incompatible")
	}
	if err != nil {
		cat.Close()
		return nil, err
	}
	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *Catalog) flushState() {
	if !cat.stateDirty || cat.readOnly {
		return
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal(nil))
	})
	if err != nil {
		panic(err)
	}
	cat.stateDirty = false
}

func (cat *Catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
	}
	return nil
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

// NumFamilies returns how many tuple families the catalog holds.
func (cat *Catalog) NumFamilies() int64 {
	return int64(cat.state.numSets)
}

func formConfigKey(dst []byte, g *graph.Graph, tracked libmoment.Alphabet, closures bool, maxOrder int) []byte {
	dst = g.AppendEncoding(dst)
	dst = append(dst, 0)
	dst = append(dst, tracked.String()...)
	dst = append(dst, 0)
	flag := byte(0)
	if closures {
		flag = 1
	}
	dst = append(dst, flag)
	dst = binary.AppendUvarint(dst, uint64(maxOrder))
	return dst
}

func effectiveOrder(g *graph.Graph, maxOrder int) int {
	if maxOrder <= 0 || maxOrder > g.NumVertices() {
		maxOrder = g.NumVertices()
	}
	return maxOrder
}

// StoreTupleSet adds the family to the catalog.
// If false is returned, the same configuration was already present.
func (cat *Catalog) StoreTupleSet(rt *libmoment.RequiredTuples) (bool, error) {
	if cat.readOnly {
		return false, gomoment.ErrReadOnlyCatalog
	}

	var keyBuf [128]byte
	key := formConfigKey(keyBuf[:0], rt.Graph(), rt.Model().Tracked(), rt.Closures(), rt.MaxOrder())

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	_, err := txn.Get(key)
	if err == nil {
		return false, nil
	}
	if err != badger.ErrKeyNotFound {
		return false, err
	}

	val := binary.AppendUvarint(nil, uint64(rt.Len()))
	for _, t := range rt.Tuples() {
		val = t.AppendEncoding(val)
	}
	if err = txn.Set(key, val); err != nil {
		return false, err
	}
	if err = txn.Commit(); err != nil {
		return false, err
	}

	cat.state.numSets++
	cat.stateDirty = true
	return true, nil
}

// LoadTupleSet restores the family previously stored for this
// configuration. If none is stored, found is false.
func (cat *Catalog) LoadTupleSet(g *graph.Graph, model *libmoment.TransitionModel, closures bool, maxOrder int) (rt *libmoment.RequiredTuples, found bool, err error) {
	maxOrder = effectiveOrder(g, maxOrder)

	var keyBuf [128]byte
	key := formConfigKey(keyBuf[:0], g, model.Tracked(), closures, maxOrder)

	var tuples []libmoment.Tuple
	err = cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			count, n := binary.Uvarint(val)
			if n <= 0 {
				return gomoment.ErrBadEncoding
			}
			val = val[n:]
			tuples = make([]libmoment.Tuple, 0, count)
			for i := uint64(0); i < count; i++ {
				t, rest, err := libmoment.DecodeTuple(val)
				if err != nil {
					return err
				}
				tuples = append(tuples, t)
				val = rest
			}
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return libmoment.RestoreTuples(g, model, closures, maxOrder, tuples), true, nil
}

// FetchTupleSet loads the family for this configuration, generating and
// storing it on a miss.
func (cat *Catalog) FetchTupleSet(g *graph.Graph, model *libmoment.TransitionModel, closures bool, maxOrder int) (*libmoment.RequiredTuples, error) {
	rt, found, err := cat.LoadTupleSet(g, model, closures, maxOrder)
	if err != nil || found {
		return rt, err
	}
	rt, err = libmoment.GenerateTuples(g, model, closures, maxOrder)
	if err != nil {
		return nil, err
	}
	if !cat.readOnly {
		if _, err := cat.StoreTupleSet(rt); err != nil {
			return nil, err
		}
	}
	return rt, nil
}
