// Package vars implements the variable store: named scalars and
// N-dimensional arrays keyed by identifier hash, with lazy array
// element allocation (spec.md §4.6).
package vars

import (
	"github.com/basic-1/b1core/internal/berr"
	"github.com/basic-1/b1core/internal/ident"
	"github.com/basic-1/b1core/internal/mem"
	"github.com/basic-1/b1core/internal/types"
)

// Identifier names a variable or array by its case-folded spelling and
// hash, matching the reference implementation's B1_NAMEDVAR key.
type Identifier struct {
	Name string
	Hash uint32
	Kind types.Kind
}

// NewIdentifier folds name and computes its hash under the active hash
// width.
func NewIdentifier(name string, kind types.Kind, use32Hash bool) Identifier {
	return Identifier{Name: ident.Fold(name), Hash: ident.Hash(name, use32Hash), Kind: kind}
}

// Bound is one dimension's [lower, upper] subscript range, inclusive
// on both ends as DIM declares it.
type Bound struct {
	Lower, Upper int32
}

func (b Bound) size() int64 { return int64(b.Upper) - int64(b.Lower) + 1 }

// Array is a named, lazily-backed N-dimensional array. Storage is not
// allocated until first access (Get or Set), matching the reference's deferred data
// block allocation.
type Array struct {
	ID     Identifier
	Bounds []Bound
	data   []types.Value
}

// NewArray declares an array with the given bounds but does not yet
// allocate its element storage.
func NewArray(id Identifier, bounds []Bound) (*Array, error) {
	var total int64 = 1
	for _, b := range bounds {
		if b.Upper < b.Lower {
			return nil, berr.New(berr.ESubsRange, 0, 0, id.Name)
		}
		total *= b.size()
		if total > 1<<24 {
			return nil, berr.New(berr.ENoMem, 0, 0, id.Name)
		}
	}
	return &Array{ID: id, Bounds: bounds}, nil
}

// offset computes the linear storage offset for a subscript tuple,
// range-checking every dimension before combining them (row-major,
// left-to-right dimension order).
func (a *Array) offset(subs []int32) (int64, error) {
	if len(subs) != len(a.Bounds) {
		return 0, berr.New(berr.EWSubsCnt, 0, 0, a.ID.Name)
	}
	var off int64
	for i, b := range a.Bounds {
		s := subs[i]
		if s < b.Lower || s > b.Upper {
			return 0, berr.New(berr.ESubsRange, 0, 0, a.ID.Name)
		}
		off = off*b.size() + int64(s-b.Lower)
	}
	return off, nil
}

// ensureAllocated lazily allocates the backing element slice, filled
// with NULL values, on first access.
func (a *Array) ensureAllocated() {
	if a.data != nil {
		return
	}
	var total int64 = 1
	for _, b := range a.Bounds {
		total *= b.size()
	}
	a.data = make([]types.Value, total)
	for i := range a.data {
		a.data[i] = types.NewNull()
	}
}

// Get returns the element at subs, allocating storage lazily if this
// is the array's first access.
func (a *Array) Get(subs []int32) (types.Value, error) {
	off, err := a.offset(subs)
	if err != nil {
		return types.Value{}, err
	}
	a.ensureAllocated()
	return a.data[off], nil
}

// Set stores v at subs, allocating storage lazily if needed.
func (a *Array) Set(subs []int32, v types.Value) error {
	off, err := a.offset(subs)
	if err != nil {
		return err
	}
	a.ensureAllocated()
	a.data[off] = v
	return nil
}

// Erase releases the array's element storage, freeing any owned string
// values it holds, matching ERASE's semantics.
func (a *Array) Erase() {
	for _, v := range a.data {
		if v.IsOwnedString() {
			v.Free()
		}
	}
	a.data = nil
}

// Store is the interpreter's variable cache: scalars and arrays keyed
// by identifier hash, implementing the contracts.VariableCache
// surface spec.md §6 names.
type Store struct {
	scalars        map[uint32]scalarSlot
	arrays         map[uint32]*Array
	explicitOnly   bool
	use32Hash      bool
	mgr            mem.Manager
	defaultBase    int32
}

type scalarSlot struct {
	id  Identifier
	val types.Value
}

// NewStore returns an empty variable store. When explicitOnly is true
// (OPTION EXPLICIT), GetScalar never implicitly creates a variable and
// instead reports EUnkIdent.
func NewStore(mgr mem.Manager, use32Hash, explicitOnly bool) *Store {
	return &Store{
		scalars:      make(map[uint32]scalarSlot),
		arrays:       make(map[uint32]*Array),
		explicitOnly: explicitOnly,
		use32Hash:    use32Hash,
		mgr:          mgr,
	}
}

// GetScalar returns a named scalar's current value, implicitly
// creating it as NULL-valued of the requested kind unless OPTION
// EXPLICIT is active.
func (s *Store) GetScalar(name string, kind types.Kind) (types.Value, error) {
	id := NewIdentifier(name, kind, s.use32Hash)
	slot, ok := s.scalars[id.Hash]
	if !ok {
		if s.explicitOnly {
			return types.Value{}, berr.New(berr.EUnkIdent, 0, 0, name)
		}
		slot = scalarSlot{id: id, val: zeroValue(kind)}
		s.scalars[id.Hash] = slot
	}
	return slot.val, nil
}

// SetScalar assigns v (already converted to the variable's declared
// kind by the caller) to a named scalar, implicitly declaring it if it
// does not yet exist and OPTION EXPLICIT is not active.
func (s *Store) SetScalar(name string, kind types.Kind, v types.Value) error {
	id := NewIdentifier(name, kind, s.use32Hash)
	old, existed := s.scalars[id.Hash]
	if !existed && s.explicitOnly {
		return berr.New(berr.EUnkIdent, 0, 0, name)
	}
	if existed && old.val.IsOwnedString() {
		old.val.Free()
	}
	s.scalars[id.Hash] = scalarSlot{id: id, val: v}
	return nil
}

func zeroValue(kind types.Kind) types.Value {
	switch kind {
	case types.Int32:
		return types.NewInt32(0)
	case types.Int16:
		return types.NewInt16(0)
	case types.UInt16:
		return types.NewUInt16(0)
	case types.UInt8:
		return types.NewUInt8(0)
	case types.Single:
		return types.NewSingle(0)
	case types.Double:
		return types.NewDouble(0)
	case types.Bool:
		return types.NewBool(false)
	case types.String:
		return types.Value{Kind: types.String}
	default:
		return types.NewNull()
	}
}

// SetDefaultBase sets the lower subscript bound a DIM dimension uses
// when it omits an explicit "lbound TO" clause, implementing OPTION
// BASE n.
func (s *Store) SetDefaultBase(n int32) { s.defaultBase = n }

// DefaultBase returns the current OPTION BASE value (0 unless set).
func (s *Store) DefaultBase() int32 { return s.defaultBase }

// DimArray declares a new array, reporting EIdInUse if name already
// names a scalar or array.
func (s *Store) DimArray(name string, kind types.Kind, bounds []Bound) error {
	id := NewIdentifier(name, kind, s.use32Hash)
	if _, exists := s.arrays[id.Hash]; exists {
		return berr.New(berr.EIdInUse, 0, 0, name)
	}
	if _, exists := s.scalars[id.Hash]; exists {
		return berr.New(berr.EIdInUse, 0, 0, name)
	}
	arr, err := NewArray(id, bounds)
	if err != nil {
		return err
	}
	s.arrays[id.Hash] = arr
	return nil
}

// Array looks up a previously DIM'd array, reporting EUnkIdent if none
// exists under that name.
func (s *Store) Array(name string, use32Hash bool) (*Array, error) {
	hash := ident.Hash(name, use32Hash)
	arr, ok := s.arrays[hash]
	if !ok {
		return nil, berr.New(berr.EUnkIdent, 0, 0, name)
	}
	return arr, nil
}

// EraseArray releases a named array's storage entirely, removing it
// from the store so a later DIM may redeclare it.
func (s *Store) EraseArray(name string) error {
	hash := ident.Hash(name, s.use32Hash)
	arr, ok := s.arrays[hash]
	if !ok {
		return berr.New(berr.EUnkIdent, 0, 0, name)
	}
	arr.Erase()
	delete(s.arrays, hash)
	return nil
}

// Reset clears every scalar and array, freeing owned string storage,
// for a fresh RUN.
func (s *Store) Reset() {
	for _, slot := range s.scalars {
		if slot.val.IsOwnedString() {
			slot.val.Free()
		}
	}
	for _, arr := range s.arrays {
		arr.Erase()
	}
	s.scalars = make(map[uint32]scalarSlot)
	s.arrays = make(map[uint32]*Array)
}
