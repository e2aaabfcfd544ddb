// Package mem implements the memory-manager abstraction spec.md §6
// names as an external interface: acquire/read/write/release/free
// against opaque block descriptors, so that a small-target
// implementation could relocate blocks between accesses. Manager is
// the interface every component depends on; NativeManager is the
// standard-allocator implementation, for which (per spec.md §6) the
// descriptor is the pointer itself.
package mem

import "github.com/basic-1/b1core/internal/berr"

// AccessMode selects read or write intent for Access, matching the
// reference implementation's {read|write} option to its access call.
type AccessMode uint8

const (
	Read AccessMode = iota
	Write
)

// Descriptor is an opaque handle to a memory block. Only Manager
// methods may dereference it.
type Descriptor interface {
	// valid distinguishes a real descriptor from the invalid-descriptor
	// sentinel used for "not yet allocated" array data and empty strings.
	valid() bool
}

// Invalid is the sentinel descriptor denoting "no block allocated yet",
// used by array descriptors before first write and by empty strings.
var Invalid Descriptor = nil

// Manager is the capability interface every long-lived allocation in
// the interpreter goes through: variable/array storage and string
// payloads that exceed the inline threshold.
type Manager interface {
	// Alloc reserves size bytes and returns a descriptor for them.
	Alloc(size int) (Descriptor, error)
	// Access returns a byte slice view of [offset, offset+size) within
	// the block named by desc. The returned slice aliases the block's
	// storage; callers must call Release when done with it.
	Access(desc Descriptor, offset, size int, mode AccessMode) ([]byte, error)
	// Release pairs with Access; a non-movable implementation may treat
	// it as a no-op, but callers must call it on every exit path.
	Release(desc Descriptor)
	// Free releases the block permanently. Freeing the invalid
	// descriptor is always a no-op, never an error.
	Free(desc Descriptor)
}

// block is the concrete descriptor for NativeManager: the descriptor is
// the pointer itself, as spec.md §6 prescribes for a non-movable
// implementation.
type block struct {
	data []byte
	free bool
}

func (b *block) valid() bool { return b != nil && !b.free }

// NativeManager is a direct Go-heap-backed Manager: Alloc wraps
// make([]byte, size), Access slices it with bounds checking, Release is
// a no-op, and Free marks the block dead so further use is caught as
// EInvMemBlk rather than silently succeeding.
type NativeManager struct{}

// NewNativeManager constructs the standard-allocator memory manager.
func NewNativeManager() *NativeManager { return &NativeManager{} }

func (m *NativeManager) Alloc(size int) (Descriptor, error) {
	if size < 0 {
		return nil, berr.New(berr.ENoMem, 0, 0, "negative allocation size")
	}
	return &block{data: make([]byte, size)}, nil
}

func (m *NativeManager) Access(desc Descriptor, offset, size int, _ AccessMode) ([]byte, error) {
	b, ok := desc.(*block)
	if !ok || !b.valid() {
		return nil, berr.New(berr.EInvMemBlk, 0, 0, "")
	}
	if offset < 0 || size < 0 || offset+size > len(b.data) {
		return nil, berr.New(berr.EBufSmall, 0, 0, "")
	}
	return b.data[offset : offset+size], nil
}

func (m *NativeManager) Release(_ Descriptor) {}

func (m *NativeManager) Free(desc Descriptor) {
	if b, ok := desc.(*block); ok && b != nil {
		b.free = true
		b.data = nil
	}
}
