package portal3d

import (
	"errors"
	"fmt"
)

// Identifiers for each index space. They are distinct types so a scene index can't be handed where an entity index
// is expected (or the other way around) without an explicit conversion.
type (
	SceneID  int
	EntityID int
	ModelID  int
	PortalID int
)

// NoModel marks an absent model reference, like a Scene without a skybox.
const NoModel ModelID = -1

// StencilMask is the stencil value a portal writes during the portal pass. Zero is reserved for "no portal".
type StencilMask uint8

const (
	MaxScenes           = 16
	MaxModels           = 128
	MaxEntitiesPerScene = 16
	MaxPortalsPerScene  = 4
)

var (
	ErrCapacity             = errors.New("capacity exceeded")
	ErrUnknownScene         = errors.New("unknown scene")
	ErrUnknownModel         = errors.New("unknown model")
	ErrInvalidStencilMask   = errors.New("stencil mask must be nonzero")
	ErrDuplicateStencilMask = errors.New("stencil mask already used by a portal in this scene")
	ErrInvalidPortalNormal  = errors.New("portal normal must be nonzero")
)

// CapacityError is returned when adding to a full fixed-capacity collection.
type CapacityError struct {
	Kind     string
	Capacity int
}

func (err *CapacityError) Error() string {
	return fmt.Sprintf("%s: %s capacity is %d", ErrCapacity, err.Kind, err.Capacity)
}

// Is makes errors.Is(err, ErrCapacity) hold for any CapacityError.
func (err *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// Bounded is a fixed-capacity vector. Pushing past the capacity is rejected with a *CapacityError; elements are
// never dropped or overwritten.
type Bounded[T any] struct {
	kind  string
	items []T
}

// NewBounded returns an empty Bounded of the given capacity. Kind names the collection in errors ("scene", "portal").
func NewBounded[T any](kind string, capacity int) Bounded[T] {
	return Bounded[T]{
		kind:  kind,
		items: make([]T, 0, capacity),
	}
}

// Push appends item, returning its index.
func (b *Bounded[T]) Push(item T) (int, error) {
	if len(b.items) == cap(b.items) {
		return -1, &CapacityError{Kind: b.kind, Capacity: cap(b.items)}
	}
	b.items = append(b.items, item)
	return len(b.items) - 1, nil
}

// Len returns the live count.
func (b *Bounded[T]) Len() int { return len(b.items) }

// Cap returns the fixed capacity.
func (b *Bounded[T]) Cap() int { return cap(b.items) }

// At returns a pointer to the element at index i, or nil when i is out of range.
func (b *Bounded[T]) At(i int) *T {
	if i < 0 || i >= len(b.items) {
		return nil
	}
	return &b.items[i]
}

// Slice returns the live elements. The slice aliases the Bounded's storage.
func (b *Bounded[T]) Slice() []T {
	return b.items
}
