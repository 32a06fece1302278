package field

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrShapeMismatch = errors.New("field: particle table columns differ in length")

// Table is the particle table, one row per particle, kept as parallel
// columns. Only Current changes after Build returns and only Step writes it.
type Table struct {
	Initial     []mgl32.Vec3
	Current     []mgl32.Vec3
	Destination []mgl32.Vec3
	Rates       []float32

	// Sampled is the number of image-derived rows; ambient rows follow them.
	Sampled int

	dirty    bool
	released bool
}

func newTable(capacity int) *Table {
	return &Table{
		Initial:     make([]mgl32.Vec3, 0, capacity),
		Current:     make([]mgl32.Vec3, 0, capacity),
		Destination: make([]mgl32.Vec3, 0, capacity),
		Rates:       make([]float32, 0, capacity),
	}
}

func (t *Table) push(initial, destination mgl32.Vec3, rate float32) {
	t.Initial = append(t.Initial, initial)
	t.Current = append(t.Current, initial)
	t.Destination = append(t.Destination, destination)
	t.Rates = append(t.Rates, rate)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Current)
}

// Ambient is the number of rows that were not derived from the image.
func (t *Table) Ambient() int {
	return t.Len() - t.Sampled
}

func (t *Table) Validate() error {
	n := len(t.Current)
	if len(t.Initial) != n || len(t.Destination) != n || len(t.Rates) != n {
		return fmt.Errorf("%w: initial=%d current=%d destination=%d rates=%d",
			ErrShapeMismatch, len(t.Initial), n, len(t.Destination), len(t.Rates))
	}
	if t.Sampled < 0 || t.Sampled > n {
		return fmt.Errorf("%w: sampled=%d rows=%d", ErrShapeMismatch, t.Sampled, n)
	}
	return nil
}

// MustValidate panics on a broken table. A mismatch can only come from a bug
// in this package, so there is nothing sensible to truncate to.
func (t *Table) MustValidate() {
	if err := t.Validate(); err != nil {
		panic(err)
	}
}

func (t *Table) MarkDirty() { t.dirty = true }

func (t *Table) Dirty() bool { return t.dirty }

// TakeDirty reports whether positions changed since the last call and
// clears the flag. Renderers call it right before uploading.
func (t *Table) TakeDirty() bool {
	d := t.dirty
	t.dirty = false
	return d
}

// Release drops every column. Step on a released table does nothing.
func (t *Table) Release() {
	if t == nil {
		return
	}
	t.Initial = nil
	t.Current = nil
	t.Destination = nil
	t.Rates = nil
	t.Sampled = 0
	t.dirty = false
	t.released = true
}

func (t *Table) Released() bool {
	return t == nil || t.released
}
