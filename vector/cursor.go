package vector

// Cursor is a random-access position within a Vector. Its validity window is [Begin(), End()]:
// arithmetic that leaves that window, or dereferencing End(), is a caller error. A cursor is
// invalidated by any operation that reallocates the owning Vector's buffer.
//
// Cursors are comparable with == and !=, and the relational methods compare positions within
// the same Vector.
type Cursor[T any] struct {
	owner *Vector[T]
	pos   int
}

// Value returns a pointer to the element under the cursor
func (c Cursor[T]) Value() *T {
	return &c.owner.buffer[c.pos]
}

// At returns a pointer to the element offset slots from the cursor
func (c Cursor[T]) At(offset int) *T {
	return &c.owner.buffer[c.pos+offset]
}

// Index returns the cursor's position relative to Begin()
func (c Cursor[T]) Index() int { return c.pos }

// Add returns a cursor n slots toward the back
func (c Cursor[T]) Add(n int) Cursor[T] {
	return Cursor[T]{owner: c.owner, pos: c.pos + n}
}

// Sub returns a cursor n slots toward the front
func (c Cursor[T]) Sub(n int) Cursor[T] {
	return Cursor[T]{owner: c.owner, pos: c.pos - n}
}

// Distance returns the number of slots from other to c
func (c Cursor[T]) Distance(other Cursor[T]) int {
	return c.pos - other.pos
}

// Next advances the cursor one slot toward the back
func (c *Cursor[T]) Next() { c.pos++ }

// Prev moves the cursor one slot toward the front
func (c *Cursor[T]) Prev() { c.pos-- }

func (c Cursor[T]) Equal(other Cursor[T]) bool        { return c == other }
func (c Cursor[T]) NotEqual(other Cursor[T]) bool     { return c != other }
func (c Cursor[T]) Less(other Cursor[T]) bool         { return c.pos < other.pos }
func (c Cursor[T]) LessEqual(other Cursor[T]) bool    { return c.pos <= other.pos }
func (c Cursor[T]) Greater(other Cursor[T]) bool      { return c.pos > other.pos }
func (c Cursor[T]) GreaterEqual(other Cursor[T]) bool { return c.pos >= other.pos }
