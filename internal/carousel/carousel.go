// Package carousel keeps the three-slot template picker.
package carousel

// Position of a slot relative to the centered item.
type Position int

const (
	Left   Position = -1
	Center Position = 0
	Right  Position = 1
)

// Slot is one visible entry.
type Slot[T any] struct {
	Item     T
	Index    int
	Position Position
}

// Carousel cycles through items with wraparound at both ends.
type Carousel[T any] struct {
	items []T
	index int
}

func New[T any](items []T) *Carousel[T] {
	return &Carousel[T]{items: items}
}

func (c *Carousel[T]) Len() int { return len(c.items) }

func (c *Carousel[T]) Empty() bool { return len(c.items) == 0 }

// Index is the centered item's position in the list.
func (c *Carousel[T]) Index() int { return c.index }

// Current returns the centered item.
func (c *Carousel[T]) Current() (T, bool) {
	var zero T
	if len(c.items) == 0 {
		return zero, false
	}
	return c.items[c.index], true
}

// Select centers item i. Out of range values wrap.
func (c *Carousel[T]) Select(i int) (T, bool) {
	if len(c.items) == 0 {
		var zero T
		return zero, false
	}
	c.index = c.wrap(i)
	return c.items[c.index], true
}

func (c *Carousel[T]) Next() (T, bool) { return c.Select(c.index + 1) }

func (c *Carousel[T]) Prev() (T, bool) { return c.Select(c.index - 1) }

// Visible returns previous, center and next slots. Short lists repeat entries.
func (c *Carousel[T]) Visible() []Slot[T] {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]Slot[T], 0, 3)
	for p := Left; p <= Right; p++ {
		i := c.wrap(c.index + int(p))
		out = append(out, Slot[T]{Item: c.items[i], Index: i, Position: p})
	}
	return out
}

func (c *Carousel[T]) wrap(i int) int {
	n := len(c.items)
	return ((i % n) + n) % n
}
