package order

// Cart maps product ids to committed quantities. A key's presence is the
// membership signal; a zero quantity is never stored.
type Cart struct {
	q map[string]int
}

func NewCart() *Cart {
	return &Cart{q: make(map[string]int)}
}

// AddOrUpdate writes the clamped quantity for id.
func (c *Cart) AddOrUpdate(id string, quantity int) {
	c.q[id] = ClampInt(quantity)
}

func (c *Cart) Quantity(id string) (int, bool) {
	q, ok := c.q[id]
	return q, ok
}

func (c *Cart) Contains(id string) bool {
	_, ok := c.q[id]
	return ok
}

// Remove deletes id. Removing an absent id is a no-op.
func (c *Cart) Remove(id string) {
	delete(c.q, id)
}

func (c *Cart) Clear() {
	clear(c.q)
}

// TotalItemCount sums quantities, not distinct products.
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, q := range c.q {
		total += q
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.q) == 0
}

func (c *Cart) Len() int {
	return len(c.q)
}

func (c *Cart) Snapshot() map[string]int {
	out := make(map[string]int, len(c.q))
	for k, v := range c.q {
		out[k] = v
	}
	return out
}

func (c *Cart) Clone() *Cart {
	return &Cart{q: c.Snapshot()}
}
