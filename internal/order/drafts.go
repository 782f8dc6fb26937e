package order

// Drafts holds the quantity a visitor is considering for each product,
// independent of cart membership. Entries are overwritten, never deleted.
type Drafts struct {
	ids []string
	q   map[string]int
}

func NewDrafts(ids []string) *Drafts {
	d := &Drafts{
		ids: append([]string(nil), ids...),
		q:   make(map[string]int, len(ids)),
	}
	d.ResetAll()
	return d
}

// Get returns the draft for id, or MinQuantity when none was ever written.
func (d *Drafts) Get(id string) int {
	if q, ok := d.q[id]; ok {
		return q
	}
	return MinQuantity
}

func (d *Drafts) set(id string, quantity int) {
	d.q[id] = ClampInt(quantity)
}

// ResetAll puts every catalog product back to MinQuantity.
func (d *Drafts) ResetAll() {
	for _, id := range d.ids {
		d.q[id] = MinQuantity
	}
}

func (d *Drafts) Snapshot() map[string]int {
	out := make(map[string]int, len(d.q))
	for k, v := range d.q {
		out[k] = v
	}
	return out
}

func (d *Drafts) Clone() *Drafts {
	return &Drafts{
		ids: append([]string(nil), d.ids...),
		q:   d.Snapshot(),
	}
}
