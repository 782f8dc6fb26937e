package order

import "strings"

// Order is the in-progress order for one visitor: draft quantities, the
// cart and the free-text note. Draft changes flow into the cart only for
// products already in it; cart changes never touch unrelated drafts.
type Order struct {
	drafts *Drafts
	cart   *Cart
	note   string
}

func New(productIDs []string) *Order {
	return &Order{
		drafts: NewDrafts(productIDs),
		cart:   NewCart(),
	}
}

func (o *Order) Draft(id string) int {
	return o.drafts.Get(id)
}

func (o *Order) Drafts() map[string]int {
	return o.drafts.Snapshot()
}

func (o *Order) Cart() *Cart {
	return o.cart
}

// SetDraft clamps raw, stores it as the draft for id and, when id is in the
// cart, overwrites the committed quantity with the same value.
func (o *Order) SetDraft(id string, raw float64) int {
	q := Clamp(raw)
	o.drafts.set(id, q)
	if o.cart.Contains(id) {
		o.cart.AddOrUpdate(id, q)
	}
	return q
}

func (o *Order) SetDraftText(id, text string) int {
	return o.SetDraft(id, float64(ParseQuantity(text)))
}

func (o *Order) StepDraft(id string, delta int) int {
	return o.SetDraft(id, float64(o.Draft(id)+delta))
}

// OpenForEditing seeds the draft from the cart when id is in it and leaves
// the current draft alone otherwise.
func (o *Order) OpenForEditing(id string) int {
	if q, ok := o.cart.Quantity(id); ok {
		o.drafts.set(id, q)
		return q
	}
	q := o.drafts.Get(id)
	o.drafts.set(id, q)
	return q
}

func (o *Order) AddOrUpdate(id string, quantity int) {
	o.cart.AddOrUpdate(id, quantity)
}

// AddFromDraft commits the current draft for id.
func (o *Order) AddFromDraft(id string) int {
	q := o.drafts.Get(id)
	o.cart.AddOrUpdate(id, q)
	return q
}

// Remove drops id from the cart and resets its draft so a later add starts
// from MinQuantity.
func (o *Order) Remove(id string) {
	o.cart.Remove(id)
	o.drafts.set(id, MinQuantity)
}

// Clear empties the cart, the note and every draft.
func (o *Order) Clear() {
	o.cart.Clear()
	o.note = ""
	o.drafts.ResetAll()
}

func (o *Order) ResetDrafts() {
	o.drafts.ResetAll()
}

func (o *Order) SetNote(note string) {
	o.note = note
}

func (o *Order) Note() string {
	return o.note
}

func (o *Order) TotalItemCount() int {
	return o.cart.TotalItemCount()
}

func (o *Order) IsEmpty() bool {
	return o.cart.IsEmpty()
}

func (o *Order) Clone() *Order {
	return &Order{
		drafts: o.drafts.Clone(),
		cart:   o.cart.Clone(),
		note:   o.note,
	}
}

func trimmedNote(note string) string {
	return strings.TrimSpace(note)
}
