package storefront

import (
	"time"

	"saffron-order-desk/internal/catalog"
	"saffron-order-desk/internal/order"
)

// View is the overlay currently shown. The modes are mutually exclusive.
type View string

const (
	ViewNone    View = "none"
	ViewCart    View = "cart"
	ViewProduct View = "product"
)

type State struct {
	Order *order.Order
	View  View

	ActiveProductID string
	GalleryIndex    int

	AwaitingNote     bool
	AwaitingQuantity string // product id whose quantity is being typed

	MessageID int
	UpdatedAt time.Time

	cat *catalog.Catalog
}

func NewState(cat *catalog.Catalog) *State {
	return &State{
		Order: order.New(cat.IDs()),
		View:  ViewNone,
		cat:   cat,
	}
}

func (s *State) Catalog() *catalog.Catalog {
	return s.cat
}

func (s *State) Clone() State {
	out := *s
	out.Order = s.Order.Clone()
	return out
}

func (s *State) OpenCart() {
	s.clearProduct()
	s.View = ViewCart
}

func (s *State) CloseCart() {
	if s.View == ViewCart {
		s.View = ViewNone
	}
}

func (s *State) ToggleCart() {
	if s.View == ViewCart {
		s.CloseCart()
		return
	}
	s.OpenCart()
}

// OpenProduct shows the detail overlay for id and seeds its draft from the
// cart. Unknown ids leave the state untouched.
func (s *State) OpenProduct(id string) bool {
	if !s.cat.Has(id) {
		return false
	}
	s.ActiveProductID = id
	s.GalleryIndex = 0
	s.AwaitingQuantity = ""
	s.Order.OpenForEditing(id)
	s.View = ViewProduct
	return true
}

func (s *State) CloseProduct() {
	s.clearProduct()
	if s.View == ViewProduct {
		s.View = ViewNone
	}
}

// CloseAll returns to the bare catalog grid.
func (s *State) CloseAll() {
	s.clearProduct()
	s.AwaitingNote = false
	s.AwaitingQuantity = ""
	s.View = ViewNone
}

func (s *State) clearProduct() {
	s.ActiveProductID = ""
	s.GalleryIndex = 0
}

// ActiveProduct reports the product behind the detail overlay, if any.
func (s *State) ActiveProduct() (catalog.Product, bool) {
	if s.View != ViewProduct || s.ActiveProductID == "" {
		return catalog.Product{}, false
	}
	return s.cat.Product(s.ActiveProductID)
}

// AddToCart commits the draft for id from the grid and opens the cart.
func (s *State) AddToCart(id string) bool {
	if !s.cat.Has(id) {
		return false
	}
	s.Order.AddFromDraft(id)
	s.OpenCart()
	return true
}

// AddActiveProductToCart commits the active product's draft, closes the
// detail overlay and opens the cart. Without an active product it does
// nothing.
func (s *State) AddActiveProductToCart() bool {
	p, ok := s.ActiveProduct()
	if !ok {
		return false
	}
	s.Order.AddFromDraft(p.ID)
	s.CloseProduct()
	s.OpenCart()
	return true
}

func (s *State) ActiveGallery() []string {
	p, ok := s.ActiveProduct()
	if !ok {
		return nil
	}
	return p.EffectiveGallery()
}

func (s *State) ActiveImage() string {
	gallery := s.ActiveGallery()
	if len(gallery) == 0 {
		return ""
	}
	if s.GalleryIndex < 0 || s.GalleryIndex >= len(gallery) {
		return gallery[0]
	}
	return gallery[s.GalleryIndex]
}

// SelectImage moves to gallery image idx; out of range indexes are ignored.
func (s *State) SelectImage(idx int) {
	n := len(s.ActiveGallery())
	if idx < 0 || idx >= n {
		return
	}
	s.GalleryIndex = idx
}

func (s *State) NextImage() {
	s.stepImage(1)
}

func (s *State) PrevImage() {
	s.stepImage(-1)
}

func (s *State) stepImage(delta int) {
	n := len(s.ActiveGallery())
	if n == 0 {
		s.GalleryIndex = 0
		return
	}
	s.GalleryIndex = ((s.GalleryIndex+delta)%n + n) % n
}

func (s *State) RemoveFromCart(id string) {
	s.Order.Remove(id)
	if s.AwaitingQuantity == id {
		s.AwaitingQuantity = ""
	}
}

// ClearCart resets the whole in-progress order.
func (s *State) ClearCart() {
	s.Order.Clear()
	s.AwaitingNote = false
	s.AwaitingQuantity = ""
}
