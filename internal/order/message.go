package order

import (
	"fmt"
	"strings"

	"saffron-order-desk/internal/catalog"
)

const (
	orderLeadIn  = "I would like to place an order:\n"
	orderClosing = "Please share availability, best pricing, and payment details.\nThank you!"
)

// Line is a cart entry resolved against the catalog.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// CartLines resolves cart entries in catalog order. Ids the catalog does not
// know are skipped.
func CartLines(cat *catalog.Catalog, cart *Cart) []Line {
	if cat == nil || cart == nil || cart.IsEmpty() {
		return nil
	}
	out := make([]Line, 0, cart.Len())
	for _, p := range cat.Products {
		q, ok := cart.Quantity(p.ID)
		if !ok {
			continue
		}
		out = append(out, Line{Product: p, Quantity: q})
	}
	return out
}

// ComposeMessage renders the order text handed to the messaging app. An
// empty cart yields the catalog's default inquiry regardless of the note.
func ComposeMessage(cat *catalog.Catalog, cart *Cart, note string) string {
	lines := CartLines(cat, cart)
	if len(lines) == 0 {
		return cat.Brand.DefaultMessage
	}

	rendered := make([]string, 0, len(lines))
	for i, l := range lines {
		rendered = append(rendered, fmt.Sprintf("%d. %s x %d (%s) - %s",
			i+1, l.Product.Name, l.Quantity, l.Product.Unit, l.Product.PriceRange))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Hello %s team,\n\n", cat.Brand.Name))
	b.WriteString(orderLeadIn)
	b.WriteString(strings.Join(rendered, "\n"))
	b.WriteString("\n\n")

	if n := trimmedNote(note); n != "" {
		b.WriteString("Notes: " + n + "\n\n")
	}

	b.WriteString(orderClosing)
	return b.String()
}

func (o *Order) Message(cat *catalog.Catalog) string {
	return ComposeMessage(cat, o.cart, o.note)
}

func (o *Order) Lines(cat *catalog.Catalog) []Line {
	return CartLines(cat, o.cart)
}

// CheckoutLink is the WhatsApp deep link for the current order.
func (o *Order) CheckoutLink(cat *catalog.Catalog) string {
	return WhatsAppLink(cat.Brand.WhatsAppNumber, o.Message(cat))
}
