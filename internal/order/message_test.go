package order

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saffron-order-desk/internal/catalog"
)

func TestComposeMessageEmptyCart(t *testing.T) {
	cat := catalog.Default()

	for _, note := range []string{"", "   ", "please call me"} {
		assert.Equal(t, cat.Brand.DefaultMessage, ComposeMessage(cat, NewCart(), note))
	}
}

func TestComposeMessageExample(t *testing.T) {
	cat := catalog.Default()
	cart := NewCart()
	cart.AddOrUpdate("pistachios", 1)
	cart.AddOrUpdate("mongra-saffron", 2)

	want := "Hello Raj Saffron & Nuts team,\n\n" +
		"I would like to place an order:\n" +
		"1. Raj Signature Mongra Saffron x 2 (1 g | 2 g glass vials - bulk lots on request) - Rs 550 - 950 per g\n" +
		"2. Turkish Antep Pistachios x 1 (500 g | 1 kg zip locks - 15 kg bulk) - Rs 2,350 - 2,750 per kg\n\n" +
		"Please share availability, best pricing, and payment details.\nThank you!"

	got := ComposeMessage(cat, cart, "")
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "Notes:")
}

func TestComposeMessageNote(t *testing.T) {
	cat := catalog.Default()
	cart := NewCart()
	cart.AddOrUpdate("medjool-dates", 3)

	got := ComposeMessage(cat, cart, "  deliver to Jaipur office \n")
	assert.Contains(t, got, "\n\nNotes: deliver to Jaipur office\n\nPlease share availability")

	got = ComposeMessage(cat, cart, " \t\n")
	assert.NotContains(t, got, "Notes:")
}

func TestComposeMessageCatalogOrder(t *testing.T) {
	cat := catalog.Default()
	ids := cat.IDs()

	forward := NewCart()
	backward := NewCart()
	for i := range ids {
		forward.AddOrUpdate(ids[i], i+1)
		j := len(ids) - 1 - i
		backward.AddOrUpdate(ids[j], j+1)
	}

	msg := ComposeMessage(cat, forward, "")
	require.Equal(t, msg, ComposeMessage(cat, backward, ""))

	numbered := 0
	for _, line := range strings.Split(msg, "\n") {
		if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.' {
			numbered++
		}
	}
	assert.Equal(t, len(ids), numbered)

	last := -1
	for i, p := range cat.Products {
		idx := strings.Index(msg, p.Name+" x ")
		require.GreaterOrEqual(t, idx, 0, p.ID)
		assert.Greater(t, idx, last, p.ID)
		assert.Contains(t, msg, fmt.Sprintf("%d. %s x ", i+1, p.Name))
		last = idx
	}
}

func TestComposeMessageSkipsUnknownIDs(t *testing.T) {
	cat := catalog.Default()
	cart := NewCart()
	cart.AddOrUpdate("walnuts", 2)

	assert.Equal(t, cat.Brand.DefaultMessage, ComposeMessage(cat, cart, ""))

	cart.AddOrUpdate("pistachios", 1)
	assert.Contains(t, ComposeMessage(cat, cart, ""), "1. Turkish Antep Pistachios x 1")
}

func TestOrderCheckoutLink(t *testing.T) {
	cat := catalog.Default()
	o := New(cat.IDs())

	assert.Equal(t,
		"https://wa.me/919876543210?text="+EncodeURIComponent(cat.Brand.DefaultMessage),
		o.CheckoutLink(cat))

	o.AddOrUpdate("pistachios", 2)
	link := o.CheckoutLink(cat)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text=Hello%20Raj%20Saffron%20%26%20Nuts%20team%2C%0A%0A"))
	assert.Len(t, o.Lines(cat), 1)
}
