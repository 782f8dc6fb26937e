package handlers

import "strings"

type intent int

const (
	intentNone intent = iota
	intentCart
	intentCatalog
	intentCheckout
	intentContact
)

// detectIntent maps short free-text messages onto storefront actions.
// Checkout wins over cart so "send my cart" opens the link.
func detectIntent(text string) intent {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return intentNone
	}

	checks := []struct {
		intent   intent
		keywords []string
	}{
		{intentCheckout, []string{"checkout", "check out", "place order", "send order", "send my", "whatsapp", "order now"}},
		{intentCart, []string{"cart", "basket", "my order"}},
		{intentContact, []string{"contact", "address", "phone", "email", "hours", "timing", "where are you"}},
		{intentCatalog, []string{"catalog", "catalogue", "menu", "products", "price", "saffron", "nuts", "dates", "almond", "pistachio"}},
	}

	for _, c := range checks {
		for _, kw := range c.keywords {
			if strings.Contains(t, kw) {
				return c.intent
			}
		}
	}
	return intentNone
}
