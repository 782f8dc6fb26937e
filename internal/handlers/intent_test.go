package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntent(t *testing.T) {
	cases := map[string]intent{
		"":                      intentNone,
		"hello":                 intentNone,
		"Show my CART":          intentCart,
		"what's in my basket?":  intentCart,
		"send my cart please":   intentCheckout,
		"checkout":              intentCheckout,
		"where are you located": intentContact,
		"saffron prices":        intentCatalog,
		"menu":                  intentCatalog,
	}
	for in, want := range cases {
		assert.Equal(t, want, detectIntent(in), in)
	}
}
