package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saffron-order-desk/internal/catalog"
	"saffron-order-desk/internal/order"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CATALOG_PATH", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateBundledCatalog(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Equal(t, "catalog ok: Raj Saffron & Nuts, 6 products\n", out)
}

func TestValidateRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brand:\n  name: Test\nproducts: []\n"), 0o644))

	_, err := run(t, "validate", "--catalog", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one product is required")
}

func TestProductsListsCatalogOrder(t *testing.T) {
	out, err := run(t, "products")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "mongra-saffron\t"))
	assert.True(t, strings.HasPrefix(lines[5], "medjool-dates\t"))
}

func TestComposeMessage(t *testing.T) {
	out, err := run(t, "compose", "--item", "pistachios=1", "--item", "mongra-saffron=2", "--note", "  gift wrap ")
	require.NoError(t, err)

	cat := catalog.Default()
	cart := order.NewCart()
	cart.AddOrUpdate("mongra-saffron", 2)
	cart.AddOrUpdate("pistachios", 1)
	assert.Equal(t, order.ComposeMessage(cat, cart, "gift wrap")+"\n", out)
	assert.Contains(t, out, "Notes: gift wrap\n\n")
}

func TestComposeClampsAndDefaults(t *testing.T) {
	out, err := run(t, "compose", "--item", "medjool-dates=500", "--item", "pistachios")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Turkish Antep Pistachios x 1")
	assert.Contains(t, out, "2. Premium Medjool Dates x 99")
}

func TestComposeEmptyIsDefaultMessage(t *testing.T) {
	out, err := run(t, "compose", "--note", "ignored")
	require.NoError(t, err)
	assert.Equal(t, catalog.Default().Brand.DefaultMessage+"\n", out)
}

func TestComposeUnknownItem(t *testing.T) {
	_, err := run(t, "compose", "--item", "saffron-tea=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrUnknownProduct)
}

func TestComposeLink(t *testing.T) {
	out, err := run(t, "compose", "--item", "mamra-almonds=3", "--link")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "https://wa.me/919876543210?text=Hello%20Raj%20Saffron%20%26%20Nuts%20team%2C%0A%0A"))
}

func TestLink(t *testing.T) {
	out, err := run(t, "link", "-m", "Hi there")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/919876543210?text=Hi%20there\n", out)

	out, err = run(t, "link")
	require.NoError(t, err)
	cat := catalog.Default()
	assert.Equal(t, order.WhatsAppLink(cat.Brand.WhatsAppNumber, cat.Brand.DefaultMessage)+"\n", out)
}

func TestContact(t *testing.T) {
	out, err := run(t, "contact")
	require.NoError(t, err)
	assert.Contains(t, out, "phone\ttel:+919876543210\n")
	assert.Contains(t, out, "email\tmailto:care@rajsaffronandnuts.com\n")
	assert.Contains(t, out, "hours\tMon - Sat | 10:00 AM - 7:00 PM IST\n")
}

func TestBuildOrderLastQuantityWins(t *testing.T) {
	o, err := buildOrder(catalog.Default(), []string{"pistachios=4", " pistachios = 7 "})
	require.NoError(t, err)
	q, ok := o.Cart().Quantity("pistachios")
	require.True(t, ok)
	assert.Equal(t, 7, q)
}
