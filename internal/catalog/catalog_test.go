package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	require.Len(t, c.Products, 6)
	assert.Equal(t, "Raj Saffron & Nuts", c.Brand.Name)
	assert.Equal(t, "+91 98765 43210", c.Brand.WhatsAppNumber)
	assert.Equal(t, []string{
		"mongra-saffron",
		"iranian-negin",
		"afghan-saffron",
		"mamra-almonds",
		"pistachios",
		"medjool-dates",
	}, c.IDs())

	p, ok := c.Product("pistachios")
	require.True(t, ok)
	assert.Equal(t, "Turkish Antep Pistachios", p.Name)
	assert.Equal(t, "Rs 2,350 - 2,750 per kg", p.PriceRange)
	assert.Equal(t, "500 g | 1 kg zip locks - 15 kg bulk", p.Unit)
	assert.Len(t, p.Highlights, 3)

	assert.Len(t, c.ServiceHighlights, 4)
	assert.Len(t, c.QualityChecklist, 4)
	assert.Len(t, c.Fulfilment, 3)
}

func TestLookupUnknownProduct(t *testing.T) {
	c := Default()

	_, ok := c.Product("saffron-soap")
	assert.False(t, ok)
	assert.False(t, c.Has("saffron-soap"))

	_, err := c.Lookup("saffron-soap")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestEffectiveGallery(t *testing.T) {
	t.Run("uses gallery when present", func(t *testing.T) {
		p := Product{Image: "a.jpg", Gallery: []string{"b.jpg", "c.jpg"}}
		assert.Equal(t, []string{"b.jpg", "c.jpg"}, p.EffectiveGallery())
	})

	t.Run("falls back to primary image", func(t *testing.T) {
		p := Product{Image: "a.jpg"}
		assert.Equal(t, []string{"a.jpg"}, p.EffectiveGallery())
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		p := Product{Image: "a.jpg", Gallery: []string{"b.jpg"}}
		g := p.EffectiveGallery()
		g[0] = "changed"
		assert.Equal(t, "b.jpg", p.Gallery[0])
	})
}

func TestParseValidation(t *testing.T) {
	_, err := Parse([]byte(`
brand:
  name: Shop
products:
  - id: a
    name: A
    unit: 1 kg
    price_range: Rs 1
    image: a.jpg
  - id: a
    name: ""
    unit: 1 kg
    price_range: Rs 1
    image: a.jpg
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "brand.default_message is required")
	assert.Contains(t, msg, "brand.whatsapp_number is required")
	assert.Contains(t, msg, `duplicate id "a"`)
	assert.Contains(t, msg, `product "a": name is required`)
}

func TestParseRejectsEmptyProductList(t *testing.T) {
	_, err := Parse([]byte("brand:\n  name: Shop\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one product is required")
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns bundled catalog", func(t *testing.T) {
		c, err := Load("  ")
		require.NoError(t, err)
		assert.Equal(t, "Raj Saffron & Nuts", c.Brand.Name)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, defaultCatalogYAML, 0o600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.True(t, c.Has("medjool-dates"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
