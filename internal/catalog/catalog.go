package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

var ErrUnknownProduct = errors.New("unknown product")

type Product struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Origin      string   `yaml:"origin" json:"origin"`
	Unit        string   `yaml:"unit" json:"unit"`
	PriceRange  string   `yaml:"price_range" json:"priceRange"`
	Image       string   `yaml:"image" json:"image"`
	Gallery     []string `yaml:"gallery" json:"gallery,omitempty"`
	Highlights  []string `yaml:"highlights" json:"highlights"`
	BestFor     string   `yaml:"best_for" json:"bestFor"`
}

// EffectiveGallery returns the product gallery, or a single-image gallery
// holding the primary image when none is defined.
func (p Product) EffectiveGallery() []string {
	if len(p.Gallery) > 0 {
		out := make([]string, len(p.Gallery))
		copy(out, p.Gallery)
		return out
	}
	return []string{p.Image}
}

type Brand struct {
	Name           string `yaml:"name"`
	Tagline        string `yaml:"tagline"`
	Description    string `yaml:"description"`
	HeroNote       string `yaml:"hero_note"`
	WhatsAppNumber string `yaml:"whatsapp_number"`
	DefaultMessage string `yaml:"default_message"`
	Email          string `yaml:"email"`
	PhoneDisplay   string `yaml:"phone_display"`
	Address        string `yaml:"address"`
	BusinessHours  string `yaml:"business_hours"`
	Instagram      string `yaml:"instagram"`
}

type Highlight struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Catalog is the read-only storefront payload. Products keep file order;
// that order is the order used for listings and composed messages.
type Catalog struct {
	Brand             Brand       `yaml:"brand"`
	Products          []Product   `yaml:"products"`
	ServiceHighlights []Highlight `yaml:"service_highlights"`
	QualityChecklist  []string    `yaml:"quality_checklist"`
	Fulfilment        []Highlight `yaml:"fulfilment"`

	index map[string]int
}

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("bundled catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the bundled catalog.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.buildIndex()
	return &c, nil
}

// Validate reports every missing required field and duplicate id at once.
func (c *Catalog) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"brand.name", c.Brand.Name},
		{"brand.default_message", c.Brand.DefaultMessage},
		{"brand.whatsapp_number", c.Brand.WhatsAppNumber},
		{"brand.email", c.Brand.Email},
		{"brand.phone_display", c.Brand.PhoneDisplay},
		{"brand.address", c.Brand.Address},
		{"brand.business_hours", c.Brand.BusinessHours},
		{"brand.instagram", c.Brand.Instagram},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	if len(c.Products) == 0 {
		errs = append(errs, errors.New("at least one product is required"))
	}

	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("products[%d].id is required", i))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("products[%d]: duplicate id %q", i, id))
		}
		seen[id] = true

		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("product %q: name is required", id))
		}
		if strings.TrimSpace(p.Unit) == "" {
			errs = append(errs, fmt.Errorf("product %q: unit is required", id))
		}
		if strings.TrimSpace(p.PriceRange) == "" {
			errs = append(errs, fmt.Errorf("product %q: price_range is required", id))
		}
		if strings.TrimSpace(p.Image) == "" {
			errs = append(errs, fmt.Errorf("product %q: image is required", id))
		}
	}

	return errors.Join(errs...)
}

func (c *Catalog) buildIndex() {
	c.index = make(map[string]int, len(c.Products))
	for i, p := range c.Products {
		c.index[p.ID] = i
	}
}

func (c *Catalog) Product(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	if c.index == nil {
		for _, p := range c.Products {
			if p.ID == id {
				return p, true
			}
		}
		return Product{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.Products[i], true
}

// Lookup is Product with an error for callers at the transport edge.
func (c *Catalog) Lookup(id string) (Product, error) {
	p, ok := c.Product(id)
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
	}
	return p, nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.Product(id)
	return ok
}

// IDs returns product ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		out = append(out, p.ID)
	}
	return out
}
