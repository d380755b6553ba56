// Package catalog holds the immutable product catalog and the queries answered over it.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// ExpensiveThreshold is the price a product must exceed to be listed by Expensive.
const ExpensiveThreshold = 20.0

var (
	ErrDuplicateID = errors.New("duplicate product id")
	// ErrOutOfRange is returned for integer attributes that do not fit a GraphQL Int.
	ErrOutOfRange = errors.New("value out of 32-bit range")
)

//go:embed products.json
var defaultProducts []byte

// Product is a catalog record. Attributes missing from the source, or set to null, are nil.
type Product struct {
	ID          int      `json:"id"`
	Title       *string  `json:"title"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Filename    *string  `json:"filename"`
	Height      *int     `json:"height"`
	Width       *int     `json:"width"`
	Price       *float64 `json:"price"`
	Rating      *int     `json:"rating"`
}

// clone returns a copy of p that shares no memory with it.
func (p Product) clone() Product {
	return Product{
		ID:          p.ID,
		Title:       clonePtr(p.Title),
		Type:        clonePtr(p.Type),
		Description: clonePtr(p.Description),
		Filename:    clonePtr(p.Filename),
		Height:      clonePtr(p.Height),
		Width:       clonePtr(p.Width),
		Price:       clonePtr(p.Price),
		Rating:      clonePtr(p.Rating),
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (p Product) validate() error {
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"height", p.Height},
		{"width", p.Width},
		{"rating", p.Rating},
	} {
		if f.v != nil && (*f.v > math.MaxInt32 || *f.v < math.MinInt32) {
			return fmt.Errorf("%w: product %d %s %d", ErrOutOfRange, p.ID, f.name, *f.v)
		}
	}

	return nil
}

// Catalog is a fixed ordered sequence of products. It is never modified after New returns,
// so it is safe for concurrent use.
type Catalog struct {
	products []Product
}

func New(products []Product) (*Catalog, error) {
	seen := make(map[int]struct{}, len(products))
	copied := make([]Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}

		if err := p.validate(); err != nil {
			return nil, err
		}
		copied = append(copied, p.clone())
	}

	return &Catalog{products: copied}, nil
}

// Load decodes a JSON array of products from r. Content after the array is an error.
func Load(r io.Reader) (*Catalog, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(src, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	// a literal null decodes without error
	if products == nil {
		return nil, errors.New("failed to decode catalog: top-level value must be an array")
	}

	return New(products)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Default loads the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultProducts))
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	return c.filter(func(Product) bool { return true })
}

// ByID returns the product with the given id. The second result reports whether it was found.
func (c *Catalog) ByID(id int) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p.clone(), true
		}
	}

	return Product{}, false
}

// ByTitle returns the products whose title contains fragment. Matching is case-sensitive and
// an empty fragment matches every product with a title.
func (c *Catalog) ByTitle(fragment string) []Product {
	return c.filter(func(p Product) bool {
		return p.Title != nil && strings.Contains(*p.Title, fragment)
	})
}

// Expensive returns the products priced strictly above ExpensiveThreshold.
func (c *Catalog) Expensive() []Product {
	return c.filter(func(p Product) bool {
		return p.Price != nil && *p.Price > ExpensiveThreshold
	})
}

func (c *Catalog) filter(match func(Product) bool) []Product {
	res := make([]Product, 0)
	for _, p := range c.products {
		if match(p) {
			res = append(res, p.clone())
		}
	}

	return res
}
