package graph

import (
	"fmt"

	"github.com/n9te9/goliteql/schema"
)

var productFields = []string{"id", "title", "type", "description", "filename", "height", "width", "price", "rating"}

// CheckSDL parses src and verifies that it declares the Product type with every catalog field.
func CheckSDL(src []byte) error {
	s, err := schema.NewParser(schema.NewLexer()).Parse(src)
	if err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}

	for _, typ := range s.Types {
		if string(typ.Name) != "Product" {
			continue
		}

		declared := make(map[string]struct{}, len(typ.Fields))
		for _, f := range typ.Fields {
			declared[string(f.Name)] = struct{}{}
		}

		for _, name := range productFields {
			if _, ok := declared[name]; !ok {
				return fmt.Errorf("type Product is missing field %q", name)
			}
		}

		return nil
	}

	return fmt.Errorf("type Product is not declared")
}
