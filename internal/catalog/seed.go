package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"cassa/internal/core"
)

// ErrInvalidSeed means the seed document is not valid YAML of the expected shape.
var ErrInvalidSeed = errors.New("invalid seed file")

// SeedFile is the YAML layout accepted by ImportYAML:
//
//	items:
//	  - name: Widget
//	    price: 9.99
//	    quantity: 10
type SeedFile struct {
	Items []SeedItem `yaml:"items"`
}

type SeedItem struct {
	Name     string    `yaml:"name"`
	Price    seedPrice `yaml:"price"`
	Quantity int       `yaml:"quantity"`
}

type seedPrice struct{ core.Money }

// UnmarshalYAML parses the raw scalar so 9.99 is read as text, never as a float.
func (p *seedPrice) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a scalar", n.Line)
	}
	m, err := core.ParsePrice(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	p.Money = m
	return nil
}

// ImportYAML validates every entry of the seed document and then merges them all
// into the inventory in one write. Nothing is written if any entry is invalid or
// a merge would exceed core.MaxQuantity.
func (s *Store) ImportYAML(ctx context.Context, r io.Reader) (int, error) {
	var doc SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	for i, it := range doc.Items {
		if err := core.ValidateItemInput(core.NormalizeName(it.Name), it.Price.Money, it.Quantity); err != nil {
			return 0, fmt.Errorf("seed item %d: %w", i+1, err)
		}
	}
	err := s.items.Mutate(ctx, func(items []core.Item) ([]core.Item, error) {
		for i, it := range doc.Items {
			var err error
			items, _, err = merge(items, core.NormalizeName(it.Name), it.Price.Money, it.Quantity)
			if err != nil {
				return nil, fmt.Errorf("seed item %d: %w", i+1, err)
			}
		}
		return items, nil
	})
	if err != nil {
		return 0, err
	}
	return len(doc.Items), nil
}
