// Package linecatalog loads optional rider-facing metadata for network lines:
// display name, colour and whether a line is a walking transfer.
package linecatalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	KindRide = "ride"
	KindWalk = "walk"
)

type Line struct {
	Code  string `yaml:"code" json:"code" validate:"required"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color,omitempty" validate:"omitempty,hexcolor"`
	Kind  string `yaml:"kind" json:"kind" validate:"omitempty,oneof=ride walk"`
}

type Catalog struct {
	Lines []Line `yaml:"lines" validate:"dive"`

	byCode map[string]int
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read line catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode line catalog: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("validate line catalog: %w", err)
	}

	c.byCode = make(map[string]int, len(c.Lines))
	for i := range c.Lines {
		l := &c.Lines[i]
		if _, dup := c.byCode[l.Code]; dup {
			return nil, fmt.Errorf("line %q listed twice", l.Code)
		}
		if l.Kind == "" {
			l.Kind = KindRide
		}
		if l.Name == "" {
			l.Name = l.Code
		}
		c.byCode[l.Code] = i
	}
	return &c, nil
}

// Lookup returns the catalog entry for a line code. A nil catalog knows nothing.
func (c *Catalog) Lookup(code string) (Line, bool) {
	if c == nil {
		return Line{}, false
	}
	i, ok := c.byCode[code]
	if !ok {
		return Line{}, false
	}
	return c.Lines[i], true
}

// TransferLines lists the codes of every walk line.
func (c *Catalog) TransferLines() []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, l := range c.Lines {
		if l.Kind == KindWalk {
			out = append(out, l.Code)
		}
	}
	return out
}
