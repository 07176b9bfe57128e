// Package colors loads the static channel id -> display color table.
//
// The table is read once at startup and never mutated afterwards, so a
// Palette can be shared by any number of goroutines without locking.
package colors

import (
	"context"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Palette is an immutable channel id -> color lookup.
type Palette struct {
	byID map[string]string
}

// New builds a Palette from a copy of m.
func New(m map[string]string) *Palette {
	p := &Palette{byID: make(map[string]string, len(m))}
	for id, c := range m {
		p.byID[id] = c
	}
	return p
}

// Lookup returns the configured color for a channel id.
func (p *Palette) Lookup(channelID string) (string, bool) {
	if p == nil {
		return "", false
	}
	c, ok := p.byID[channelID]
	return c, ok
}

// Len reports the number of configured channels.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byID)
}

// Load reads a flat {"<channel_id>": "<css color>"} table from a JSON or YAML
// file. An empty path yields an empty palette.
func Load(_ context.Context, path string) (*Palette, error) {
	if path == "" {
		return New(nil), nil
	}

	// JSON is a subset of YAML, so one parser covers both file flavours.
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadColors, path, err)
	}

	m := make(map[string]string, len(k.Keys()))
	for _, id := range k.Keys() {
		c, ok := k.Get(id).(string)
		if !ok || strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("%w: channel %s: color must be a non-empty string", ErrInvalidColor, id)
		}
		m[id] = strings.TrimSpace(c)
	}
	return New(m), nil
}
