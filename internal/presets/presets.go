// Package presets loads named engine presets from a YAML document: block
// size and the IR normalization target. The number of head partitions (K) is
// fixed by the engine and is not part of a preset. This mirrors how the teacher pack loads its own YAML-backed
// configuration (doismellburning-samoyed's deviceid.go tocalls.yaml), using
// the same gopkg.in/yaml.v3 library, adapted here to a small typed struct
// instead of a loosely-typed map since the preset schema is fixed and known
// up front.
package presets

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset names a reusable engine configuration. The head branch's partition
// count K is a fixed engine invariant (spec section 4.4), not a preset
// knob, so it is not represented here.
type Preset struct {
	Name string `yaml:"name"`

	// BlockSize is the engine's configured block size B, must be a power of
	// two.
	BlockSize int `yaml:"block_size"`

	// NormalizeTarget is the IR normalization target passed to
	// convolve.NormalizeMono/NormalizeStereo; 0 disables normalization.
	NormalizeTarget float32 `yaml:"normalize_target"`
}

// Catalogue is a named collection of presets, as loaded from a YAML document.
type Catalogue struct {
	Presets []Preset `yaml:"presets"`
}

// Default is the catalogue entry used when no preset is named: block size
// 128, normalization target 20 — spec.md's own defaults.
var Default = Preset{
	Name:            "default",
	BlockSize:       128,
	NormalizeTarget: 20,
}

// Load reads a Catalogue from r.
func Load(r io.Reader) (*Catalogue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("presets: read: %w", err)
	}

	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("presets: parse: %w", err)
	}

	return &cat, nil
}

// LoadFile opens and loads a Catalogue from path.
func LoadFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("presets: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Find returns the named preset, or Default and false if no preset by that
// name exists in the catalogue.
func (c *Catalogue) Find(name string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}

	return Default, false
}
