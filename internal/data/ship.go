package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ShipTemplate holds static stats for an alien ship class.
type ShipTemplate struct {
	Class           string  `yaml:"class"` // scout, fighter, cruiser, hunter, mothership
	Hull            int32   `yaml:"hull"`
	Speed           float64 `yaml:"speed"`            // m/s
	DetectionRadius float64 `yaml:"detection_radius"` // starts Tracking
	AggroRadius     float64 `yaml:"aggro_radius"`     // starts Engaging
	ShootingRange   float64 `yaml:"shooting_range"`   // hold-and-fire inside this
	WeaponID        string  `yaml:"weapon_id"`
	Credits         int64   `yaml:"credits"` // base kill reward before Lua adjustment
	Score           int64   `yaml:"score"`
	MinDanger       int     `yaml:"min_danger"` // lowest sector danger this class appears in
	Weight          int     `yaml:"weight"`     // spawn weight within eligible classes
	Capital         bool    `yaml:"capital"`    // motherships: one per sector, second weapon
}

type shipListFile struct {
	Ships []ShipTemplate `yaml:"ships"`
}

// ShipTable holds alien ship templates indexed by class key.
type ShipTable struct {
	templates map[string]*ShipTemplate
	order     []string // declaration order, for stable weighted rolls
}

// LoadShipTable loads alien ship templates from a YAML file.
func LoadShipTable(path string) (*ShipTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ship_list: %w", err)
	}
	var f shipListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse ship_list: %w", err)
	}
	t := &ShipTable{templates: make(map[string]*ShipTemplate, len(f.Ships))}
	for i := range f.Ships {
		s := &f.Ships[i]
		if s.Class == "" {
			return nil, fmt.Errorf("ship %d: missing class", i)
		}
		if s.Hull <= 0 {
			return nil, fmt.Errorf("ship %q: hull must be positive", s.Class)
		}
		if s.AggroRadius > s.DetectionRadius {
			return nil, fmt.Errorf("ship %q: aggro_radius %f exceeds detection_radius %f",
				s.Class, s.AggroRadius, s.DetectionRadius)
		}
		if _, dup := t.templates[s.Class]; dup {
			return nil, fmt.Errorf("ship %q: duplicate class", s.Class)
		}
		t.templates[s.Class] = s
		t.order = append(t.order, s.Class)
	}
	return t, nil
}

// Get returns a ship template by class key, or nil if not found.
func (t *ShipTable) Get(class string) *ShipTemplate {
	return t.templates[class]
}

// Eligible returns, in declaration order, the non-capital classes that may
// spawn in a sector of the given danger level.
func (t *ShipTable) Eligible(danger int) []*ShipTemplate {
	var out []*ShipTemplate
	for _, class := range t.order {
		s := t.templates[class]
		if !s.Capital && s.MinDanger <= danger {
			out = append(out, s)
		}
	}
	return out
}

// Capital returns the capital-class template for the given danger level, or
// nil when none qualifies.
func (t *ShipTable) Capital(danger int) *ShipTemplate {
	for _, class := range t.order {
		s := t.templates[class]
		if s.Capital && s.MinDanger <= danger {
			return s
		}
	}
	return nil
}

// Count returns the number of loaded templates.
func (t *ShipTable) Count() int {
	return len(t.templates)
}
