package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SectorDef holds a static sector definition loaded from YAML. Counts for
// planets, asteroid fields, and nebulae are deterministic; only the enemy
// count is rolled at generation time from the danger level.
type SectorDef struct {
	Name           string  `yaml:"name"`
	CenterX        float64 `yaml:"center_x"`
	CenterY        float64 `yaml:"center_y"`
	CenterZ        float64 `yaml:"center_z"`
	Radius         float64 `yaml:"radius"`
	Danger         int     `yaml:"danger"` // 1-4, controls enemy density and class mix
	Planets        int     `yaml:"planets"`
	AsteroidFields int     `yaml:"asteroid_fields"`
	Nebulae        int     `yaml:"nebulae"`
	Anomalies      int     `yaml:"anomalies"`
}

type sectorListFile struct {
	Sectors []SectorDef `yaml:"sectors"`
}

// SectorTable holds sector definitions in declaration order. Order matters:
// point-in-sector lookups resolve overlaps first-declared-wins.
type SectorTable struct {
	defs []SectorDef
}

// LoadSectorTable loads sector definitions from a YAML file.
func LoadSectorTable(path string) (*SectorTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sector_list: %w", err)
	}
	var f sectorListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sector_list: %w", err)
	}
	for i := range f.Sectors {
		d := &f.Sectors[i]
		if d.Name == "" {
			return nil, fmt.Errorf("sector %d: missing name", i)
		}
		if d.Radius <= 0 {
			return nil, fmt.Errorf("sector %q: radius must be positive", d.Name)
		}
		if d.Danger < 1 || d.Danger > 4 {
			return nil, fmt.Errorf("sector %q: danger must be 1-4, got %d", d.Name, d.Danger)
		}
	}
	return &SectorTable{defs: f.Sectors}, nil
}

// Defs returns definitions in declaration order.
func (t *SectorTable) Defs() []SectorDef {
	return t.defs
}

// Count returns the number of loaded definitions.
func (t *SectorTable) Count() int {
	return len(t.defs)
}
