package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponTemplate holds static stats for a ship weapon.
type WeaponTemplate struct {
	ID              string  `yaml:"id"`
	Cooldown        float64 `yaml:"cooldown"` // seconds between shots
	MaxProjectiles  int     `yaml:"max_projectiles"`
	ProjectileSpeed float64 `yaml:"projectile_speed"` // m/s
	Lifespan        float64 `yaml:"lifespan"`         // seconds before a projectile expires
	Damage          int32   `yaml:"damage"`
	MuzzleOffset    float64 `yaml:"muzzle_offset"` // metres ahead of the owner
	HitRadius       float64 `yaml:"hit_radius"`
}

type weaponListFile struct {
	Weapons []WeaponTemplate `yaml:"weapons"`
}

// WeaponTable holds weapon templates indexed by ID.
type WeaponTable struct {
	templates map[string]*WeaponTemplate
}

// LoadWeaponTable loads weapon templates from a YAML file.
func LoadWeaponTable(path string) (*WeaponTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon_list: %w", err)
	}
	var f weaponListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse weapon_list: %w", err)
	}
	t := &WeaponTable{templates: make(map[string]*WeaponTemplate, len(f.Weapons))}
	for i := range f.Weapons {
		w := &f.Weapons[i]
		if w.ID == "" {
			return nil, fmt.Errorf("weapon %d: missing id", i)
		}
		if w.Cooldown < 0 {
			return nil, fmt.Errorf("weapon %q: negative cooldown", w.ID)
		}
		if w.MaxProjectiles <= 0 {
			return nil, fmt.Errorf("weapon %q: max_projectiles must be positive", w.ID)
		}
		if w.Lifespan <= 0 {
			return nil, fmt.Errorf("weapon %q: lifespan must be positive", w.ID)
		}
		t.templates[w.ID] = w
	}
	return t, nil
}

// Get returns a weapon template by ID, or nil if not found.
func (t *WeaponTable) Get(id string) *WeaponTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *WeaponTable) Count() int {
	return len(t.templates)
}
