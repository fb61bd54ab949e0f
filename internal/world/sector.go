package world

import (
	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/geom"
)

// DeepSpaceName is the sentinel sector name reported when a position lies
// outside every sector sphere.
const DeepSpaceName = "Deep Space"

// Sector is a named spherical region owning its population. Created once at
// universe generation; membership changes only through destruction and
// respawn. Entities hold no back-reference to their sector, so removal is a
// linear search by entity ID.
type Sector struct {
	Name   string
	Center geom.Vec3
	Radius float64
	Danger int // 1-4

	Planets        []*Planet
	AsteroidFields []*AsteroidField
	Nebulae        []*Nebula
	Anomalies      []*Anomaly
	Aliens         []*AlienShip
}

// Contains reports whether a position lies inside the sector sphere.
func (s *Sector) Contains(pos geom.Vec3) bool {
	return pos.InSphere(s.Center, s.Radius)
}

// RemoveAlien drops the alien with the given ID from the sector's roster.
// Returns false when the ID is not a member.
func (s *Sector) RemoveAlien(id ecs.EntityID) bool {
	for i, a := range s.Aliens {
		if a.ID == id {
			last := len(s.Aliens) - 1
			s.Aliens[i] = s.Aliens[last]
			s.Aliens[last] = nil
			s.Aliens = s.Aliens[:last]
			return true
		}
	}
	return false
}
