package physics

import (
	"math"

	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/geom"
)

// Group is a coarse collision category. Pair filtering happens at the
// query site: a caller asks for overlaps against the groups it cares about.
type Group string

const (
	GroupPlanet     Group = "planet"
	GroupAlien      Group = "alien"
	GroupSpacecraft Group = "spacecraft"
	GroupProjectile Group = "projectile"
	GroupAsteroid   Group = "asteroid"
)

// Body is a sphere collider registered in the space.
type Body struct {
	Group    Group
	Position geom.Vec3
	Radius   float64
	Static   bool
}

type cellKey struct {
	cx, cy, cz int32
}

// Space is the collision collaborator: sphere bodies bucketed in a uniform
// 3D cell grid. Cell size is chosen so a single-cell neighbourhood covers
// typical weapon hit radii; queries widen to as many cells as the query
// sphere spans. Accessed only from the game loop goroutine — no locks.
type Space struct {
	cellSize float64
	bodies   *ecs.Store[Body]
	cells    map[cellKey]map[ecs.EntityID]struct{}

	// Largest radius ever registered. Bodies live only in the cell holding
	// their center, so every query widens its scan window by this much or a
	// large body just across a cell boundary would be skipped. Sticky across
	// removals; that only costs extra scanned cells, never misses.
	maxRadius float64
}

// NewSpace creates a space with the given broad-phase cell size. The store
// is registered with the entity registry so destroyed entities drop out of
// the space during cleanup.
func NewSpace(cellSize float64, reg *ecs.Registry) *Space {
	if cellSize <= 0 {
		cellSize = 500
	}
	s := &Space{
		cellSize: cellSize,
		bodies:   ecs.NewStore[Body](),
		cells:    make(map[cellKey]map[ecs.EntityID]struct{}),
	}
	if reg != nil {
		reg.Register(s)
	}
	return s
}

func (s *Space) key(pos geom.Vec3) cellKey {
	return cellKey{
		cx: int32(math.Floor(pos.X / s.cellSize)),
		cy: int32(math.Floor(pos.Y / s.cellSize)),
		cz: int32(math.Floor(pos.Z / s.cellSize)),
	}
}

// AddObject registers a dynamic sphere body.
func (s *Space) AddObject(id ecs.EntityID, group Group, pos geom.Vec3, radius float64) {
	s.add(id, Body{Group: group, Position: pos, Radius: radius})
}

// AddStaticObject registers a body that never moves (planets, asteroid
// fields, anomalies).
func (s *Space) AddStaticObject(id ecs.EntityID, group Group, pos geom.Vec3, radius float64) {
	s.add(id, Body{Group: group, Position: pos, Radius: radius, Static: true})
}

// AddProjectile registers a projectile body.
func (s *Space) AddProjectile(id ecs.EntityID, pos geom.Vec3, radius float64) {
	s.add(id, Body{Group: GroupProjectile, Position: pos, Radius: radius})
}

func (s *Space) add(id ecs.EntityID, b Body) {
	if s.bodies.Has(id) {
		s.Remove(id)
	}
	body := b
	s.bodies.Set(id, &body)
	if b.Radius > s.maxRadius {
		s.maxRadius = b.Radius
	}
	k := s.key(b.Position)
	cell := s.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		s.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove unregisters a body. Satisfies ecs.Removable, so entity cleanup
// also routes through here.
func (s *Space) Remove(id ecs.EntityID) {
	b, ok := s.bodies.Get(id)
	if !ok {
		return
	}
	k := s.key(b.Position)
	if cell := s.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(s.cells, k)
		}
	}
	s.bodies.Remove(id)
}

// RemoveObject is the collaborator-facing alias for Remove.
func (s *Space) RemoveObject(id ecs.EntityID) { s.Remove(id) }

// Move updates a dynamic body's position, re-bucketing when it crosses a
// cell boundary. Moving a static body is a programmer error and ignored.
func (s *Space) Move(id ecs.EntityID, pos geom.Vec3) {
	b, ok := s.bodies.Get(id)
	if !ok || b.Static {
		return
	}
	oldK := s.key(b.Position)
	newK := s.key(pos)
	b.Position = pos
	if oldK == newK {
		return
	}
	if cell := s.cells[oldK]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(s.cells, oldK)
		}
	}
	cell := s.cells[newK]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		s.cells[newK] = cell
	}
	cell[id] = struct{}{}
}

// Body returns the registered body for id, or nil.
func (s *Space) Body(id ecs.EntityID) *Body {
	b, _ := s.bodies.Get(id)
	return b
}

// Len returns the number of registered bodies.
func (s *Space) Len() int { return s.bodies.Len() }

// GroupCounts returns the number of bodies per collision group.
func (s *Space) GroupCounts() map[Group]int {
	out := make(map[Group]int, 5)
	s.bodies.Each(func(_ ecs.EntityID, b *Body) {
		out[b.Group]++
	})
	return out
}

// Overlaps returns the IDs of bodies in any of the given groups whose
// spheres overlap the query sphere. The scan window spans the query sphere
// plus the largest registered body radius, so the visited cells fully cover
// the interaction range of every body that could overlap.
func (s *Space) Overlaps(pos geom.Vec3, radius float64, groups ...Group) []ecs.EntityID {
	want := make(map[Group]struct{}, len(groups))
	for _, g := range groups {
		want[g] = struct{}{}
	}

	span := radius + s.maxRadius
	lo := s.key(geom.Vec3{X: pos.X - span, Y: pos.Y - span, Z: pos.Z - span})
	hi := s.key(geom.Vec3{X: pos.X + span, Y: pos.Y + span, Z: pos.Z + span})

	var result []ecs.EntityID
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for cz := lo.cz; cz <= hi.cz; cz++ {
				cell := s.cells[cellKey{cx: cx, cy: cy, cz: cz}]
				for id := range cell {
					b, ok := s.bodies.Get(id)
					if !ok {
						continue
					}
					if _, hit := want[b.Group]; !hit {
						continue
					}
					reach := radius + b.Radius
					if b.Position.Sub(pos).LenSq() <= reach*reach {
						result = append(result, id)
					}
				}
			}
		}
	}
	return result
}
