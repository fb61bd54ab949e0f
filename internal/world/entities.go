package world

import (
	"math"

	"github.com/ematoledor/starflight-server/internal/core/ecs"
	"github.com/ematoledor/starflight-server/internal/geom"
)

// Static celestial bodies. All are placed once by the generator and live
// until a universe reset; none respawn.

// Planet is a static body with an optional ring of orbiting satellites.
type Planet struct {
	ID       ecs.EntityID
	Name     string
	Position geom.Vec3
	Radius   float64

	Satellites []*Satellite
}

// Satellite orbits its parent planet in a fixed inclined plane. The
// movement system advances Angle each tick and derives Position from it.
type Satellite struct {
	ID          ecs.EntityID
	Position    geom.Vec3
	OrbitRadius float64
	OrbitSpeed  float64 // radians per second
	Inclination float64 // radians, fixed at creation
	Angle       float64
}

// SatellitePosition derives a satellite's world position from its parent
// planet and orbit parameters. The orbit plane is the XZ plane tilted by
// the fixed inclination around X.
func SatellitePosition(p *Planet, sat *Satellite) geom.Vec3 {
	sin, cos := math.Sincos(sat.Angle)
	local := geom.Vec3{
		X: sat.OrbitRadius * cos,
		Z: sat.OrbitRadius * sin,
	}
	return p.Position.Add(local.RotateX(sat.Inclination))
}

// AsteroidField is a spherical debris region. Count is the number of member
// asteroids, scaled by the generator's density noise field; the field
// collides as a single static sphere.
type AsteroidField struct {
	ID       ecs.EntityID
	Position geom.Vec3
	Radius   float64
	Count    int
	Density  float64 // sampled noise in [0,1], kept for telemetry
}

// Nebula is a cosmetic region; it takes no part in collision.
type Nebula struct {
	ID       ecs.EntityID
	Position geom.Vec3
	Radius   float64
}

// AnomalyKind discriminates anomaly behavior.
type AnomalyKind string

const (
	AnomalyWormhole AnomalyKind = "wormhole" // teleports the pilot to a random sector
	AnomalyEnergy   AnomalyKind = "energy"   // periodic pulse damage inside Radius
)

// Anomaly is a hazardous region. Energy anomalies pulse on a fixed tick
// period through the deferred-action queue.
type Anomaly struct {
	ID          ecs.EntityID
	Kind        AnomalyKind
	Position    geom.Vec3
	Radius      float64
	PulseDamage int32
	PulseEvery  uint64 // ticks between pulses (energy kind only)
}
