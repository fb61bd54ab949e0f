package universe

import (
	"math"
	"math/rand"

	"github.com/ematoledor/starflight-server/internal/geom"
)

// pointInSphere samples a uniformly distributed point inside the sphere at
// center with the given radius. Inverse-CDF sampling: cbrt for the radial
// distance, acos for the polar angle. A naive radius*u roll would cluster
// points at the center; this form keeps volumetric density uniform.
func pointInSphere(rng *rand.Rand, center geom.Vec3, radius float64) geom.Vec3 {
	r := radius * math.Cbrt(rng.Float64())
	theta := math.Acos(2*rng.Float64() - 1)
	phi := 2 * math.Pi * rng.Float64()

	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)

	return geom.Vec3{
		X: center.X + r*sinTheta*cosPhi,
		Y: center.Y + r*cosTheta,
		Z: center.Z + r*sinTheta*sinPhi,
	}
}

// unitVector samples a uniformly distributed direction.
func unitVector(rng *rand.Rand) geom.Vec3 {
	theta := math.Acos(2*rng.Float64() - 1)
	phi := 2 * math.Pi * rng.Float64()
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return geom.Vec3{X: sinTheta * cosPhi, Y: cosTheta, Z: sinTheta * sinPhi}
}

// rangeFloat returns a uniform value in [lo, hi).
func rangeFloat(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
