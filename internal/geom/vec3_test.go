package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: -5, Z: 6}

	sum := a.Add(b)
	if sum != (Vec3{X: 5, Y: -3, Z: 9}) {
		t.Errorf("Add = %+v", sum)
	}
	diff := a.Sub(b)
	if diff != (Vec3{X: -3, Y: 7, Z: -3}) {
		t.Errorf("Sub = %+v", diff)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Scale = %+v", got)
	}
	if got := a.Dot(b); got != 12 {
		t.Errorf("Dot = %v, want 12", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	if got := x.Cross(y); got != (Vec3{Z: 1}) {
		t.Errorf("x cross y = %+v, want unit z", got)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	if got := v.Len(); !almostEqual(got, 5) {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := v.DistanceTo(Vec3{X: 3, Y: 4, Z: 12}); !almostEqual(got, 12) {
		t.Errorf("DistanceTo = %v, want 12", got)
	}
}

func TestVec3Normalized(t *testing.T) {
	v := Vec3{X: 0, Y: 0, Z: -10}
	n := v.Normalized()
	if !almostEqual(n.Len(), 1) {
		t.Errorf("normalized length = %v", n.Len())
	}
	if n.Z >= 0 {
		t.Errorf("direction lost: %+v", n)
	}

	// Zero vector stays zero instead of producing NaN.
	z := Vec3{}.Normalized()
	if z != (Vec3{}) {
		t.Errorf("zero normalized = %+v", z)
	}
}

func TestVec3RotateY(t *testing.T) {
	// Forward (-Z) rotated a quarter turn lands on -X.
	v := Vec3{Z: -1}
	r := v.RotateY(math.Pi / 2)
	if !almostEqual(r.X, -1) || !almostEqual(r.Z, 0) {
		t.Errorf("RotateY(pi/2) = %+v", r)
	}
}

func TestVec3RotateX(t *testing.T) {
	v := Vec3{Y: 1}
	r := v.RotateX(math.Pi / 2)
	if !almostEqual(r.Y, 0) || !almostEqual(r.Z, 1) {
		t.Errorf("RotateX(pi/2) = %+v", r)
	}
}

func TestVec3InSphere(t *testing.T) {
	c := Vec3{X: 100}
	if !(Vec3{X: 105}).InSphere(c, 10) {
		t.Error("interior point reported outside")
	}
	if !(Vec3{X: 110}).InSphere(c, 10) {
		t.Error("boundary point reported outside")
	}
	if (Vec3{X: 111}).InSphere(c, 10) {
		t.Error("exterior point reported inside")
	}
}
