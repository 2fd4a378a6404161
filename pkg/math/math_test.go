package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 0, 4}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector normalized to %v, want zero", z)
	}
}

func TestVec3Distance(t *testing.T) {
	got := Vec3{1, 2, 3}.Distance(Vec3{4, 6, 3})
	if got != 5 {
		t.Errorf("Vec3.Distance() = %v, want 5", got)
	}
}

func TestVec3MinMax(t *testing.T) {
	a, b := Vec3{1, -2, 3}, Vec3{0, 5, 3}
	if got := a.Min(b); got != (Vec3{0, -2, 3}) {
		t.Errorf("Vec3.Min() = %v", got)
	}
	if got := a.Max(b); got != (Vec3{1, 5, 3}) {
		t.Errorf("Vec3.Max() = %v", got)
	}
}

func TestVec2Length(t *testing.T) {
	if got := (Vec2{3, 4}).Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{5, 3, 10}
	view := LookAt(eye, Vec3{0, 0, 0}, Vec3{0, 1, 0})
	got := project(view, eye)
	if got.Length() > 1e-4 {
		t.Errorf("eye in view space = %v, want origin", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(math32.Pi/3, 16.0/9.0, 0.5, 600)
	near := project(p, Vec3{0, 0, -0.5})
	far := project(p, Vec3{0, 0, -600})
	if math32.Abs(near.Z+1) > 1e-3 {
		t.Errorf("near plane z = %v, want -1", near.Z)
	}
	if math32.Abs(far.Z-1) > 1e-3 {
		t.Errorf("far plane z = %v, want 1", far.Z)
	}
}

func TestOrthoCorners(t *testing.T) {
	o := Ortho(0, 800, 0, 600, -1, 1)
	got := project(o, Vec3{800, 600, 0})
	if math32.Abs(got.X-1) > 1e-5 || math32.Abs(got.Y-1) > 1e-5 {
		t.Errorf("top-right corner = %v, want (1, 1)", got)
	}
}

// project transforms a point by m and divides by w.
func project(m Mat4, v Vec3) Vec3 {
	x := m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	y := m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	z := m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w != 0 && w != 1 {
		x, y, z = x/w, y/w, z/w
	}
	return Vec3{x, y, z}
}
