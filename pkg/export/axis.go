package export

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Axis names one of the six signed world axes.
type Axis int

const (
	AxisPosX Axis = iota
	AxisNegX
	AxisPosY
	AxisNegY
	AxisPosZ
	AxisNegZ
)

// The authoring tool's native convention. Remapping onto it yields the
// identity matrix.
const (
	AuthoringForward = AxisNegY
	AuthoringUp      = AxisPosZ
)

var axisNames = [...]string{"X", "-X", "Y", "-Y", "Z", "-Z"}

// ParseAxis parses an axis name such as "X", "+Y" or "-Z".
func ParseAxis(s string) (Axis, error) {
	name := s
	if len(name) > 0 && name[0] == '+' {
		name = name[1:]
	}
	for a, n := range axisNames {
		if n == name {
			return Axis(a), nil
		}
	}
	return 0, errors.Errorf("unknown axis %q", s)
}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return "?"
	}
	return axisNames[a]
}

// Vec returns the unit vector of the axis.
func (a Axis) Vec() mgl32.Vec3 {
	var v mgl32.Vec3
	v[int(a)/2] = 1
	if int(a)%2 == 1 {
		v[int(a)/2] = -1
	}
	return v
}

// AxisMatrix builds the orthonormal change-of-basis matrix taking the
// authoring convention (forward -Y, up +Z) to the engine convention given
// by forward and up. The right axis is derived as forward x up, so the
// result is always a right-handed basis. Colinear forward/up is a
// configuration error, not a degenerate matrix.
func AxisMatrix(forward, up Axis) (mgl32.Mat4, error) {
	if int(forward)/2 == int(up)/2 {
		return mgl32.Mat4{}, errors.Wrapf(ErrAxisConfiguration, "forward %s, up %s", forward, up)
	}
	from := axisBasis(AuthoringForward, AuthoringUp)
	to := axisBasis(forward, up)
	return to.Mul4(from.Transpose()), nil
}

// axisBasis returns the matrix whose columns are the convention's right,
// forward and up directions. For unit axes it is orthonormal, so its
// transpose is its inverse.
func axisBasis(forward, up Axis) mgl32.Mat4 {
	f := forward.Vec()
	u := up.Vec()
	r := f.Cross(u)
	return mgl32.Mat4{
		r.X(), r.Y(), r.Z(), 0,
		f.X(), f.Y(), f.Z(), 0,
		u.X(), u.Y(), u.Z(), 0,
		0, 0, 0, 1,
	}
}
