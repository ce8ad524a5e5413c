package export

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in      string
		want    Axis
		wantErr bool
	}{
		{in: "X", want: AxisPosX},
		{in: "+X", want: AxisPosX},
		{in: "-X", want: AxisNegX},
		{in: "Y", want: AxisPosY},
		{in: "-Y", want: AxisNegY},
		{in: "+Z", want: AxisPosZ},
		{in: "-Z", want: AxisNegZ},
		{in: "", wantErr: true},
		{in: "W", wantErr: true},
		{in: "--X", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAxis(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAxis(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAxis(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAxis(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAxisMatrix_AuthoringConventionIsIdentity(t *testing.T) {
	m, err := AxisMatrix(AuthoringForward, AuthoringUp)
	if err != nil {
		t.Fatalf("AxisMatrix failed: %v", err)
	}
	if m != mgl32.Ident4() {
		t.Errorf("authoring-to-authoring remap = %v, want identity", m)
	}
}

func TestAxisMatrix_MapsConventionAxes(t *testing.T) {
	targets := []struct {
		forward, up Axis
	}{
		{AxisPosX, AxisPosZ},
		{AxisPosZ, AxisPosY},
		{AxisNegZ, AxisPosY},
		{AxisPosY, AxisNegX},
	}

	for _, tt := range targets {
		m, err := AxisMatrix(tt.forward, tt.up)
		if err != nil {
			t.Errorf("AxisMatrix(%v, %v): %v", tt.forward, tt.up, err)
			continue
		}

		gotF := m.Mul4x1(AuthoringForward.Vec().Vec4(0)).Vec3()
		if gotF.Sub(tt.forward.Vec()).Len() > 1e-6 {
			t.Errorf("AxisMatrix(%v, %v) maps forward to %v", tt.forward, tt.up, gotF)
		}
		gotU := m.Mul4x1(AuthoringUp.Vec().Vec4(0)).Vec3()
		if gotU.Sub(tt.up.Vec()).Len() > 1e-6 {
			t.Errorf("AxisMatrix(%v, %v) maps up to %v", tt.forward, tt.up, gotU)
		}

		// Orthonormal change of basis, never a reflection.
		if det := m.Det(); det < 0.999 || det > 1.001 {
			t.Errorf("AxisMatrix(%v, %v) determinant = %f, want 1", tt.forward, tt.up, det)
		}
	}
}

func TestAxisMatrix_RejectsColinearAxes(t *testing.T) {
	cases := [][2]Axis{
		{AxisPosX, AxisPosX},
		{AxisPosX, AxisNegX},
		{AxisNegZ, AxisPosZ},
	}
	for _, c := range cases {
		if _, err := AxisMatrix(c[0], c[1]); !errors.Is(err, ErrAxisConfiguration) {
			t.Errorf("AxisMatrix(%v, %v): got %v, want ErrAxisConfiguration", c[0], c[1], err)
		}
	}
}

func TestAxisVec(t *testing.T) {
	if v := AxisNegY.Vec(); v != (mgl32.Vec3{0, -1, 0}) {
		t.Errorf("-Y vec = %v", v)
	}
	if v := AxisPosZ.Vec(); v != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Z vec = %v", v)
	}
}
