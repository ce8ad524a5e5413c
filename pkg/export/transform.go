package export

import "github.com/go-gl/mathgl/mgl32"

// decomposeTRS splits a transform into translation, rotation and scale.
// Negative (mirrored) scale is not supported; the decomposition assumes
// the linear part is a rotation times positive scale.
func decomposeTRS(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	translation := mgl32.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}

	c0 := mgl32.Vec3{m.At(0, 0), m.At(1, 0), m.At(2, 0)}
	c1 := mgl32.Vec3{m.At(0, 1), m.At(1, 1), m.At(2, 1)}
	c2 := mgl32.Vec3{m.At(0, 2), m.At(1, 2), m.At(2, 2)}
	scale := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}

	if scale.X() != 0 {
		c0 = c0.Mul(1 / scale.X())
	}
	if scale.Y() != 0 {
		c1 = c1.Mul(1 / scale.Y())
	}
	if scale.Z() != 0 {
		c2 = c2.Mul(1 / scale.Z())
	}

	rot := mgl32.Mat4{
		c0.X(), c0.Y(), c0.Z(), 0,
		c1.X(), c1.Y(), c1.Z(), 0,
		c2.X(), c2.Y(), c2.Z(), 0,
		0, 0, 0, 1,
	}
	rotation := mgl32.Mat4ToQuat(rot).Normalize()

	return translation, rotation, scale
}

// normalTransform returns the inverse-transpose of the linear part of m,
// the correct transform for surface normals under non-uniform scale.
func normalTransform(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// rowMajor flattens a matrix in row-major order, the layout the skeleton
// file stores matrices in.
func rowMajor(m mgl32.Mat4) [16]float32 {
	var out [16]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row*4+col] = m.At(row, col)
		}
	}
	return out
}

// fromRowMajor rebuilds a matrix from its row-major flattening.
func fromRowMajor(f [16]float32) mgl32.Mat4 {
	var m mgl32.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			m[col*4+row] = f[row*4+col]
		}
	}
	return m
}

func vec3Array(v mgl32.Vec3) [3]float32 {
	return [3]float32{v.X(), v.Y(), v.Z()}
}
