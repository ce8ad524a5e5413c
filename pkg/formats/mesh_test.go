package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

func makeTriangleMesh() *Mesh {
	return &Mesh{
		HasUVs:           true,
		HasNormals:       true,
		HasJointBindings: true,
		Faces:            []Triangle{{0, 1, 2}},
		Vertices: []Vertex{
			{
				Position:     [3]float32{0, 0, 0},
				UV:           [2]float32{0, 1},
				Normal:       [3]float32{0, 0, 1},
				JointIndices: [4]uint8{0, 1, 0, 0},
				JointWeights: [4]float32{0.75, 0.25, 0, 0},
			},
			{
				Position: [3]float32{1, 0, 0},
				UV:       [2]float32{1, 1},
				Normal:   [3]float32{0, 0, 1},
			},
			{
				Position: [3]float32{0, 1, 0},
				UV:       [2]float32{0, 0},
				Normal:   [3]float32{0, 0, 1},
			},
		},
	}
}

func TestMeshEncode_HeaderLayout(t *testing.T) {
	mesh := makeTriangleMesh()

	var buf bytes.Buffer
	if err := mesh.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data := buf.Bytes()

	if got := binary.LittleEndian.Uint32(data[0:]); got != 1 {
		t.Errorf("faceCount = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[4:]); got != 3 {
		t.Errorf("vertexCount = %d, want 3", got)
	}
	for i, want := range []uint8{1, 1, 1} {
		if data[8+i] != want {
			t.Errorf("flag byte %d = %d, want %d", i, data[8+i], want)
		}
	}

	// Face indices directly after the 11-byte header.
	for i, want := range []uint16{0, 1, 2} {
		if got := binary.LittleEndian.Uint16(data[11+2*i:]); got != want {
			t.Errorf("face index %d = %d, want %d", i, got, want)
		}
	}

	// First vertex position follows the face array.
	pos := 11 + 6
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[pos:])); got != 0 {
		t.Errorf("vertex 0 position.x = %f, want 0", got)
	}
}

func TestMeshEncode_ConditionalFieldsOmitted(t *testing.T) {
	tests := []struct {
		name       string
		hasUVs     bool
		hasNormals bool
		hasJoints  bool
		wantStride int
	}{
		{"position only", false, false, false, 12},
		{"with uvs", true, false, false, 20},
		{"with normals", false, true, false, 24},
		{"uvs and normals", true, true, false, 32},
		{"full", true, true, true, 52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := makeTriangleMesh()
			mesh.HasUVs = tt.hasUVs
			mesh.HasNormals = tt.hasNormals
			mesh.HasJointBindings = tt.hasJoints

			var buf bytes.Buffer
			if err := mesh.Encode(&buf); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			wantLen := 11 + 6*len(mesh.Faces) + tt.wantStride*len(mesh.Vertices)
			if buf.Len() != wantLen {
				t.Errorf("encoded length = %d, want %d", buf.Len(), wantLen)
			}
		})
	}
}

func TestMeshRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Mesh)
	}{
		{"full vertex", func(m *Mesh) {}},
		{"no joint bindings", func(m *Mesh) {
			m.HasJointBindings = false
			for i := range m.Vertices {
				m.Vertices[i].JointIndices = [4]uint8{}
				m.Vertices[i].JointWeights = [4]float32{}
			}
		}},
		{"position only", func(m *Mesh) {
			m.HasUVs = false
			m.HasNormals = false
			m.HasJointBindings = false
			for i := range m.Vertices {
				m.Vertices[i] = Vertex{Position: m.Vertices[i].Position}
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := makeTriangleMesh()
			tt.mut(mesh)

			var buf bytes.Buffer
			if err := mesh.Encode(&buf); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			parsed, err := ParseMesh(buf.Bytes())
			if err != nil {
				t.Fatalf("ParseMesh failed: %v", err)
			}

			if !reflect.DeepEqual(parsed, mesh) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, mesh)
			}
		})
	}
}

func TestMeshEncode_Deterministic(t *testing.T) {
	mesh := makeTriangleMesh()

	var first, second bytes.Buffer
	if err := mesh.Encode(&first); err != nil {
		t.Fatalf("first Encode failed: %v", err)
	}
	if err := mesh.Encode(&second); err != nil {
		t.Fatalf("second Encode failed: %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two encodings of the same mesh differ")
	}
}

func TestMeshValidate(t *testing.T) {
	t.Run("face index out of range", func(t *testing.T) {
		mesh := &Mesh{
			Faces:    []Triangle{{0, 1, 5}},
			Vertices: make([]Vertex, 3),
		}
		if err := mesh.Validate(); !errors.Is(err, ErrFaceIndexOutOfRange) {
			t.Errorf("got %v, want ErrFaceIndexOutOfRange", err)
		}
	})

	t.Run("too many vertices", func(t *testing.T) {
		mesh := &Mesh{Vertices: make([]Vertex, MaxVertices+1)}
		if err := mesh.Validate(); !errors.Is(err, ErrTooManyVertices) {
			t.Errorf("got %v, want ErrTooManyVertices", err)
		}
	})

	t.Run("at capacity is valid", func(t *testing.T) {
		mesh := &Mesh{Vertices: make([]Vertex, MaxVertices)}
		if err := mesh.Validate(); err != nil {
			t.Errorf("mesh at exactly MaxVertices should validate, got %v", err)
		}
	})
}

func TestParseMesh_Truncated(t *testing.T) {
	mesh := makeTriangleMesh()
	var buf bytes.Buffer
	if err := mesh.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	full := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", full[:11]},
		{"cut mid faces", full[:14]},
		{"cut mid vertices", full[:len(full)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMesh(tt.data); !errors.Is(err, ErrTruncatedMeshData) {
				t.Errorf("got %v, want ErrTruncatedMeshData", err)
			}
		})
	}
}

func TestParseMesh_RejectsBadIndices(t *testing.T) {
	mesh := &Mesh{
		Faces:    []Triangle{{0, 0, 0}},
		Vertices: make([]Vertex, 1),
	}
	var buf bytes.Buffer
	if err := mesh.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	data := buf.Bytes()
	// Corrupt the first face index to point past the vertex buffer.
	binary.LittleEndian.PutUint16(data[11:], 7)

	if _, err := ParseMesh(data); !errors.Is(err, ErrFaceIndexOutOfRange) {
		t.Errorf("got %v, want ErrFaceIndexOutOfRange", err)
	}
}
