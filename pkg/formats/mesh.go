package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Mesh format errors.
var (
	ErrTruncatedMeshData   = errors.New("truncated mesh data")
	ErrTooManyVertices     = errors.New("vertex count exceeds uint16 index range")
	ErrFaceIndexOutOfRange = errors.New("face index out of vertex range")
)

// MaxVertices is the largest vertex buffer addressable by the uint16
// triangle indices (indices 0..65535).
const MaxVertices = 1 << 16

// Vertex is one deduplicated vertex. UV, Normal and the joint fields are
// only meaningful (and only on the wire) when the owning Mesh has the
// corresponding flag set.
type Vertex struct {
	Position     [3]float32
	UV           [2]float32
	Normal       [3]float32
	JointIndices [4]uint8
	JointWeights [4]float32
}

// Triangle is three indices into the mesh's vertex buffer.
type Triangle [3]uint16

// Mesh is the mesh export unit.
//
// Wire layout:
//
//	u32  faceCount
//	u32  vertexCount
//	bool8 hasUVs
//	bool8 hasNormals
//	bool8 hasJointBindings
//	u16  faces[3*faceCount]
//	Vertex vertices[vertexCount]
//
// Vertex fields gated by an unset flag are omitted entirely, not zero
// filled.
type Mesh struct {
	HasUVs           bool
	HasNormals       bool
	HasJointBindings bool
	Faces            []Triangle
	Vertices         []Vertex
}

// Validate checks the index-width and reference invariants.
func (m *Mesh) Validate() error {
	if len(m.Vertices) > MaxVertices {
		return fmt.Errorf("%w: %d vertices", ErrTooManyVertices, len(m.Vertices))
	}
	for i, face := range m.Faces {
		for _, idx := range face {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d of %d",
					ErrFaceIndexOutOfRange, i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// Encode writes the mesh in its wire layout.
func (m *Mesh) Encode(w io.Writer) error {
	if err := m.Validate(); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(len(m.Faces)))
	binary.Write(buf, binary.LittleEndian, uint32(len(m.Vertices)))
	binary.Write(buf, binary.LittleEndian, boolByte(m.HasUVs))
	binary.Write(buf, binary.LittleEndian, boolByte(m.HasNormals))
	binary.Write(buf, binary.LittleEndian, boolByte(m.HasJointBindings))

	for _, face := range m.Faces {
		binary.Write(buf, binary.LittleEndian, face)
	}
	for i := range m.Vertices {
		v := &m.Vertices[i]
		binary.Write(buf, binary.LittleEndian, v.Position)
		if m.HasUVs {
			binary.Write(buf, binary.LittleEndian, v.UV)
		}
		if m.HasNormals {
			binary.Write(buf, binary.LittleEndian, v.Normal)
		}
		if m.HasJointBindings {
			binary.Write(buf, binary.LittleEndian, v.JointIndices)
			binary.Write(buf, binary.LittleEndian, v.JointWeights)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ParseMesh parses mesh data from a byte slice.
func ParseMesh(data []byte) (*Mesh, error) {
	if len(data) < 11 {
		return nil, ErrTruncatedMeshData
	}

	r := bytes.NewReader(data)

	var faceCount, vertexCount uint32
	binary.Read(r, binary.LittleEndian, &faceCount)
	binary.Read(r, binary.LittleEndian, &vertexCount)

	var flags [3]uint8
	binary.Read(r, binary.LittleEndian, &flags)

	mesh := &Mesh{
		HasUVs:           flags[0] != 0,
		HasNormals:       flags[1] != 0,
		HasJointBindings: flags[2] != 0,
	}

	if vertexCount > MaxVertices {
		return nil, fmt.Errorf("%w: %d vertices", ErrTooManyVertices, vertexCount)
	}

	faceBytes := int64(faceCount) * 3 * 2
	vertexBytes := int64(vertexCount) * int64(mesh.vertexStride())
	if int64(r.Len()) < faceBytes+vertexBytes {
		return nil, ErrTruncatedMeshData
	}

	mesh.Faces = make([]Triangle, faceCount)
	for i := range mesh.Faces {
		binary.Read(r, binary.LittleEndian, &mesh.Faces[i])
	}

	mesh.Vertices = make([]Vertex, vertexCount)
	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		binary.Read(r, binary.LittleEndian, &v.Position)
		if mesh.HasUVs {
			binary.Read(r, binary.LittleEndian, &v.UV)
		}
		if mesh.HasNormals {
			binary.Read(r, binary.LittleEndian, &v.Normal)
		}
		if mesh.HasJointBindings {
			binary.Read(r, binary.LittleEndian, &v.JointIndices)
			binary.Read(r, binary.LittleEndian, &v.JointWeights)
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// ParseMeshFile parses a mesh file from disk.
func ParseMeshFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	return ParseMesh(data)
}

// vertexStride returns the on-wire size of one vertex in bytes.
func (m *Mesh) vertexStride() int {
	stride := 3 * 4
	if m.HasUVs {
		stride += 2 * 4
	}
	if m.HasNormals {
		stride += 3 * 4
	}
	if m.HasJointBindings {
		stride += 4 + 4*4
	}
	return stride
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
