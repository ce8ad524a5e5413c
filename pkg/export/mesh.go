package export

import (
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/gameasset/pkg/formats"
	"github.com/Faultbox/gameasset/pkg/scene"
)

// maxInfluences is how many joint bindings one vertex can carry on the
// wire. Extra vertex-group assignments are dropped, not an error.
const maxInfluences = 4

// vertexKey is the dedup identity of a corner: the raw bit patterns of
// every attribute. Exact equality only — corners that differ by a single
// rounding bit stay distinct vertices, which keeps re-exports
// byte-identical at the cost of some avoidable duplicates.
type vertexKey struct {
	px, py, pz     uint32
	u, v           uint32
	nx, ny, nz     uint32
	joints         [4]uint8
	w0, w1, w2, w3 uint32
}

func keyOf(v *formats.Vertex) vertexKey {
	return vertexKey{
		px:     math.Float32bits(v.Position[0]),
		py:     math.Float32bits(v.Position[1]),
		pz:     math.Float32bits(v.Position[2]),
		u:      math.Float32bits(v.UV[0]),
		v:      math.Float32bits(v.UV[1]),
		nx:     math.Float32bits(v.Normal[0]),
		ny:     math.Float32bits(v.Normal[1]),
		nz:     math.Float32bits(v.Normal[2]),
		joints: v.JointIndices,
		w0:     math.Float32bits(v.JointWeights[0]),
		w1:     math.Float32bits(v.JointWeights[1]),
		w2:     math.Float32bits(v.JointWeights[2]),
		w3:     math.Float32bits(v.JointWeights[3]),
	}
}

// vertexBuffer assigns dense indices to distinct corner tuples in
// first-seen order.
type vertexBuffer struct {
	index    map[vertexKey]uint16
	vertices []formats.Vertex
}

func newVertexBuffer() *vertexBuffer {
	return &vertexBuffer{index: make(map[vertexKey]uint16)}
}

// add returns the index for the tuple, deduplicating equal ones. ok is
// false once the buffer would outgrow the uint16 index range.
func (b *vertexBuffer) add(v formats.Vertex) (uint16, bool) {
	key := keyOf(&v)
	if idx, seen := b.index[key]; seen {
		return idx, true
	}
	if len(b.vertices) >= formats.MaxVertices {
		return 0, false
	}
	idx := uint16(len(b.vertices))
	b.index[key] = idx
	b.vertices = append(b.vertices, v)
	return idx, true
}

// BuildMesh collapses the selected mesh objects into one deduplicated,
// triangulated mesh. If the scene has an armature it is held in rest
// position while attributes are read and restored afterwards, whatever
// the outcome.
func (e *Exporter) BuildMesh(sc *scene.Scene) (*formats.Mesh, error) {
	objects := sc.SelectedMeshObjects()
	if len(objects) == 0 {
		return nil, ErrNoMeshObjects
	}

	arm := sc.Armature
	if arm != nil {
		prev := arm.Position
		arm.Position = scene.PoseRest
		defer func() { arm.Position = prev }()
	}

	// Attribute channels degrade mesh-wide: one object without the
	// channel drops it from the whole file, the layout has no per-vertex
	// variation.
	hasUVs, hasNormals := true, true
	for _, obj := range objects {
		if obj.Mesh.ActiveUVLayer() == nil {
			if hasUVs {
				e.log.Debug("object has no active UV layer, exporting without UVs",
					zap.String("object", obj.Name))
			}
			hasUVs = false
		}
		if !obj.Mesh.HasNormals {
			if hasNormals {
				e.log.Debug("object has no split normals, exporting without normals",
					zap.String("object", obj.Name))
			}
			hasNormals = false
		}
	}

	buffer := newVertexBuffer()
	var faces []formats.Triangle
	anyBinding := false

	for _, obj := range objects {
		mesh := obj.Mesh
		world := e.Remap.Mul4(obj.World)
		normals := normalTransform(world)
		var uvLayer *scene.UVLayer
		if hasUVs {
			uvLayer = mesh.ActiveUVLayer()
		}

		corner := func(loopIndex int) (uint16, bool) {
			loop := mesh.Loops[loopIndex]
			src := mesh.Vertices[loop.Vertex]

			var out formats.Vertex
			p := world.Mul4x1(src.Position.Vec4(1)).Vec3()
			out.Position = vec3Array(p)

			if uvLayer != nil {
				uv := uvLayer.UV[loopIndex]
				out.UV = [2]float32{uv[0], 1 - uv[1]}
			}
			if hasNormals {
				n := normals.Mul3x1(loop.Normal)
				if n.Len() > 0 {
					n = n.Normalize()
				}
				out.Normal = vec3Array(n)
			}
			if arm != nil {
				if e.resolveBindings(obj, arm, src.Groups, &out) {
					anyBinding = true
				}
			}

			return buffer.add(out)
		}

		for _, poly := range mesh.Polygons {
			loops := poly.Loops
			// Fan triangulation preserves the polygon's winding.
			for i := 1; i+1 < len(loops); i++ {
				var tri formats.Triangle
				for c, li := range [3]int{loops[0], loops[i], loops[i+1]} {
					idx, ok := corner(li)
					if !ok {
						return nil, &CapacityError{
							Object: obj.Name,
							What:   "vertices",
							Count:  formats.MaxVertices + 1,
							Limit:  formats.MaxVertices,
						}
					}
					tri[c] = idx
				}
				faces = append(faces, tri)
			}
		}
	}

	return &formats.Mesh{
		HasUVs:           hasUVs,
		HasNormals:       hasNormals,
		HasJointBindings: anyBinding,
		Faces:            faces,
		Vertices:         buffer.vertices,
	}, nil
}

// resolveBindings fills the vertex's joint indices and weights from its
// vertex-group assignments. Group names that match no bone are dropped,
// as is any assignment past the fourth resolved one. Weights are
// normalized to sum to 1; a vertex with no resolved assignment keeps all
// zeroes.
func (e *Exporter) resolveBindings(obj *scene.Object, arm *scene.Armature, groups []scene.GroupWeight, out *formats.Vertex) bool {
	count := 0
	for _, g := range groups {
		if count == maxInfluences {
			break
		}
		if g.Group < 0 || g.Group >= len(obj.VertexGroups) {
			continue
		}
		name := obj.VertexGroups[g.Group]
		bone := arm.FindBone(name)
		if bone < 0 {
			e.log.Debug("vertex group matches no bone, dropping binding",
				zap.String("object", obj.Name), zap.String("group", name))
			continue
		}
		if bone > math.MaxUint8 {
			e.log.Warn("bone index does not fit the uint8 binding field, dropping binding",
				zap.String("object", obj.Name), zap.String("bone", name), zap.Int("index", bone))
			continue
		}
		out.JointIndices[count] = uint8(bone)
		out.JointWeights[count] = g.Weight
		count++
	}

	var total float32
	for _, w := range out.JointWeights {
		total += w
	}
	if total != 0 {
		for i := range out.JointWeights {
			out.JointWeights[i] /= total
		}
	}
	return count > 0
}
