// Package scene models the authoring-side snapshot the exporter consumes:
// mesh objects with per-corner attribute loops, vertex groups, and a
// skeletal armature with keyframed actions. It is the in-memory stand-in
// for the host application's evaluated scene state.
package scene

import "github.com/go-gl/mathgl/mgl32"

// GroupWeight is one vertex-group assignment on a source vertex. Group
// indexes the owning object's VertexGroups name table.
type GroupWeight struct {
	Group  int
	Weight float32
}

// SourceVertex is a shared mesh vertex before corner splitting. Position
// is the undeformed, object-local coordinate.
type SourceVertex struct {
	Position mgl32.Vec3
	Groups   []GroupWeight
}

// Loop is a per-face corner: a reference to a shared vertex plus the
// attributes that belong to the corner rather than the vertex.
type Loop struct {
	Vertex int
	Normal mgl32.Vec3
}

// Polygon is an ordered run of loops. Winding order is meaningful;
// polygons may have any number of corners >= 3.
type Polygon struct {
	Loops []int
}

// UVLayer is a named per-loop UV channel.
type UVLayer struct {
	Name string
	UV   [][2]float32
}

// Mesh is a mesh snapshot with modifiers already applied.
type Mesh struct {
	Vertices   []SourceVertex
	Loops      []Loop
	Polygons   []Polygon
	UVLayers   []UVLayer
	ActiveUV   int
	HasNormals bool
}

// ActiveUVLayer returns the active UV channel, or nil if the mesh has no
// usable UV data.
func (m *Mesh) ActiveUVLayer() *UVLayer {
	if m.ActiveUV < 0 || m.ActiveUV >= len(m.UVLayers) {
		return nil
	}
	layer := &m.UVLayers[m.ActiveUV]
	if len(layer.UV) != len(m.Loops) {
		return nil
	}
	return layer
}

// Object is a scene object owning a mesh snapshot.
type Object struct {
	Name         string
	Selected     bool
	World        mgl32.Mat4
	VertexGroups []string
	Mesh         *Mesh
}

// Scene is one evaluated scene snapshot: the mesh objects, at most one
// armature, and the playback state the exporter mutates under guard.
type Scene struct {
	Objects  []*Object
	Armature *Armature

	frame int
}

// Frame returns the current playback frame.
func (s *Scene) Frame() int {
	return s.frame
}

// SetFrame moves the playback position. Pose evaluation reads whatever
// frame was set last.
func (s *Scene) SetFrame(frame int) {
	s.frame = frame
}

// SelectedMeshObjects returns the selected objects that carry a mesh, in
// scene order.
func (s *Scene) SelectedMeshObjects() []*Object {
	var list []*Object
	for _, obj := range s.Objects {
		if obj.Selected && obj.Mesh != nil {
			list = append(list, obj)
		}
	}
	return list
}
