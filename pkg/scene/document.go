package scene

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is the YAML description of a scene, used by the CLI and test
// fixtures. Rotations are quaternions given as [w, x, y, z]; omitted
// transforms default to identity.
type Document struct {
	Objects  []ObjectDoc  `yaml:"objects"`
	Armature *ArmatureDoc `yaml:"armature"`
}

type TransformDoc struct {
	Translation []float32 `yaml:"translation"`
	Rotation    []float32 `yaml:"rotation"`
	Scale       []float32 `yaml:"scale"`
}

type ObjectDoc struct {
	Name         string        `yaml:"name"`
	Selected     *bool         `yaml:"selected"`
	Transform    *TransformDoc `yaml:"transform"`
	VertexGroups []string      `yaml:"vertex_groups"`
	Mesh         *MeshDoc      `yaml:"mesh"`
}

type MeshDoc struct {
	Vertices []VertexDoc  `yaml:"vertices"`
	Polygons [][]int      `yaml:"polygons"`
	Normals  [][]float32  `yaml:"normals"`
	UVLayers []UVLayerDoc `yaml:"uv_layers"`
	ActiveUV int          `yaml:"active_uv"`
}

type VertexDoc struct {
	Position []float32        `yaml:"position"`
	Groups   []GroupWeightDoc `yaml:"groups"`
}

type GroupWeightDoc struct {
	Group  int     `yaml:"group"`
	Weight float32 `yaml:"weight"`
}

type UVLayerDoc struct {
	Name string      `yaml:"name"`
	UV   [][]float32 `yaml:"uv"`
}

type ArmatureDoc struct {
	Name         string        `yaml:"name"`
	Transform    *TransformDoc `yaml:"transform"`
	PosePosition string        `yaml:"pose_position"`
	Bones        []BoneDoc     `yaml:"bones"`
	Actions      []ActionDoc   `yaml:"actions"`
}

type BoneDoc struct {
	Name        string    `yaml:"name"`
	Parent      string    `yaml:"parent"`
	Translation []float32 `yaml:"translation"`
	Rotation    []float32 `yaml:"rotation"`
	Scale       []float32 `yaml:"scale"`
}

type ActionDoc struct {
	Name       string       `yaml:"name"`
	FrameStart int          `yaml:"frame_start"`
	FrameEnd   int          `yaml:"frame_end"`
	Channels   []ChannelDoc `yaml:"channels"`
}

type ChannelDoc struct {
	Bone string   `yaml:"bone"`
	Keys []KeyDoc `yaml:"keys"`
}

type KeyDoc struct {
	Frame       int       `yaml:"frame"`
	Translation []float32 `yaml:"translation"`
	Rotation    []float32 `yaml:"rotation"`
	Scale       []float32 `yaml:"scale"`
}

// LoadDocument parses a YAML scene document and builds the scene.
func LoadDocument(data []byte) (*Scene, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing scene document")
	}
	return doc.Build()
}

// LoadFile reads and builds a scene document from disk.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scene document")
	}
	return LoadDocument(data)
}

// Build converts the document into a Scene, synthesizing the loop table
// from the polygon vertex lists.
func (d *Document) Build() (*Scene, error) {
	sc := &Scene{}

	for i := range d.Objects {
		obj, err := d.Objects[i].build()
		if err != nil {
			return nil, errors.Wrapf(err, "object %q", d.Objects[i].Name)
		}
		sc.Objects = append(sc.Objects, obj)
	}

	if d.Armature != nil {
		arm, err := d.Armature.build()
		if err != nil {
			return nil, errors.Wrapf(err, "armature %q", d.Armature.Name)
		}
		sc.Armature = arm
	}

	return sc, nil
}

func (o *ObjectDoc) build() (*Object, error) {
	world, err := transformMatrix(o.Transform)
	if err != nil {
		return nil, err
	}

	obj := &Object{
		Name:         o.Name,
		Selected:     o.Selected == nil || *o.Selected,
		World:        world,
		VertexGroups: o.VertexGroups,
	}
	if o.Mesh == nil {
		return obj, nil
	}

	mesh := &Mesh{ActiveUV: o.Mesh.ActiveUV}
	for i, v := range o.Mesh.Vertices {
		pos, err := vec3(v.Position, mgl32.Vec3{})
		if err != nil {
			return nil, errors.Wrapf(err, "vertex %d", i)
		}
		sv := SourceVertex{Position: pos}
		for _, g := range v.Groups {
			if g.Group < 0 || g.Group >= len(o.VertexGroups) {
				return nil, errors.Errorf("vertex %d references vertex group %d of %d", i, g.Group, len(o.VertexGroups))
			}
			sv.Groups = append(sv.Groups, GroupWeight{Group: g.Group, Weight: g.Weight})
		}
		mesh.Vertices = append(mesh.Vertices, sv)
	}

	// Polygons are given as vertex index lists; every corner becomes a
	// loop, so per-corner normal/UV arrays parallel the flattened corners.
	for pi, poly := range o.Mesh.Polygons {
		if len(poly) < 3 {
			return nil, errors.Errorf("polygon %d has %d corners, need at least 3", pi, len(poly))
		}
		p := Polygon{}
		for _, vi := range poly {
			if vi < 0 || vi >= len(mesh.Vertices) {
				return nil, errors.Errorf("polygon %d references vertex %d of %d", pi, vi, len(mesh.Vertices))
			}
			p.Loops = append(p.Loops, len(mesh.Loops))
			mesh.Loops = append(mesh.Loops, Loop{Vertex: vi})
		}
		mesh.Polygons = append(mesh.Polygons, p)
	}

	if len(o.Mesh.Normals) > 0 {
		if len(o.Mesh.Normals) != len(mesh.Loops) {
			return nil, errors.Errorf("normals cover %d corners, mesh has %d", len(o.Mesh.Normals), len(mesh.Loops))
		}
		for i, n := range o.Mesh.Normals {
			nv, err := vec3(n, mgl32.Vec3{})
			if err != nil {
				return nil, errors.Wrapf(err, "normal %d", i)
			}
			mesh.Loops[i].Normal = nv
		}
		mesh.HasNormals = true
	}

	for _, layer := range o.Mesh.UVLayers {
		if len(layer.UV) != len(mesh.Loops) {
			return nil, errors.Errorf("uv layer %q covers %d corners, mesh has %d", layer.Name, len(layer.UV), len(mesh.Loops))
		}
		uv := UVLayer{Name: layer.Name, UV: make([][2]float32, len(layer.UV))}
		for i, c := range layer.UV {
			if len(c) != 2 {
				return nil, errors.Errorf("uv layer %q corner %d has %d components", layer.Name, i, len(c))
			}
			uv.UV[i] = [2]float32{c[0], c[1]}
		}
		mesh.UVLayers = append(mesh.UVLayers, uv)
	}

	obj.Mesh = mesh
	return obj, nil
}

func (a *ArmatureDoc) build() (*Armature, error) {
	world, err := transformMatrix(a.Transform)
	if err != nil {
		return nil, err
	}

	arm := &Armature{
		Name:     a.Name,
		World:    world,
		Position: PosePose,
	}
	if a.PosePosition != "" {
		arm.Position = PosePosition(a.PosePosition)
	}

	for _, b := range a.Bones {
		local, err := trsMatrix(b.Translation, b.Rotation, b.Scale)
		if err != nil {
			return nil, errors.Wrapf(err, "bone %q", b.Name)
		}
		arm.Bones = append(arm.Bones, &Bone{Name: b.Name, Parent: b.Parent, Local: local})
	}

	for _, ad := range a.Actions {
		action := &Action{
			Name:       ad.Name,
			FrameStart: ad.FrameStart,
			FrameEnd:   ad.FrameEnd,
		}
		for _, cd := range ad.Channels {
			channel := Channel{Bone: cd.Bone}
			for ki, kd := range cd.Keys {
				t, err := vec3(kd.Translation, mgl32.Vec3{})
				if err != nil {
					return nil, errors.Wrapf(err, "action %q bone %q key %d", ad.Name, cd.Bone, ki)
				}
				r, err := quat(kd.Rotation)
				if err != nil {
					return nil, errors.Wrapf(err, "action %q bone %q key %d", ad.Name, cd.Bone, ki)
				}
				s, err := vec3(kd.Scale, mgl32.Vec3{1, 1, 1})
				if err != nil {
					return nil, errors.Wrapf(err, "action %q bone %q key %d", ad.Name, cd.Bone, ki)
				}
				channel.Keys = append(channel.Keys, Key{Frame: kd.Frame, Translation: t, Rotation: r, Scale: s})
			}
			action.Channels = append(action.Channels, channel)
		}
		arm.Actions = append(arm.Actions, action)
	}

	return arm, nil
}

func transformMatrix(t *TransformDoc) (mgl32.Mat4, error) {
	if t == nil {
		return mgl32.Ident4(), nil
	}
	return trsMatrix(t.Translation, t.Rotation, t.Scale)
}

func trsMatrix(translation, rotation, scale []float32) (mgl32.Mat4, error) {
	t, err := vec3(translation, mgl32.Vec3{})
	if err != nil {
		return mgl32.Mat4{}, err
	}
	r, err := quat(rotation)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	s, err := vec3(scale, mgl32.Vec3{1, 1, 1})
	if err != nil {
		return mgl32.Mat4{}, err
	}
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(r.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z())), nil
}

func vec3(v []float32, def mgl32.Vec3) (mgl32.Vec3, error) {
	if len(v) == 0 {
		return def, nil
	}
	if len(v) != 3 {
		return mgl32.Vec3{}, errors.Errorf("expected 3 components, got %d", len(v))
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}

func quat(v []float32) (mgl32.Quat, error) {
	if len(v) == 0 {
		return mgl32.QuatIdent(), nil
	}
	if len(v) != 4 {
		return mgl32.Quat{}, errors.Errorf("expected quaternion [w x y z], got %d components", len(v))
	}
	return mgl32.Quat{W: v[0], V: mgl32.Vec3{v[1], v[2], v[3]}}, nil
}
