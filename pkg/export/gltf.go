package export

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/gameasset/pkg/formats"
)

// BuildPreview assembles a glTF document from already-built export units,
// for eyeballing a result in standard viewers. Either argument may be
// nil; the binary files stay the source of truth.
func BuildPreview(mesh *formats.Mesh, skel *formats.Skeleton) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	if mesh != nil {
		if err := previewMesh(doc, mesh); err != nil {
			return nil, err
		}
	}
	if skel != nil {
		previewJoints(doc, skel)
	}
	return doc, nil
}

func previewMesh(doc *gltf.Document, mesh *formats.Mesh) error {
	if err := mesh.Validate(); err != nil {
		return errors.Wrap(err, "preview mesh")
	}

	count := len(mesh.Vertices)
	positions := make([][3]float32, count)
	for i := range mesh.Vertices {
		positions[i] = mesh.Vertices[i].Position
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, positions),
	}

	if mesh.HasNormals {
		normals := make([][3]float32, count)
		for i := range mesh.Vertices {
			normals[i] = mesh.Vertices[i].Normal
		}
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
	}
	if mesh.HasUVs {
		uvs := make([][2]float32, count)
		for i := range mesh.Vertices {
			uvs[i] = mesh.Vertices[i].UV
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
	}
	if mesh.HasJointBindings {
		joints := make([][4]uint16, count)
		weights := make([][4]float32, count)
		for i := range mesh.Vertices {
			for c := 0; c < 4; c++ {
				joints[i][c] = uint16(mesh.Vertices[i].JointIndices[c])
			}
			weights[i] = mesh.Vertices[i].JointWeights
		}
		attributes["JOINTS_0"] = modeler.WriteJoints(doc, joints)
		attributes["WEIGHTS_0"] = modeler.WriteWeights(doc, weights)
	}

	indices := make([]uint32, 0, len(mesh.Faces)*3)
	for _, face := range mesh.Faces {
		indices = append(indices, uint32(face[0]), uint32(face[1]), uint32(face[2]))
	}
	indicesAccessor := modeler.WriteIndices(doc, indices)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "mesh",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indicesAccessor),
			Attributes: attributes,
		}},
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: "mesh",
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	return nil
}

// previewJoints rebuilds joint-local rest transforms from the inverse
// bind matrices and emits them as a node hierarchy.
func previewJoints(doc *gltf.Document, skel *formats.Skeleton) {
	base := uint32(len(doc.Nodes))
	for i, joint := range skel.Joints {
		model := fromRowMajor(joint.InverseBind).Inv()
		local := model
		if joint.ParentIndex != formats.NoParent {
			parentModel := fromRowMajor(skel.Joints[joint.ParentIndex].InverseBind).Inv()
			local = parentModel.Inv().Mul4(model)
		}
		t, r, s := decomposeTRS(local)

		node := &gltf.Node{
			Name:        fmt.Sprintf("joint_%d", i),
			Translation: [3]float32{t.X(), t.Y(), t.Z()},
			Rotation:    [4]float32{r.X(), r.Y(), r.Z(), r.W},
			Scale:       [3]float32{s.X(), s.Y(), s.Z()},
		}
		doc.Nodes = append(doc.Nodes, node)

		if joint.ParentIndex == formats.NoParent {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, base+uint32(i))
		} else {
			parent := doc.Nodes[base+joint.ParentIndex]
			parent.Children = append(parent.Children, base+uint32(i))
		}
	}
}

// WritePreview saves a glTF preview of the given units to path.
func (e *Exporter) WritePreview(mesh *formats.Mesh, skel *formats.Skeleton, path string) error {
	doc, err := BuildPreview(mesh, skel)
	if err != nil {
		return err
	}
	if err := gltf.Save(doc, path); err != nil {
		return errors.Wrap(err, "writing glTF preview")
	}
	e.log.Info("glTF preview written", zap.String("path", path))
	return nil
}
