// Package export converts an evaluated scene snapshot into the engine's
// binary mesh and skeleton files. The two exports are independent
// actions sharing only the axis remap configuration; each invocation
// re-derives everything from the live scene state.
package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/gameasset/pkg/scene"
)

// Options selects the engine's axis convention.
type Options struct {
	Forward Axis
	Up      Axis
}

// DefaultOptions matches the authoring convention, making the remap the
// identity.
func DefaultOptions() Options {
	return Options{Forward: AuthoringForward, Up: AuthoringUp}
}

// Exporter runs mesh and skeleton exports under one axis configuration.
type Exporter struct {
	Remap mgl32.Mat4

	log *zap.Logger
}

// New validates the axis configuration and builds an exporter. A nil
// logger disables logging.
func New(opts Options, log *zap.Logger) (*Exporter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	remap, err := AxisMatrix(opts.Forward, opts.Up)
	if err != nil {
		return nil, err
	}
	return &Exporter{Remap: remap, log: log}, nil
}

// ExportMesh builds the deduplicated mesh from the scene's selected
// objects and writes it to path. On failure no file is left behind.
func (e *Exporter) ExportMesh(sc *scene.Scene, path string) error {
	mesh, err := e.BuildMesh(sc)
	if err != nil {
		return errors.Wrap(err, "building mesh")
	}
	if err := writeAtomic(path, mesh.Encode); err != nil {
		return errors.Wrap(err, "writing mesh file")
	}
	e.log.Info("mesh exported",
		zap.String("path", path),
		zap.Int("faces", len(mesh.Faces)),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Bool("uvs", mesh.HasUVs),
		zap.Bool("normals", mesh.HasNormals),
		zap.Bool("jointBindings", mesh.HasJointBindings))
	return nil
}

// ExportSkeleton extracts the armature hierarchy, samples all actions and
// writes the skeleton file to path. On failure no file is left behind.
func (e *Exporter) ExportSkeleton(sc *scene.Scene, path string) error {
	skel, err := e.BuildSkeleton(sc)
	if err != nil {
		return errors.Wrap(err, "building skeleton")
	}
	if err := writeAtomic(path, skel.Encode); err != nil {
		return errors.Wrap(err, "writing skeleton file")
	}
	e.log.Info("skeleton exported",
		zap.String("path", path),
		zap.Int("joints", len(skel.Joints)),
		zap.Int("animations", len(skel.Animations)))
	return nil
}

// writeAtomic encodes into a temp file next to the target and renames it
// into place, so a failed export never leaves a partial file.
func writeAtomic(path string, encode func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	if err := encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
