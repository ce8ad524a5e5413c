package export

import (
	"fmt"

	"github.com/pkg/errors"
)

// Pipeline errors.
var (
	// ErrAxisConfiguration means the forward/up axis pair is degenerate:
	// both name the same world axis, so no orthonormal basis exists.
	ErrAxisConfiguration = errors.New("forward and up must be different axes")

	// ErrNoMeshObjects means the scene has no selected mesh objects to
	// export.
	ErrNoMeshObjects = errors.New("no mesh objects selected")

	// ErrNoArmature means a skeleton export was requested for a scene
	// without an armature.
	ErrNoArmature = errors.New("scene has no armature")
)

// CapacityError reports a mesh or skeleton that cannot be addressed by the
// format's index widths. It is fatal for the affected export; nothing is
// truncated.
type CapacityError struct {
	Object string
	What   string
	Count  int
	Limit  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %d %s exceeds format limit of %d", e.Object, e.Count, e.What, e.Limit)
}

// HierarchyError reports a bone whose parent cannot be resolved to an
// earlier bone. Well-formed armatures never produce it.
type HierarchyError struct {
	Bone   string
	Parent string
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("bone %q references unresolvable parent %q", e.Bone, e.Parent)
}
