package export

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/gameasset/pkg/formats"
	"github.com/Faultbox/gameasset/pkg/scene"
)

// BuildSkeleton extracts the joint hierarchy and samples every action of
// the scene's armature. The armature's pose position, its active action
// and the scene's playback frame are saved before sampling and restored
// on every exit path.
func (e *Exporter) BuildSkeleton(sc *scene.Scene) (*formats.Skeleton, error) {
	arm := sc.Armature
	if arm == nil || len(arm.Bones) == 0 {
		return nil, ErrNoArmature
	}

	prevPosition := arm.Position
	prevAction := arm.ActiveAction
	prevFrame := sc.Frame()
	arm.Position = scene.PosePose
	defer func() {
		sc.SetFrame(prevFrame)
		arm.ActiveAction = prevAction
		arm.Position = prevPosition
	}()

	joints, parents, err := e.extractJoints(arm)
	if err != nil {
		return nil, err
	}
	skel := &formats.Skeleton{Joints: joints}

	for _, action := range arm.Actions {
		arm.ActiveAction = action
		clip, err := e.sampleAction(sc, arm, action, parents)
		if err != nil {
			return nil, errors.Wrapf(err, "sampling action %q", action.Name)
		}
		skel.Animations = append(skel.Animations, clip)
	}

	return skel, nil
}

// extractJoints walks the bone list, which must be ordered
// parent-before-child, assigning dense ids and computing each joint's
// inverse model-space bind matrix (remap x armature world x rest chain,
// inverted).
func (e *Exporter) extractJoints(arm *scene.Armature) ([]formats.SkeletonJoint, []int, error) {
	base := e.Remap.Mul4(arm.World)

	joints := make([]formats.SkeletonJoint, 0, len(arm.Bones))
	parents := make([]int, 0, len(arm.Bones))
	restModel := make([]mgl32.Mat4, 0, len(arm.Bones))
	ids := make(map[string]int, len(arm.Bones))

	for i, bone := range arm.Bones {
		parent := -1
		model := bone.Local
		if bone.Parent != "" {
			p, ok := ids[bone.Parent]
			if !ok {
				return nil, nil, &HierarchyError{Bone: bone.Name, Parent: bone.Parent}
			}
			parent = p
			model = restModel[p].Mul4(bone.Local)
		}
		restModel = append(restModel, model)
		ids[bone.Name] = i
		parents = append(parents, parent)

		parentIndex := uint32(formats.NoParent)
		if parent >= 0 {
			parentIndex = uint32(parent)
		}
		joints = append(joints, formats.SkeletonJoint{
			ParentIndex: parentIndex,
			InverseBind: rowMajor(base.Mul4(model).Inv()),
		})
	}

	return joints, parents, nil
}

// sampleAction scrubs through the clip's inclusive frame range and
// records every joint's parent-relative pose per frame. No curves are
// kept; the clip becomes a fixed-rate sampled stream.
func (e *Exporter) sampleAction(sc *scene.Scene, arm *scene.Armature, action *scene.Action, parents []int) (formats.Animation, error) {
	clip := formats.Animation{Name: action.Name}

	for frame := action.FrameStart; frame <= action.FrameEnd; frame++ {
		sc.SetFrame(frame)
		pose, err := arm.EvaluatePose(sc.Frame())
		if err != nil {
			return formats.Animation{}, errors.Wrapf(err, "frame %d", frame)
		}

		sampled := make(formats.AnimationFrame, len(arm.Bones))
		for i := range arm.Bones {
			var rel mgl32.Mat4
			if p := parents[i]; p >= 0 {
				rel = pose[p].Inv().Mul4(pose[i])
			} else {
				rel = e.Remap.Mul4(pose[i])
			}
			t, r, s := decomposeTRS(rel)
			sampled[i] = formats.AnimationJoint{
				Position: vec3Array(t),
				Rotation: [4]float32{r.W, r.X(), r.Y(), r.Z()},
				Scale:    vec3Array(s),
			}
		}
		clip.Frames = append(clip.Frames, sampled)
	}

	e.log.Debug("sampled action",
		zap.String("action", action.Name), zap.Int("frames", len(clip.Frames)))
	return clip, nil
}
