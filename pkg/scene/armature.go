package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// PosePosition is the armature display state: rest skeleton or posed.
type PosePosition string

const (
	PoseRest PosePosition = "REST"
	PosePose PosePosition = "POSE"
)

// Bone is one armature bone. Local is the rest transform relative to the
// parent bone (or to the armature for a root). Bones are stored
// parent-before-child.
type Bone struct {
	Name   string
	Parent string
	Local  mgl32.Mat4
}

// Key is one TRS keyframe of a pose channel.
type Key struct {
	Frame       int
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Channel is the keyframe track of a single bone within an action. Keys
// are ordered by frame.
type Channel struct {
	Bone string
	Keys []Key
}

// Sample evaluates the channel at a frame: linear interpolation between
// surrounding keys, spherical for rotation, constant outside the key
// range. An empty channel is the identity pose.
func (c *Channel) Sample(frame float32) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if len(c.Keys) == 0 {
		return mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}
	}
	first := c.Keys[0]
	if frame <= float32(first.Frame) {
		return first.Translation, first.Rotation, first.Scale
	}
	last := c.Keys[len(c.Keys)-1]
	if frame >= float32(last.Frame) {
		return last.Translation, last.Rotation, last.Scale
	}

	prev := first
	for _, key := range c.Keys[1:] {
		if float32(key.Frame) >= frame {
			span := float32(key.Frame - prev.Frame)
			t := float32(0)
			if span > 0 {
				t = (frame - float32(prev.Frame)) / span
			}
			translation := lerpVec3(prev.Translation, key.Translation, t)
			rotation := mgl32.QuatSlerp(prev.Rotation.Normalize(), key.Rotation.Normalize(), t)
			scale := lerpVec3(prev.Scale, key.Scale, t)
			return translation, rotation, scale
		}
		prev = key
	}
	return last.Translation, last.Rotation, last.Scale
}

func lerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Action is one animation clip: pose channels over an inclusive frame
// range.
type Action struct {
	Name       string
	FrameStart int
	FrameEnd   int
	Channels   []Channel
}

// Channel returns the track for a bone name, or nil.
func (a *Action) Channel(bone string) *Channel {
	for i := range a.Channels {
		if a.Channels[i].Bone == bone {
			return &a.Channels[i]
		}
	}
	return nil
}

// Armature is the skeletal collaborator: a bone tree, the available
// actions, and the mutable pose state the exporter saves and restores.
type Armature struct {
	Name         string
	World        mgl32.Mat4
	Bones        []*Bone
	Actions      []*Action
	Position     PosePosition
	ActiveAction *Action
}

// FindBone returns the dense index of a bone by name, or -1.
func (a *Armature) FindBone(name string) int {
	for i, bone := range a.Bones {
		if bone.Name == name {
			return i
		}
	}
	return -1
}

// RestPose returns the armature-space rest matrix of every bone, in bone
// order. Fails if a bone references a parent that does not appear before
// it.
func (a *Armature) RestPose() ([]mgl32.Mat4, error) {
	return a.composePose(func(i int) mgl32.Mat4 {
		return a.Bones[i].Local
	})
}

// EvaluatePose returns the armature-space posed matrix of every bone at
// the given frame. With no active action, or with the armature forced to
// rest position, the result equals RestPose.
func (a *Armature) EvaluatePose(frame int) ([]mgl32.Mat4, error) {
	if a.Position == PoseRest || a.ActiveAction == nil {
		return a.RestPose()
	}
	action := a.ActiveAction
	return a.composePose(func(i int) mgl32.Mat4 {
		channel := action.Channel(a.Bones[i].Name)
		if channel == nil {
			return a.Bones[i].Local
		}
		t, r, s := channel.Sample(float32(frame))
		pose := mgl32.Translate3D(t.X(), t.Y(), t.Z()).
			Mul4(r.Normalize().Mat4()).
			Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
		return a.Bones[i].Local.Mul4(pose)
	})
}

// composePose chains parent-local bone matrices into armature space.
func (a *Armature) composePose(local func(int) mgl32.Mat4) ([]mgl32.Mat4, error) {
	pose := make([]mgl32.Mat4, len(a.Bones))
	ids := make(map[string]int, len(a.Bones))

	for i, bone := range a.Bones {
		m := local(i)
		if bone.Parent != "" {
			parent, ok := ids[bone.Parent]
			if !ok {
				return nil, errors.Errorf("bone %q references unknown or later parent %q", bone.Name, bone.Parent)
			}
			m = pose[parent].Mul4(m)
		}
		pose[i] = m
		ids[bone.Name] = i
	}
	return pose, nil
}
