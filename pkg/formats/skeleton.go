package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Skeleton format errors.
var (
	ErrTruncatedSkeletonData = errors.New("truncated skeleton data")
	ErrBadParentIndex        = errors.New("joint parent index must reference an earlier joint")
	ErrFrameLengthMismatch   = errors.New("animation frame length differs from joint count")
)

// NoParent marks the root joint's parent index. The legacy exporter wrote
// 0 here, which is indistinguishable from a genuine reference to joint 0;
// this codec uses an explicit sentinel instead.
const NoParent = 0xFFFFFFFF

// SkeletonJoint is one joint of the hierarchy. InverseBind is the inverse
// model-space bind-pose matrix, stored row-major.
type SkeletonJoint struct {
	ParentIndex uint32
	InverseBind [16]float32
}

// AnimationJoint is a joint pose relative to its parent space (or to the
// remapped world space for the root). Rotation is stored W, X, Y, Z.
type AnimationJoint struct {
	Position [3]float32
	Rotation [4]float32
	Scale    [3]float32
}

// AnimationFrame holds one AnimationJoint per skeleton joint, in joint
// order.
type AnimationFrame []AnimationJoint

// Animation is a fixed-rate sampled clip: one frame per integer frame of
// the source range, no curves or tangents.
type Animation struct {
	Name   string
	Frames []AnimationFrame
}

// Skeleton is the skeleton+animations export unit.
//
// Wire layout:
//
//	u32 jointCount
//	{ u32 parentIndex; f32 inverseBindMatrix[16] } joints[jointCount]
//	u32 animationCount
//	{ u32 frameCount; u32 nameLength; char8 name[nameLength];
//	  AnimationJoint frames[frameCount][jointCount] } animations[...]
type Skeleton struct {
	Joints     []SkeletonJoint
	Animations []Animation
}

// Validate checks the hierarchy ordering and frame shape invariants.
func (s *Skeleton) Validate() error {
	for i, joint := range s.Joints {
		if joint.ParentIndex == NoParent {
			continue
		}
		if int(joint.ParentIndex) >= i {
			return fmt.Errorf("%w: joint %d has parent %d", ErrBadParentIndex, i, joint.ParentIndex)
		}
	}
	for _, anim := range s.Animations {
		for i, frame := range anim.Frames {
			if len(frame) != len(s.Joints) {
				return fmt.Errorf("%w: animation %q frame %d has %d joints, skeleton has %d",
					ErrFrameLengthMismatch, anim.Name, i, len(frame), len(s.Joints))
			}
		}
	}
	return nil
}

// Encode writes the skeleton in its wire layout.
func (s *Skeleton) Encode(w io.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(len(s.Joints)))
	for i := range s.Joints {
		binary.Write(buf, binary.LittleEndian, s.Joints[i].ParentIndex)
		binary.Write(buf, binary.LittleEndian, s.Joints[i].InverseBind)
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(s.Animations)))
	for _, anim := range s.Animations {
		binary.Write(buf, binary.LittleEndian, uint32(len(anim.Frames)))
		binary.Write(buf, binary.LittleEndian, uint32(len(anim.Name)))
		buf.WriteString(anim.Name)
		for _, frame := range anim.Frames {
			for i := range frame {
				binary.Write(buf, binary.LittleEndian, frame[i])
			}
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ParseSkeleton parses skeleton data from a byte slice.
func ParseSkeleton(data []byte) (*Skeleton, error) {
	if len(data) < 8 {
		return nil, ErrTruncatedSkeletonData
	}

	r := bytes.NewReader(data)

	var jointCount uint32
	binary.Read(r, binary.LittleEndian, &jointCount)

	jointBytes := int64(jointCount) * (4 + 16*4)
	if int64(r.Len()) < jointBytes+4 {
		return nil, ErrTruncatedSkeletonData
	}

	skel := &Skeleton{Joints: make([]SkeletonJoint, jointCount)}
	for i := range skel.Joints {
		binary.Read(r, binary.LittleEndian, &skel.Joints[i].ParentIndex)
		binary.Read(r, binary.LittleEndian, &skel.Joints[i].InverseBind)
	}

	var animCount uint32
	binary.Read(r, binary.LittleEndian, &animCount)

	frameBytes := int64(jointCount) * 10 * 4
	skel.Animations = make([]Animation, 0, animCount)
	for a := uint32(0); a < animCount; a++ {
		var frameCount, nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &frameCount); err != nil {
			return nil, ErrTruncatedSkeletonData
		}
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, ErrTruncatedSkeletonData
		}
		if int64(r.Len()) < int64(nameLen)+int64(frameCount)*frameBytes {
			return nil, ErrTruncatedSkeletonData
		}

		name := make([]byte, nameLen)
		io.ReadFull(r, name)

		anim := Animation{
			Name:   string(name),
			Frames: make([]AnimationFrame, frameCount),
		}
		for f := range anim.Frames {
			frame := make(AnimationFrame, jointCount)
			for i := range frame {
				binary.Read(r, binary.LittleEndian, &frame[i])
			}
			anim.Frames[f] = frame
		}
		skel.Animations = append(skel.Animations, anim)
	}

	if err := skel.Validate(); err != nil {
		return nil, err
	}
	return skel, nil
}

// ParseSkeletonFile parses a skeleton file from disk.
func ParseSkeletonFile(path string) (*Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skeleton file: %w", err)
	}
	return ParseSkeleton(data)
}
