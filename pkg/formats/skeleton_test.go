package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func identityMatrix() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func makeTwoJointSkeleton() *Skeleton {
	restPose := func() AnimationFrame {
		return AnimationFrame{
			{Position: [3]float32{0, 0, 0}, Rotation: [4]float32{1, 0, 0, 0}, Scale: [3]float32{1, 1, 1}},
			{Position: [3]float32{0, 1, 0}, Rotation: [4]float32{1, 0, 0, 0}, Scale: [3]float32{1, 1, 1}},
		}
	}
	return &Skeleton{
		Joints: []SkeletonJoint{
			{ParentIndex: NoParent, InverseBind: identityMatrix()},
			{ParentIndex: 0, InverseBind: identityMatrix()},
		},
		Animations: []Animation{
			{
				Name:   "walk",
				Frames: []AnimationFrame{restPose(), restPose(), restPose()},
			},
		},
	}
}

func TestSkeletonEncode_Layout(t *testing.T) {
	skel := makeTwoJointSkeleton()

	var buf bytes.Buffer
	if err := skel.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data := buf.Bytes()

	if got := binary.LittleEndian.Uint32(data[0:]); got != 2 {
		t.Errorf("jointCount = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(data[4:]); got != NoParent {
		t.Errorf("root parentIndex = %#x, want NoParent sentinel", got)
	}

	// Each joint is 4 + 64 bytes; animation count follows.
	animCountPos := 4 + 2*68
	if got := binary.LittleEndian.Uint32(data[animCountPos:]); got != 1 {
		t.Errorf("animationCount = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[animCountPos+4:]); got != 3 {
		t.Errorf("frameCount = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(data[animCountPos+8:]); got != 4 {
		t.Errorf("nameLength = %d, want 4", got)
	}
	if got := string(data[animCountPos+12 : animCountPos+16]); got != "walk" {
		t.Errorf("name = %q, want %q", got, "walk")
	}

	// 3 frames x 2 joints x 10 floats after the name, nothing else.
	wantLen := animCountPos + 16 + 3*2*10*4
	if len(data) != wantLen {
		t.Errorf("encoded length = %d, want %d", len(data), wantLen)
	}
}

func TestSkeletonRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		skel *Skeleton
	}{
		{"two joints one clip", makeTwoJointSkeleton()},
		{"no animations", &Skeleton{
			Joints: []SkeletonJoint{{ParentIndex: NoParent, InverseBind: identityMatrix()}},
		}},
		{"empty name clip", &Skeleton{
			Joints:     []SkeletonJoint{{ParentIndex: NoParent, InverseBind: identityMatrix()}},
			Animations: []Animation{{Name: "", Frames: []AnimationFrame{{{Scale: [3]float32{1, 1, 1}}}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.skel.Encode(&buf); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			parsed, err := ParseSkeleton(buf.Bytes())
			if err != nil {
				t.Fatalf("ParseSkeleton failed: %v", err)
			}

			// Normalize nil vs empty animation slices before comparing.
			if len(tt.skel.Animations) == 0 && len(parsed.Animations) == 0 {
				parsed.Animations = tt.skel.Animations
			}
			if !reflect.DeepEqual(parsed, tt.skel) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, tt.skel)
			}
		})
	}
}

func TestSkeletonValidate(t *testing.T) {
	t.Run("forward parent reference", func(t *testing.T) {
		skel := &Skeleton{
			Joints: []SkeletonJoint{
				{ParentIndex: 1},
				{ParentIndex: NoParent},
			},
		}
		if err := skel.Validate(); !errors.Is(err, ErrBadParentIndex) {
			t.Errorf("got %v, want ErrBadParentIndex", err)
		}
	})

	t.Run("self parent", func(t *testing.T) {
		skel := &Skeleton{
			Joints: []SkeletonJoint{
				{ParentIndex: NoParent},
				{ParentIndex: 1},
			},
		}
		if err := skel.Validate(); !errors.Is(err, ErrBadParentIndex) {
			t.Errorf("got %v, want ErrBadParentIndex", err)
		}
	})

	t.Run("short frame", func(t *testing.T) {
		skel := makeTwoJointSkeleton()
		skel.Animations[0].Frames[1] = skel.Animations[0].Frames[1][:1]
		if err := skel.Validate(); !errors.Is(err, ErrFrameLengthMismatch) {
			t.Errorf("got %v, want ErrFrameLengthMismatch", err)
		}
	})
}

func TestParseSkeleton_Truncated(t *testing.T) {
	skel := makeTwoJointSkeleton()
	var buf bytes.Buffer
	if err := skel.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	full := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"joint count only", full[:4]},
		{"cut mid joints", full[:40]},
		{"cut mid frames", full[:len(full)-8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSkeleton(tt.data); !errors.Is(err, ErrTruncatedSkeletonData) {
				t.Errorf("got %v, want ErrTruncatedSkeletonData", err)
			}
		})
	}
}
