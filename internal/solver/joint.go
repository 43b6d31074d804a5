package solver

import "github.com/go-gl/mathgl/mgl32"

// JointParams is one of BallJoint, FixedJoint, PrismaticJoint or
// RevoluteJoint.
type JointParams interface {
	isJointParams()
}

// BallJoint constrains two local anchor points to coincide.
type BallJoint struct {
	LocalAnchor1 mgl32.Vec3
	LocalAnchor2 mgl32.Vec3
}

// FixedJoint locks the relative pose of two bodies.
type FixedJoint struct {
	LocalAnchor1Translation mgl32.Vec3
	LocalAnchor1Rotation    mgl32.Quat
	LocalAnchor2Translation mgl32.Vec3
	LocalAnchor2Rotation    mgl32.Quat
}

// PrismaticJoint allows translation along one shared axis.
type PrismaticJoint struct {
	LocalAnchor1 mgl32.Vec3
	LocalAxis1   mgl32.Vec3
	LocalAnchor2 mgl32.Vec3
	LocalAxis2   mgl32.Vec3
}

// RevoluteJoint allows rotation about one shared axis.
type RevoluteJoint struct {
	LocalAnchor1 mgl32.Vec3
	LocalAxis1   mgl32.Vec3
	LocalAnchor2 mgl32.Vec3
	LocalAxis2   mgl32.Vec3
}

func (BallJoint) isJointParams()      {}
func (FixedJoint) isJointParams()     {}
func (PrismaticJoint) isJointParams() {}
func (RevoluteJoint) isJointParams()  {}

// Joint constrains two bodies.
type Joint struct {
	Body1  Handle
	Body2  Handle
	Params JointParams
}

// JointSet stores the live joints.
type JointSet struct {
	arena Arena[Joint]
}

// Insert creates a joint between body1 and body2. It fails when either
// endpoint is stale.
func (s *JointSet) Insert(bodies *BodySet, body1, body2 Handle, params JointParams) (Handle, bool) {
	if bodies.Get(body1) == nil || bodies.Get(body2) == nil {
		return Handle{}, false
	}
	return s.arena.Insert(Joint{Body1: body1, Body2: body2, Params: params}), true
}

// Get returns the joint at h, nil if h is stale.
func (s *JointSet) Get(h Handle) *Joint {
	return s.arena.Get(h)
}

func (s *JointSet) Len() int          { return s.arena.Len() }
func (s *JointSet) Handles() []Handle { return s.arena.Handles() }

// Remove frees the joint at h.
func (s *JointSet) Remove(h Handle) (*Joint, bool) {
	removed, ok := s.arena.Remove(h)
	if !ok {
		return nil, false
	}
	return &removed, true
}

// removeAttached frees every joint with an endpoint on body and returns
// their handles.
func (s *JointSet) removeAttached(body Handle) []Handle {
	var removed []Handle
	for _, h := range s.arena.Handles() {
		j := s.arena.Get(h)
		if j.Body1 == body || j.Body2 == body {
			s.arena.Remove(h)
			removed = append(removed, h)
		}
	}
	return removed
}
