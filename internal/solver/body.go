package solver

import "github.com/go-gl/mathgl/mgl32"

// BodyStatus controls how the pipeline moves a body.
type BodyStatus int

const (
	// BodyStatusDynamic bodies are fully simulated.
	BodyStatusDynamic BodyStatus = iota
	// BodyStatusStatic bodies never move.
	BodyStatusStatic
	// BodyStatusKinematic bodies move by their velocity but ignore forces.
	BodyStatusKinematic
)

// RigidBody is a live simulated body.
type RigidBody struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	LinVel   mgl32.Vec3
	AngVel   mgl32.Vec3
	Mass     float32
	Status   BodyStatus

	RotationLocked    [3]bool
	TranslationLocked bool

	sleeping  bool
	colliders []Handle
}

// NewRigidBody returns a dynamic body at the origin with unit mass.
func NewRigidBody(status BodyStatus) RigidBody {
	return RigidBody{
		Rotation: mgl32.QuatIdent(),
		Mass:     1,
		Status:   status,
	}
}

// Colliders returns the handles of the body's attached colliders.
func (b *RigidBody) Colliders() []Handle { return b.colliders }

// CopyWithoutColliders returns a copy of the body with no attached
// colliders, for inserting the body into a different set.
func (b *RigidBody) CopyWithoutColliders() RigidBody {
	c := *b
	c.colliders = nil
	return c
}

func (b *RigidBody) IsSleeping() bool { return b.sleeping }
func (b *RigidBody) Sleep()           { b.sleeping = true }
func (b *RigidBody) WakeUp()          { b.sleeping = false }

func (b *RigidBody) attach(collider Handle) {
	b.colliders = append(b.colliders, collider)
}

func (b *RigidBody) detach(collider Handle) {
	for i, h := range b.colliders {
		if h == collider {
			b.colliders = append(b.colliders[:i], b.colliders[i+1:]...)
			return
		}
	}
}

// BodySet stores the live bodies.
type BodySet struct {
	arena Arena[RigidBody]
}

func (s *BodySet) Insert(b RigidBody) Handle {
	return s.arena.Insert(b)
}

// Get returns the body at h, nil if h is stale.
func (s *BodySet) Get(h Handle) *RigidBody {
	return s.arena.Get(h)
}

func (s *BodySet) Len() int          { return s.arena.Len() }
func (s *BodySet) Handles() []Handle { return s.arena.Handles() }

// Remove frees the body and cascades to its colliders and to every
// joint with an endpoint on it. The removed collider and joint handles
// are returned so callers can purge their own bookkeeping.
func (s *BodySet) Remove(h Handle, colliders *ColliderSet, joints *JointSet) (*RigidBody, []Handle, []Handle) {
	body := s.arena.Get(h)
	if body == nil {
		return nil, nil, nil
	}

	removedColliders := append([]Handle(nil), body.colliders...)
	for _, ch := range removedColliders {
		colliders.arena.Remove(ch)
	}
	removedJoints := joints.removeAttached(h)

	removed, _ := s.arena.Remove(h)
	return &removed, removedColliders, removedJoints
}
